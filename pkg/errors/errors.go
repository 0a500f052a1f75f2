package custom_error

import (
	"fmt"
	"time"
)

type CustomError interface {
	Error() string
}

// ValidationError rejects a malformed mutation before any store access.
type ValidationError struct {
	message string
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.message
}

// ConflictError signals that another checker committed to the same line after
// the caller's snapshot was taken. The caller must re-fetch and retry.
type ConflictError struct {
	ItemID     int
	ModifiedBy string
	ModifiedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("line %d was modified by %s at %s after your snapshot; reload and retry",
		e.ItemID, e.ModifiedBy, e.ModifiedAt.Format(time.RFC3339))
}

// StoreError wraps a failed persistence call. Never retried by the core.
type StoreError struct {
	op  string
	err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{op: op, err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.op, e.err)
}

func (e *StoreError) Unwrap() error {
	return e.err
}

type UniqueViolationError struct {
	message string
	code    string // PostgreSQL error code (e.g., "23505")
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

type ForeignKeyViolationError struct {
	message string
	code    string
}

func (f *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", f.message, f.code)
}

func WrapDBError(message, code string) CustomError {
	switch code {
	case "23505":
		return &UniqueViolationError{
			message: message,
			code:    code,
		}
	case "23503":
		return &ForeignKeyViolationError{
			message: "Value is already used by other resources " + message,
			code:    code,
		}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}
