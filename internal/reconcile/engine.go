package reconcile

import (
	"strings"
	"time"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// LineStore is the slice of the persistence contract the engine needs.
type LineStore interface {
	GetLine(id int) (*models.LineItem, error)
	GetLineStamp(id int) (time.Time, string, error)
	UpdateLineChecked(id int, rec goqu.Record, snapshot time.Time) (int64, error)
}

// Engine applies checking mutations to a single line under optimistic
// concurrency control. Every mutation is read -> compare -> conditional write;
// the write carries the snapshot so a racing commit loses atomically.
type Engine struct {
	store LineStore
	log   *zap.Logger
}

func NewEngine(store LineStore, log *zap.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Result is the discriminated outcome of a mutation attempt. Warnings carry
// non-fatal skips (duplicate serials); they never abort the operation.
type Result struct {
	Updated  int      `json:"updated"`
	NoOp     bool     `json:"no_op"`
	Warnings []string `json:"warnings,omitempty"`
}

type BulkUpdate struct {
	ItemID     int
	Qty        int
	Allocation models.Allocation
	Note       string
	Actor      string
	Snapshot   time.Time
}

type SerialUpdate struct {
	ItemID     int
	Serials    []string
	Allocation models.Allocation
	Note       string
	Actor      string
	Snapshot   time.Time
}

// ApplyBulkUpdate commits quantity, allocation and note for a NON-SN line.
// Identical values are suppressed as a no-op so timestamps do not churn.
func (e *Engine) ApplyBulkUpdate(cmd BulkUpdate) (Result, error) {
	if cmd.Qty < 0 {
		return Result{}, custom_error.NewValidationError("physical quantity cannot be negative")
	}
	if strings.TrimSpace(cmd.Actor) == "" {
		return Result{}, custom_error.NewValidationError("actor is required")
	}
	if _, err := models.ParseAllocation(string(cmd.Allocation)); err != nil {
		return Result{}, custom_error.NewValidationError("%v", err)
	}

	row, err := e.store.GetLine(cmd.ItemID)
	if err != nil {
		return Result{}, err
	}
	if row == nil {
		return Result{}, custom_error.NewValidationError("line item %d does not exist", cmd.ItemID)
	}
	if row.Category != models.CategoryBulk {
		return Result{}, custom_error.NewValidationError("line item %d is serialized; quantity is derived from its serial list", cmd.ItemID)
	}
	if !row.IsActive {
		return Result{}, custom_error.NewValidationError("line item %d belongs to an archived session", cmd.ItemID)
	}

	note := strings.TrimSpace(cmd.Note)
	if row.PhysicalQty == cmd.Qty && row.Allocation == cmd.Allocation && strings.TrimSpace(row.Note) == note {
		return Result{NoOp: true}, nil
	}

	if err := e.checkConflict(row, cmd.Snapshot); err != nil {
		return Result{}, err
	}

	rec := checkRecord(cmd.Allocation, note, cmd.Actor)
	rec["physical_qty"] = cmd.Qty

	return e.commit(cmd.ItemID, rec, cmd.Snapshot, nil)
}

// ApplySerialUpdate commits the full serial set for an SN line. The physical
// quantity is always the cardinality of the committed set.
func (e *Engine) ApplySerialUpdate(cmd SerialUpdate) (Result, error) {
	if strings.TrimSpace(cmd.Actor) == "" {
		return Result{}, custom_error.NewValidationError("actor is required")
	}
	if _, err := models.ParseAllocation(string(cmd.Allocation)); err != nil {
		return Result{}, custom_error.NewValidationError("%v", err)
	}

	row, err := e.store.GetLine(cmd.ItemID)
	if err != nil {
		return Result{}, err
	}
	if row == nil {
		return Result{}, custom_error.NewValidationError("line item %d does not exist", cmd.ItemID)
	}
	if row.Category != models.CategorySerialized {
		return Result{}, custom_error.NewValidationError("line item %d is not serialized", cmd.ItemID)
	}
	if !row.IsActive {
		return Result{}, custom_error.NewValidationError("line item %d belongs to an archived session", cmd.ItemID)
	}

	serials, warnings := normalizeSerials(cmd.Serials)
	note := strings.TrimSpace(cmd.Note)

	if sameSerialSet(row.SerialNumbers, serials) && row.Allocation == cmd.Allocation && strings.TrimSpace(row.Note) == note {
		return Result{NoOp: true, Warnings: warnings}, nil
	}

	if err := e.checkConflict(row, cmd.Snapshot); err != nil {
		return Result{}, err
	}

	rec := checkRecord(cmd.Allocation, note, cmd.Actor)
	rec["serial_numbers"] = serialsJSON(serials)
	rec["physical_qty"] = len(serials)

	return e.commit(cmd.ItemID, rec, cmd.Snapshot, warnings)
}

// checkConflict rejects the mutation when the row was stamped after the
// caller's snapshot. Last-writer-conflict detection, not merge: the error
// names the concurrent checker so the caller can reload.
func (e *Engine) checkConflict(row *models.LineItem, snapshot time.Time) error {
	current, by, err := e.store.GetLineStamp(row.ID)
	if err != nil {
		return err
	}
	if current.After(snapshot) {
		e.log.Warn("checking conflict detected",
			zap.Int("line_id", row.ID),
			zap.String("modified_by", by),
			zap.Time("modified_at", current),
		)
		return &custom_error.ConflictError{ItemID: row.ID, ModifiedBy: by, ModifiedAt: current}
	}
	return nil
}

// commit performs the conditional write. Zero rows affected means another
// commit slipped between the conflict check and the write; the re-read stamp
// identifies the winner.
func (e *Engine) commit(itemID int, rec goqu.Record, snapshot time.Time, warnings []string) (Result, error) {
	affected, err := e.store.UpdateLineChecked(itemID, rec, snapshot)
	if err != nil {
		return Result{}, err
	}
	if affected == 0 {
		at, by, err := e.store.GetLineStamp(itemID)
		if err != nil {
			return Result{}, err
		}
		return Result{}, &custom_error.ConflictError{ItemID: itemID, ModifiedBy: by, ModifiedAt: at}
	}

	return Result{Updated: int(affected), Warnings: warnings}, nil
}

func checkRecord(allocation models.Allocation, note, actor string) goqu.Record {
	rec := goqu.Record{
		"allocation": string(allocation),
		"updated_at": time.Now().UTC(),
		"updated_by": actor,
	}
	if note != "" {
		rec["note"] = note
	} else {
		rec["note"] = nil
	}
	return rec
}
