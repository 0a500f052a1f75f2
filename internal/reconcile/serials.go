package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	custom_error "receiving/pkg/errors"
)

// normalizeSerials trims every candidate, drops blanks and deduplicates while
// preserving insertion order. Duplicates inside the submitted set are reported
// as warnings, not errors.
func normalizeSerials(raw []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(raw))
	serials := make([]string, 0, len(raw))
	var warnings []string

	for _, candidate := range raw {
		s := strings.TrimSpace(candidate)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			warnings = append(warnings, fmt.Sprintf("serial %q submitted more than once, kept a single entry", s))
			continue
		}
		seen[s] = struct{}{}
		serials = append(serials, s)
	}

	return serials, warnings
}

// sameSerialSet compares order-insensitively; display order is not part of the
// reconciliation identity of the set.
func sameSerialSet(current, proposed []string) bool {
	if len(current) != len(proposed) {
		return false
	}
	set := make(map[string]struct{}, len(current))
	for _, s := range current {
		set[strings.TrimSpace(s)] = struct{}{}
	}
	for _, s := range proposed {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func serialsJSON(serials []string) string {
	raw, _ := json.Marshal(serials)
	return string(raw)
}

// AddSerial appends one scanned serial to an SN line. An exact trimmed match
// against the current set is skipped with a warning and changes nothing.
func (e *Engine) AddSerial(itemID int, serial, actor string, snapshot time.Time) (Result, error) {
	s := strings.TrimSpace(serial)
	if s == "" {
		return Result{}, custom_error.NewValidationError("serial number cannot be blank")
	}

	row, err := e.store.GetLine(itemID)
	if err != nil {
		return Result{}, err
	}
	if row == nil {
		return Result{}, custom_error.NewValidationError("line item %d does not exist", itemID)
	}

	for _, existing := range row.SerialNumbers {
		if strings.TrimSpace(existing) == s {
			return Result{
				NoOp:     true,
				Warnings: []string{fmt.Sprintf("serial %q is already recorded on this line", s)},
			}, nil
		}
	}

	serials := append(append([]string{}, row.SerialNumbers...), s)

	return e.ApplySerialUpdate(SerialUpdate{
		ItemID:     itemID,
		Serials:    serials,
		Allocation: row.Allocation,
		Note:       row.Note,
		Actor:      actor,
		Snapshot:   snapshot,
	})
}

// RemoveSerialAt removes a serial by its position in the displayed list and
// resubmits the remaining set through the conflict-checked update path.
func (e *Engine) RemoveSerialAt(itemID, index int, actor string, snapshot time.Time) (Result, error) {
	row, err := e.store.GetLine(itemID)
	if err != nil {
		return Result{}, err
	}
	if row == nil {
		return Result{}, custom_error.NewValidationError("line item %d does not exist", itemID)
	}
	if index < 0 || index >= len(row.SerialNumbers) {
		return Result{}, custom_error.NewValidationError("serial position %d is out of range", index)
	}

	serials := make([]string, 0, len(row.SerialNumbers)-1)
	serials = append(serials, row.SerialNumbers[:index]...)
	serials = append(serials, row.SerialNumbers[index+1:]...)

	return e.ApplySerialUpdate(SerialUpdate{
		ItemID:     itemID,
		Serials:    serials,
		Allocation: row.Allocation,
		Note:       row.Note,
		Actor:      actor,
		Snapshot:   snapshot,
	})
}

// AddSerialBatch ingests a newline-delimited scan block. Blanks are dropped;
// duplicates within the block and against the existing set are skipped with a
// warning each. The merged set commits in a single conflict-checked write.
func (e *Engine) AddSerialBatch(itemID int, block, actor string, snapshot time.Time) (Result, error) {
	row, err := e.store.GetLine(itemID)
	if err != nil {
		return Result{}, err
	}
	if row == nil {
		return Result{}, custom_error.NewValidationError("line item %d does not exist", itemID)
	}

	seen := make(map[string]struct{}, len(row.SerialNumbers))
	for _, existing := range row.SerialNumbers {
		seen[strings.TrimSpace(existing)] = struct{}{}
	}

	merged := append([]string{}, row.SerialNumbers...)
	var warnings []string
	added := 0

	for _, candidate := range strings.Split(block, "\n") {
		s := strings.TrimSpace(candidate)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			warnings = append(warnings, fmt.Sprintf("serial %q skipped: already recorded", s))
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
		added++
	}

	if added == 0 {
		return Result{NoOp: true, Warnings: warnings}, nil
	}

	result, err := e.ApplySerialUpdate(SerialUpdate{
		ItemID:     itemID,
		Serials:    merged,
		Allocation: row.Allocation,
		Note:       row.Note,
		Actor:      actor,
		Snapshot:   snapshot,
	})
	if err != nil {
		return Result{}, err
	}

	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}
