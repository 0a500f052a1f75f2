package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"receiving/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	custom_error "receiving/pkg/errors"
)

// insertBatchSize keeps single insert statements under the request-size limits
// of hosted Postgres offerings.
const insertBatchSize = 500

var requiredLineColumns = []string{
	"id", "gr_number", "sku", "item_name", "category", "expected_qty",
	"physical_qty", "serial_numbers", "is_active", "inbound_confirmed",
	"updated_at", "updated_by",
}

// CheckSchema verifies once at startup that the receiving_lines table carries
// every column the read path depends on. Optional columns (note, allocation)
// are COALESCEd on read instead.
func (r *Repository) CheckSchema() error {
	sql, args, err := r.GoquDBWrapper.
		Select(goqu.COUNT("column_name")).
		From(goqu.S("information_schema").Table("columns")).
		Where(goqu.Ex{
			"table_name":  "receiving_lines",
			"column_name": requiredLineColumns,
		}).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build schema check query: %w", err)
	}

	var count int
	if err := r.DB.QueryRow(sql, args...).Scan(&count); err != nil {
		return fmt.Errorf("failed to check receiving_lines schema: %w", err)
	}
	if count != len(requiredLineColumns) {
		return fmt.Errorf("receiving_lines schema incomplete: found %d of %d required columns", count, len(requiredLineColumns))
	}

	return nil
}

func lineDataset(db *goqu.Database) *goqu.SelectDataset {
	return db.Select(
		"id", "gr_number", "sku", "item_name", "category", "expected_qty",
		"physical_qty", "serial_numbers",
		goqu.COALESCE(goqu.C("allocation"), string(models.AllocationStock)).As("allocation"),
		goqu.COALESCE(goqu.C("note"), "").As("note"),
		"is_active", "inbound_confirmed", "updated_at", "updated_by",
	).From("receiving_lines")
}

func (r *Repository) GetLine(id int) (*models.LineItem, error) {
	var flat models.FlatLineRecord
	found, err := lineDataset(r.GoquDBWrapper).
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStruct(&flat)
	if err != nil {
		return nil, custom_error.NewStoreError("get line", err)
	}
	if !found {
		return nil, nil
	}

	line, err := flat.TransformToLineItem()
	if err != nil {
		return nil, custom_error.NewStoreError("get line", err)
	}

	return &line, nil
}

// SelectLines returns lines ordered by item name. A nil session ref selects
// across all sessions; activeOnly restricts to open rows.
func (r *Repository) SelectLines(ref *models.SessionRef, activeOnly bool) ([]models.LineItem, error) {
	ds := lineDataset(r.GoquDBWrapper)
	if activeOnly {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}
	if ref != nil {
		ds = ds.Where(goqu.Ex{"gr_number": ref.StorageID()})
	}

	var flats []models.FlatLineRecord
	if err := ds.Order(goqu.C("item_name").Asc()).Executor().ScanStructs(&flats); err != nil {
		return nil, custom_error.NewStoreError("select lines", err)
	}

	lines := make([]models.LineItem, 0, len(flats))
	for i := range flats {
		line, err := flats[i].TransformToLineItem()
		if err != nil {
			return nil, custom_error.NewStoreError("select lines", err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func lineRecord(line models.LineItem) (goqu.Record, error) {
	rec := goqu.Record{
		"gr_number":         line.Session.StorageID(),
		"sku":               line.SKU,
		"item_name":         line.ItemName,
		"category":          string(line.Category),
		"expected_qty":      line.ExpectedQty,
		"physical_qty":      line.PhysicalQty,
		"allocation":        string(line.Allocation),
		"is_active":         line.IsActive,
		"inbound_confirmed": line.InboundConfirmed,
		"updated_at":        line.UpdatedAt,
		"updated_by":        line.UpdatedBy,
	}

	if line.Note != "" {
		rec["note"] = line.Note
	} else {
		rec["note"] = nil
	}

	if line.Category == models.CategorySerialized {
		serials := line.SerialNumbers
		if serials == nil {
			serials = []string{}
		}
		raw, err := json.Marshal(serials)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal serial numbers: %w", err)
		}
		rec["serial_numbers"] = string(raw)
	} else {
		rec["serial_numbers"] = nil
	}

	return rec, nil
}

func (r *Repository) InsertLine(line models.LineItem) (*models.LineItem, error) {
	rec, err := lineRecord(line)
	if err != nil {
		return nil, custom_error.NewStoreError("insert line", err)
	}

	query := r.GoquDBWrapper.Insert("receiving_lines").Rows(rec).Returning("id")
	if _, err := query.Executor().ScanVal(&line.ID); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, custom_error.WrapDBError("Duplicate receiving line", string(pqErr.Code))
		}
		return nil, custom_error.NewStoreError("insert line", err)
	}

	return &line, nil
}

// InsertLineBatch writes manifest rows in chunks. Validation happens before the
// first chunk; a mid-batch failure leaves prior chunks committed.
func (r *Repository) InsertLineBatch(lines []models.LineItem) (int, error) {
	inserted := 0
	for start := 0; start < len(lines); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(lines) {
			end = len(lines)
		}

		rows := make([]interface{}, 0, end-start)
		for _, line := range lines[start:end] {
			rec, err := lineRecord(line)
			if err != nil {
				return inserted, custom_error.NewStoreError("insert line batch", err)
			}
			rows = append(rows, rec)
		}

		query := r.GoquDBWrapper.Insert("receiving_lines").Rows(rows...)
		if _, err := query.Executor().Exec(); err != nil {
			return inserted, custom_error.NewStoreError("insert line batch", err)
		}
		inserted += end - start
	}

	return inserted, nil
}

// GetLineStamp reads the current conflict stamp of a row.
func (r *Repository) GetLineStamp(id int) (time.Time, string, error) {
	var stamp struct {
		UpdatedAt time.Time `db:"updated_at"`
		UpdatedBy string    `db:"updated_by"`
	}
	found, err := r.GoquDBWrapper.
		Select("updated_at", "updated_by").
		From("receiving_lines").
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStruct(&stamp)
	if err != nil {
		return time.Time{}, "", custom_error.NewStoreError("get line stamp", err)
	}
	if !found {
		return time.Unix(0, 0).UTC(), "SYSTEM", nil
	}

	return stamp.UpdatedAt, stamp.UpdatedBy, nil
}

// UpdateLineChecked applies a checking mutation conditionally: the write only
// lands if no other commit has stamped the row after the caller's snapshot.
// Returns the number of rows affected; zero means the caller lost the race.
func (r *Repository) UpdateLineChecked(id int, rec goqu.Record, snapshot time.Time) (int64, error) {
	query := r.GoquDBWrapper.
		Update("receiving_lines").
		Set(rec).
		Where(goqu.Ex{"id": id}, goqu.C("updated_at").Lte(snapshot))

	result, err := query.Executor().Exec()
	if err != nil {
		return 0, custom_error.NewStoreError("update line", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, custom_error.NewStoreError("update line", err)
	}

	return affected, nil
}

// UpdateLine applies an unconditional update (inbound confirmation path).
func (r *Repository) UpdateLine(id int, rec goqu.Record) error {
	query := r.GoquDBWrapper.
		Update("receiving_lines").
		Set(rec).
		Where(goqu.Ex{"id": id})

	if _, err := query.Executor().Exec(); err != nil {
		return custom_error.NewStoreError("update line", err)
	}

	return nil
}

func (r *Repository) DeleteLine(id int) error {
	query := r.GoquDBWrapper.
		Delete("receiving_lines").
		Where(goqu.Ex{"id": id})

	if _, err := query.Executor().Exec(); err != nil {
		return custom_error.NewStoreError("delete line", err)
	}

	return nil
}

// DeleteActiveLines hard-deletes every open row across all sessions. Gated by
// admin role and reset PIN at the handler boundary.
func (r *Repository) DeleteActiveLines() (int64, error) {
	query := r.GoquDBWrapper.
		Delete("receiving_lines").
		Where(goqu.Ex{"is_active": true})

	result, err := query.Executor().Exec()
	if err != nil {
		return 0, custom_error.NewStoreError("delete active lines", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, custom_error.NewStoreError("delete active lines", err)
	}

	return affected, nil
}

// ArchiveSession flips is_active off for a whole session. Idempotent.
func (r *Repository) ArchiveSession(grNumber string) (int64, error) {
	query := r.GoquDBWrapper.
		Update("receiving_lines").
		Set(goqu.Record{"is_active": false}).
		Where(goqu.Ex{"gr_number": grNumber, "is_active": true})

	result, err := query.Executor().Exec()
	if err != nil {
		return 0, custom_error.NewStoreError("archive session", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, custom_error.NewStoreError("archive session", err)
	}

	return affected, nil
}

func (r *Repository) ActiveSessionIDs() ([]string, error) {
	var ids []string
	err := r.GoquDBWrapper.
		Select("gr_number").
		Distinct().
		From("receiving_lines").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.C("gr_number").Asc()).
		Executor().
		ScanVals(&ids)
	if err != nil {
		return nil, custom_error.NewStoreError("list active sessions", err)
	}

	return ids, nil
}

// ArchivedSessionIDs lists sessions that only exist in the archive, for the
// report history picker.
func (r *Repository) ArchivedSessionIDs() ([]string, error) {
	var ids []string
	err := r.GoquDBWrapper.
		Select("gr_number").
		Distinct().
		From("receiving_lines").
		Where(goqu.Ex{"is_active": false}).
		Order(goqu.C("gr_number").Desc()).
		Executor().
		ScanVals(&ids)
	if err != nil {
		return nil, custom_error.NewStoreError("list archived sessions", err)
	}

	return ids, nil
}
