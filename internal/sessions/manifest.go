package sessions

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

	"github.com/xuri/excelize/v2"
)

const (
	colSKU        = "SKU"
	colItemName   = "Item Name"
	colExpected   = "Expected Qty"
	colItemType   = "Item Type"
	colAllocation = "Allocation Target"
	colNote       = "Initial Note"
)

var requiredManifestColumns = []string{colSKU, colItemName, colExpected, colItemType}

// ParseManifest reads an uploaded GR/PO master xlsx into normalized rows.
// Column validation happens here, before anything touches the store.
func ParseManifest(r io.Reader) ([]models.ManifestRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, custom_error.NewValidationError("unable to read xlsx file: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, custom_error.NewValidationError("unable to read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return nil, custom_error.NewValidationError("manifest file is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.TrimSpace(header)] = i
	}

	var missing []string
	for _, col := range requiredManifestColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, custom_error.NewValidationError("manifest file is missing required columns: %s", strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	manifest := make([]models.ManifestRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		sku := cell(row, colSKU)
		name := cell(row, colItemName)
		if sku == "" && name == "" {
			continue
		}
		if name == "" {
			name = "Unknown Item"
		}

		qty := 0
		if raw := cell(row, colExpected); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				qty = parsed
			}
		}

		category := models.CategoryBulk
		if strings.EqualFold(cell(row, colItemType), string(models.CategorySerialized)) {
			category = models.CategorySerialized
		}

		allocation := models.AllocationStock
		if strings.EqualFold(cell(row, colAllocation), string(models.AllocationDisplay)) {
			allocation = models.AllocationDisplay
		}

		manifest = append(manifest, models.ManifestRow{
			SKU:         sku,
			ItemName:    name,
			ExpectedQty: qty,
			Category:    category,
			Allocation:  allocation,
			Note:        cell(row, colNote),
		})
	}

	if len(manifest) == 0 {
		return nil, custom_error.NewValidationError("manifest file contains no data rows")
	}

	return manifest, nil
}

// MasterTemplate builds the xlsx checkers hand to purchasing: the column
// layout an upload must follow, with a few illustrative rows.
func MasterTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Template_Master_GR"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create template sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := []interface{}{colSKU, colItemName, colExpected, colItemType, colAllocation, colNote}
	samples := [][]interface{}{
		{"SAM-S24-ULT", "Samsung Galaxy S24 Ultra 256GB", 10, "SN", "DISPLAY", "For floor display"},
		{"VIV-CBL-01", "Vivan Cable C to C", 500, "NON-SN", "STOCK", nil},
		{"LOG-MOU-05", "Logitech G502 Hero Mouse", 25, "NON-SN", "STOCK", nil},
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write template header: %w", err)
	}
	for i, sample := range samples {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve template cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cellName, &sample); err != nil {
			return nil, fmt.Errorf("failed to write template row: %w", err)
		}
	}

	widths := []float64{16, 34, 14, 12, 20, 22}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve template column: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to size template column: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize template: %w", err)
	}

	return buf.Bytes(), nil
}
