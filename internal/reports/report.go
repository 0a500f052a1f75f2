package reports

import (
	"fmt"
	"strings"

	"receiving/pkg/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Data_Receiving"

// headerFillColor is the corporate blue used on receiving report headers.
const headerFillColor = "0095DA"

var reportColumns = []string{
	"session", "sku", "itemName", "category", "allocation",
	"expectedQty", "physicalQty", "qtyDiff", "note", "inboundStatus",
	"serialNumbers", "lastModifiedBy", "lastModifiedAt",
}

// BuildReport renders the reconciliation report for one session: every line
// with its expected/physical delta, inbound status and the recorded serials.
func BuildReport(lines []models.LineItem) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create report sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := make([]interface{}, len(reportColumns))
	widths := make([]float64, len(reportColumns))
	for i, col := range reportColumns {
		header[i] = col
		widths[i] = float64(len(col)) + 5
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	for i, line := range lines {
		inboundStatus := "PENDING"
		if line.InboundConfirmed {
			inboundStatus = "CONFIRMED"
		}

		row := []interface{}{
			line.Session.StorageID(),
			line.SKU,
			line.ItemName,
			string(line.Category),
			string(line.Allocation),
			line.ExpectedQty,
			line.PhysicalQty,
			line.QtyDiff(),
			line.Note,
			inboundStatus,
			strings.Join(line.SerialNumbers, "; "),
			line.UpdatedBy,
			line.UpdatedAt.Format("2006-01-02 15:04:05"),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve report cell: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write report row: %w", err)
		}

		for col, value := range row {
			if width := float64(len(fmt.Sprint(value))) + 5; width > widths[col] {
				widths[col] = width
			}
		}
	}

	if err := styleHeader(f); err != nil {
		return nil, err
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve report column: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to size report column: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	return buf.Bytes(), nil
}

func styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(reportColumns))
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}

	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	return nil
}

// Summary holds the totals row shown on the admin report view.
type Summary struct {
	TotalSKU      int `json:"total_sku"`
	TotalExpected int `json:"total_expected"`
	TotalPhysical int `json:"total_physical"`
	TotalDiff     int `json:"total_diff"`
}

func Summarize(lines []models.LineItem) Summary {
	s := Summary{TotalSKU: len(lines)}
	for _, line := range lines {
		s.TotalExpected += line.ExpectedQty
		s.TotalPhysical += line.PhysicalQty
		s.TotalDiff += line.QtyDiff()
	}
	return s
}
