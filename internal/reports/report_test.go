package reports

import (
	"bytes"
	"testing"
	"time"

	"receiving/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func reportLines() []models.LineItem {
	return []models.LineItem{
		{
			ID:          1,
			Session:     models.ManifestSession("GR-1"),
			SKU:         "A1",
			ItemName:    "Vivan Cable",
			Category:    models.CategoryBulk,
			ExpectedQty: 10,
			PhysicalQty: 12,
			Allocation:  models.AllocationStock,
			Note:        "two over",
			IsActive:    true,
			UpdatedAt:   time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
			UpdatedBy:   "Reza",
		},
		{
			ID:               2,
			Session:          models.ManifestSession("GR-1"),
			SKU:              "S1",
			ItemName:         "Galaxy S24",
			Category:         models.CategorySerialized,
			ExpectedQty:      2,
			PhysicalQty:      2,
			SerialNumbers:    []string{"X1", "X2"},
			Allocation:       models.AllocationDisplay,
			InboundConfirmed: true,
			IsActive:         true,
			UpdatedAt:        time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
			UpdatedBy:        "INBOUND:Koordinator",
		},
	}
}

func TestBuildReport(t *testing.T) {
	data, err := BuildReport(reportLines())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Data_Receiving")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "session", rows[0][0])
	assert.Equal(t, "qtyDiff", rows[0][7])

	// Bulk line: diff +2, still pending.
	assert.Equal(t, "GR-1", rows[1][0])
	assert.Equal(t, "2", rows[1][7])
	assert.Equal(t, "PENDING", rows[1][9])

	// Serialized line: joined serials, confirmed, inbound-tagged modifier.
	assert.Equal(t, "X1; X2", rows[2][10])
	assert.Equal(t, "CONFIRMED", rows[2][9])
	assert.Equal(t, "INBOUND:Koordinator", rows[2][11])
}

func TestSummarize(t *testing.T) {
	summary := Summarize(reportLines())

	assert.Equal(t, Summary{
		TotalSKU:      2,
		TotalExpected: 12,
		TotalPhysical: 14,
		TotalDiff:     2,
	}, summary)
}

func TestBuildReportEmpty(t *testing.T) {
	data, err := BuildReport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Data_Receiving")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
