package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type ItemCategory string

const (
	CategorySerialized ItemCategory = "SN"
	CategoryBulk       ItemCategory = "NON-SN"
)

func ParseItemCategory(raw string) (ItemCategory, error) {
	switch ItemCategory(raw) {
	case CategorySerialized:
		return CategorySerialized, nil
	case CategoryBulk:
		return CategoryBulk, nil
	}
	return "", fmt.Errorf("unknown item category: %q", raw)
}

type Allocation string

const (
	AllocationStock   Allocation = "STOCK"
	AllocationDisplay Allocation = "DISPLAY"
)

func ParseAllocation(raw string) (Allocation, error) {
	switch Allocation(raw) {
	case AllocationStock:
		return AllocationStock, nil
	case AllocationDisplay:
		return AllocationDisplay, nil
	}
	return "", fmt.Errorf("unknown allocation target: %q", raw)
}

// LineItem is one expected (or ad-hoc) unit-of-count within a receiving session.
// For serialized lines PhysicalQty always equals len(SerialNumbers); the store
// never receives an independently supplied quantity for them.
type LineItem struct {
	ID               int          `json:"id"`
	Session          SessionRef   `json:"session"`
	SKU              string       `json:"sku"`
	ItemName         string       `json:"item_name"`
	Category         ItemCategory `json:"category"`
	ExpectedQty      int          `json:"expected_qty"`
	PhysicalQty      int          `json:"physical_qty"`
	SerialNumbers    []string     `json:"serial_numbers,omitempty"`
	Allocation       Allocation   `json:"allocation"`
	Note             string       `json:"note,omitempty"`
	IsActive         bool         `json:"is_active"`
	InboundConfirmed bool         `json:"inbound_confirmed"`
	UpdatedAt        time.Time    `json:"updated_at"`
	UpdatedBy        string       `json:"updated_by"`
}

func (l *LineItem) QtyDiff() int {
	return l.PhysicalQty - l.ExpectedQty
}

func (l *LineItem) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   l.ID,
		ResourceType: "line_item",
	}
}

// FlatLineRecord mirrors the receiving_lines row. The serial list is stored as a
// JSON array column and must round-trip in display order.
type FlatLineRecord struct {
	ID               int        `db:"id"`
	GRNumber         string     `db:"gr_number"`
	SKU              string     `db:"sku"`
	ItemName         string     `db:"item_name"`
	Category         string     `db:"category"`
	ExpectedQty      int        `db:"expected_qty"`
	PhysicalQty      int        `db:"physical_qty"`
	SerialNumbers    []byte     `db:"serial_numbers"`
	Allocation       string     `db:"allocation"`
	Note             string     `db:"note"`
	IsActive         bool       `db:"is_active"`
	InboundConfirmed bool       `db:"inbound_confirmed"`
	UpdatedAt        time.Time  `db:"updated_at"`
	UpdatedBy        string     `db:"updated_by"`
}

func (f *FlatLineRecord) TransformToLineItem() (LineItem, error) {
	var serials []string
	if len(f.SerialNumbers) > 0 {
		if err := json.Unmarshal(f.SerialNumbers, &serials); err != nil {
			return LineItem{}, fmt.Errorf("failed to unmarshal serial numbers: %w", err)
		}
	}

	return LineItem{
		ID:               f.ID,
		Session:          SessionFromStored(f.GRNumber),
		SKU:              f.SKU,
		ItemName:         f.ItemName,
		Category:         ItemCategory(f.Category),
		ExpectedQty:      f.ExpectedQty,
		PhysicalQty:      f.PhysicalQty,
		SerialNumbers:    serials,
		Allocation:       Allocation(f.Allocation),
		Note:             f.Note,
		IsActive:         f.IsActive,
		InboundConfirmed: f.InboundConfirmed,
		UpdatedAt:        f.UpdatedAt,
		UpdatedBy:        f.UpdatedBy,
	}, nil
}
