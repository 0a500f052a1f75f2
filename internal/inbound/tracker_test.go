package inbound

import (
	"testing"
	"time"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockLineStore struct {
	mock.Mock
}

func (m *MockLineStore) GetLine(id int) (*models.LineItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LineItem), args.Error(1)
}

func (m *MockLineStore) UpdateLine(id int, rec goqu.Record) error {
	args := m.Called(id, rec)
	return args.Error(0)
}

func checkedLine() *models.LineItem {
	return &models.LineItem{
		ID:          4,
		Session:     models.ManifestSession("GR-2"),
		SKU:         "B2",
		ItemName:    "Logitech G502",
		Category:    models.CategoryBulk,
		ExpectedQty: 5,
		PhysicalQty: 5,
		Allocation:  models.AllocationStock,
		IsActive:    true,
		UpdatedAt:   time.Now().UTC().Add(-time.Minute),
		UpdatedBy:   "Rico",
	}
}

func TestConfirmInbound(t *testing.T) {
	store := new(MockLineStore)
	tracker := NewTracker(store, zap.NewNop())
	row := checkedLine()

	store.On("GetLine", 4).Return(row, nil).Once()
	store.On("UpdateLine", 4, mock.Anything).Return(nil).Once()

	err := tracker.ConfirmInbound(4, "Koordinator")

	assert.NoError(t, err)

	rec := store.Calls[1].Arguments.Get(1).(goqu.Record)
	assert.Equal(t, true, rec["inbound_confirmed"])
	assert.Equal(t, "INBOUND:Koordinator", rec["updated_by"])
	assert.Contains(t, rec["note"], "Koordinator")
	store.AssertExpectations(t)
}

func TestConfirmInboundIneligibleWithoutQuantity(t *testing.T) {
	store := new(MockLineStore)
	tracker := NewTracker(store, zap.NewNop())
	row := checkedLine()
	row.PhysicalQty = 0

	store.On("GetLine", 4).Return(row, nil).Once()

	err := tracker.ConfirmInbound(4, "Koordinator")

	var validation *custom_error.ValidationError
	assert.ErrorAs(t, err, &validation)
	store.AssertNotCalled(t, "UpdateLine", mock.Anything, mock.Anything)
}

func TestConfirmInboundOneWay(t *testing.T) {
	store := new(MockLineStore)
	tracker := NewTracker(store, zap.NewNop())
	row := checkedLine()
	row.InboundConfirmed = true

	store.On("GetLine", 4).Return(row, nil).Once()

	err := tracker.ConfirmInbound(4, "Koordinator")

	var validation *custom_error.ValidationError
	assert.ErrorAs(t, err, &validation)
	store.AssertNotCalled(t, "UpdateLine", mock.Anything, mock.Anything)
}

func TestConfirmInboundUnknownLine(t *testing.T) {
	store := new(MockLineStore)
	tracker := NewTracker(store, zap.NewNop())

	store.On("GetLine", 99).Return(nil, nil).Once()

	err := tracker.ConfirmInbound(99, "Koordinator")

	var validation *custom_error.ValidationError
	assert.ErrorAs(t, err, &validation)
}
