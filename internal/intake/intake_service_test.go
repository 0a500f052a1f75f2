package intake

import (
	"testing"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

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

func (m *MockLineStore) InsertLine(line models.LineItem) (*models.LineItem, error) {
	args := m.Called(line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LineItem), args.Error(1)
}

func (m *MockLineStore) DeleteLine(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestCreateAdHocSerializedItem(t *testing.T) {
	store := new(MockLineStore)
	service := NewService(store, zap.NewNop())

	store.On("InsertLine", mock.Anything).Return(&models.LineItem{ID: 11}, nil).Once()

	_, err := service.CreateAdHocItem(models.AdHocIntakeRequest{
		Brand:    "Samsung",
		SKU:      "S24U",
		Category: models.CategorySerialized,
		Serials:  []string{" SN-1 ", "SN-2"},
		Note:     "no PO paperwork",
	}, "Al Fath")

	assert.NoError(t, err)

	line := store.Calls[0].Arguments.Get(0).(models.LineItem)
	assert.True(t, line.Session.IsAdHoc())
	assert.Equal(t, models.AdHocStorageID, line.Session.StorageID())
	assert.Equal(t, 0, line.ExpectedQty)
	assert.Equal(t, 2, line.PhysicalQty)
	assert.Equal(t, []string{"SN-1", "SN-2"}, line.SerialNumbers)
	assert.Equal(t, "[AD-HOC Al Fath] no PO paperwork", line.Note)
	assert.True(t, line.IsActive)
	assert.False(t, line.InboundConfirmed)
	store.AssertExpectations(t)
}

func TestCreateAdHocBulkItem(t *testing.T) {
	store := new(MockLineStore)
	service := NewService(store, zap.NewNop())

	store.On("InsertLine", mock.Anything).Return(&models.LineItem{ID: 12}, nil).Once()

	_, err := service.CreateAdHocItem(models.AdHocIntakeRequest{
		Brand:    "Vivan",
		SKU:      "VIV-CBL-01",
		Category: models.CategoryBulk,
		Qty:      40,
		Note:     "extra carton on pallet",
	}, "Sasa")

	assert.NoError(t, err)

	line := store.Calls[0].Arguments.Get(0).(models.LineItem)
	assert.Equal(t, 40, line.PhysicalQty)
	assert.Nil(t, line.SerialNumbers)
	assert.Equal(t, models.AllocationStock, line.Allocation)
}

func TestCreateAdHocValidation(t *testing.T) {
	store := new(MockLineStore)
	service := NewService(store, zap.NewNop())

	tests := []struct {
		name string
		req  models.AdHocIntakeRequest
	}{
		{
			name: "serialized with empty serial list",
			req: models.AdHocIntakeRequest{
				Brand:    "Samsung",
				SKU:      "S24U",
				Category: models.CategorySerialized,
				Note:     "note",
			},
		},
		{
			name: "bulk with zero quantity",
			req: models.AdHocIntakeRequest{
				Brand:    "Vivan",
				SKU:      "VIV-CBL-01",
				Category: models.CategoryBulk,
				Note:     "note",
			},
		},
		{
			name: "missing note",
			req: models.AdHocIntakeRequest{
				Brand:    "Vivan",
				SKU:      "VIV-CBL-01",
				Category: models.CategoryBulk,
				Qty:      5,
			},
		},
		{
			name: "missing brand",
			req: models.AdHocIntakeRequest{
				SKU:      "VIV-CBL-01",
				Category: models.CategoryBulk,
				Qty:      5,
				Note:     "note",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateAdHocItem(tt.req, "Sasa")
			var validation *custom_error.ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}

	store.AssertNotCalled(t, "InsertLine", mock.Anything)
}

func TestDeleteAdHocItemOnly(t *testing.T) {
	store := new(MockLineStore)
	service := NewService(store, zap.NewNop())

	manifestRow := &models.LineItem{ID: 5, Session: models.ManifestSession("GR-1")}
	store.On("GetLine", 5).Return(manifestRow, nil).Once()

	err := service.DeleteAdHocItem(5)

	var validation *custom_error.ValidationError
	assert.ErrorAs(t, err, &validation)
	store.AssertNotCalled(t, "DeleteLine", mock.Anything)

	adHocRow := &models.LineItem{ID: 6, Session: models.AdHocSession()}
	store.On("GetLine", 6).Return(adHocRow, nil).Once()
	store.On("DeleteLine", 6).Return(nil).Once()

	assert.NoError(t, service.DeleteAdHocItem(6))
	store.AssertExpectations(t)
}
