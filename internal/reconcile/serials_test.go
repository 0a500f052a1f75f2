package reconcile

import (
	"testing"
	"time"

	custom_error "receiving/pkg/errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestAddSerialAppends(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())
	snapshot := time.Now().UTC()
	row := serializedLine(snapshot, "X1")

	store.On("GetLine", 9).Return(row, nil).Twice()
	store.On("GetLineStamp", 9).Return(row.UpdatedAt, row.UpdatedBy, nil).Once()
	store.On("UpdateLineChecked", 9, mock.Anything, snapshot).Return(int64(1), nil).Once()

	result, err := engine.AddSerial(9, "  X2 ", "Agung", snapshot)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	var rec goqu.Record
	for _, call := range store.Calls {
		if call.Method == "UpdateLineChecked" {
			rec = call.Arguments.Get(1).(goqu.Record)
		}
	}
	assert.Equal(t, 2, rec["physical_qty"])
	assert.JSONEq(t, `["X1","X2"]`, rec["serial_numbers"].(string))
	store.AssertExpectations(t)
}

func TestAddSerialDuplicateIsWarningNoOp(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())
	snapshot := time.Now().UTC()
	row := serializedLine(snapshot, "X1", "X2")

	store.On("GetLine", 9).Return(row, nil).Once()

	result, err := engine.AddSerial(9, "X2", "Agung", snapshot)

	assert.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "X2")
	store.AssertNotCalled(t, "UpdateLineChecked", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddSerialBlankRejected(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.AddSerial(9, "   ", "Agung", time.Now().UTC())

	var validation *custom_error.ValidationError
	assert.ErrorAs(t, err, &validation)
	store.AssertNotCalled(t, "GetLine", mock.Anything)
}

func TestRemoveSerialAt(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())
	snapshot := time.Now().UTC()
	row := serializedLine(snapshot, "X1", "X2", "X3")

	store.On("GetLine", 9).Return(row, nil).Twice()
	store.On("GetLineStamp", 9).Return(row.UpdatedAt, row.UpdatedBy, nil).Once()
	store.On("UpdateLineChecked", 9, mock.Anything, snapshot).Return(int64(1), nil).Once()

	result, err := engine.RemoveSerialAt(9, 1, "Agung", snapshot)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	var rec goqu.Record
	for _, call := range store.Calls {
		if call.Method == "UpdateLineChecked" {
			rec = call.Arguments.Get(1).(goqu.Record)
		}
	}
	assert.Equal(t, 2, rec["physical_qty"])
	assert.JSONEq(t, `["X1","X3"]`, rec["serial_numbers"].(string))
}

func TestRemoveSerialAtOutOfRange(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())
	snapshot := time.Now().UTC()
	row := serializedLine(snapshot, "X1")

	store.On("GetLine", 9).Return(row, nil).Once()

	_, err := engine.RemoveSerialAt(9, 3, "Agung", snapshot)

	var validation *custom_error.ValidationError
	assert.ErrorAs(t, err, &validation)
	store.AssertNotCalled(t, "UpdateLineChecked", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddSerialBatchSkipsDuplicates(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())
	snapshot := time.Now().UTC()
	row := serializedLine(snapshot, "X1", "X2")

	store.On("GetLine", 9).Return(row, nil).Twice()
	store.On("GetLineStamp", 9).Return(row.UpdatedAt, row.UpdatedBy, nil).Once()
	store.On("UpdateLineChecked", 9, mock.Anything, snapshot).Return(int64(1), nil).Once()

	// X2 collides with the existing set, the second X3 with the batch itself.
	result, err := engine.AddSerialBatch(9, "X2\nX3\n\n  X3  \n", "Agung", snapshot)

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Len(t, result.Warnings, 2)

	var rec goqu.Record
	for _, call := range store.Calls {
		if call.Method == "UpdateLineChecked" {
			rec = call.Arguments.Get(1).(goqu.Record)
		}
	}
	assert.Equal(t, 3, rec["physical_qty"])
	assert.JSONEq(t, `["X1","X2","X3"]`, rec["serial_numbers"].(string))
	store.AssertExpectations(t)
}

func TestAddSerialBatchAllDuplicates(t *testing.T) {
	store := new(MockLineStore)
	engine := NewEngine(store, zap.NewNop())
	snapshot := time.Now().UTC()
	row := serializedLine(snapshot, "X1", "X2")

	store.On("GetLine", 9).Return(row, nil).Once()

	result, err := engine.AddSerialBatch(9, "X1\nX2", "Agung", snapshot)

	assert.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Len(t, result.Warnings, 2)
	store.AssertNotCalled(t, "UpdateLineChecked", mock.Anything, mock.Anything, mock.Anything)
}

func TestNormalizeSerials(t *testing.T) {
	serials, warnings := normalizeSerials([]string{" X1 ", "", "X2", "X1", "  "})

	assert.Equal(t, []string{"X1", "X2"}, serials)
	assert.Len(t, warnings, 1)
}
