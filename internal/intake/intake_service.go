package intake

import (
	"fmt"
	"strings"
	"time"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

	"go.uber.org/zap"
)

type LineStore interface {
	GetLine(id int) (*models.LineItem, error)
	InsertLine(line models.LineItem) (*models.LineItem, error)
	DeleteLine(id int) error
}

// Service creates line items for goods that arrived with no manifest line.
// Rows land in the reserved ad-hoc pseudo-session with an expected quantity of
// zero, so every unit shows up as surplus in reports.
type Service struct {
	store LineStore
	log   *zap.Logger
}

func NewService(store LineStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// CreateAdHocItem validates and persists an undocumented receipt. Pure
// creation path: no prior writer exists, so no conflict check is needed.
func (s *Service) CreateAdHocItem(req models.AdHocIntakeRequest, actor string) (*models.LineItem, error) {
	brand := strings.TrimSpace(req.Brand)
	sku := strings.TrimSpace(req.SKU)
	note := strings.TrimSpace(req.Note)

	if brand == "" {
		return nil, custom_error.NewValidationError("brand is required for ad-hoc intake")
	}
	if sku == "" {
		return nil, custom_error.NewValidationError("sku is required for ad-hoc intake")
	}
	if note == "" {
		return nil, custom_error.NewValidationError("a note describing the undocumented receipt is required")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, custom_error.NewValidationError("actor is required")
	}

	category, err := models.ParseItemCategory(string(req.Category))
	if err != nil {
		return nil, custom_error.NewValidationError("%v", err)
	}

	allocation := req.Allocation
	if allocation == "" {
		allocation = models.AllocationStock
	}
	if _, err := models.ParseAllocation(string(allocation)); err != nil {
		return nil, custom_error.NewValidationError("%v", err)
	}

	var serials []string
	qty := req.Qty

	switch category {
	case models.CategorySerialized:
		serials = trimSerials(req.Serials)
		if len(serials) == 0 {
			return nil, custom_error.NewValidationError("serialized ad-hoc intake requires at least one serial number")
		}
		qty = len(serials)
	case models.CategoryBulk:
		if qty <= 0 {
			return nil, custom_error.NewValidationError("bulk ad-hoc intake requires a quantity greater than zero")
		}
		serials = nil
	}

	line := models.LineItem{
		Session:          models.AdHocSession(),
		SKU:              sku,
		ItemName:         brand,
		Category:         category,
		ExpectedQty:      0,
		PhysicalQty:      qty,
		SerialNumbers:    serials,
		Allocation:       allocation,
		Note:             fmt.Sprintf("[AD-HOC %s] %s", actor, note),
		IsActive:         true,
		InboundConfirmed: false,
		UpdatedAt:        time.Now().UTC(),
		UpdatedBy:        actor,
	}

	created, err := s.store.InsertLine(line)
	if err != nil {
		return nil, err
	}

	s.log.Info("ad-hoc intake recorded",
		zap.Int("line_id", created.ID),
		zap.String("sku", created.SKU),
		zap.String("actor", actor),
	)

	return created, nil
}

// DeleteAdHocItem hard-deletes an ad-hoc row after admin review. Manifest rows
// are never hard-deleted from here; they leave the system through archival.
func (s *Service) DeleteAdHocItem(id int) error {
	row, err := s.store.GetLine(id)
	if err != nil {
		return err
	}
	if row == nil {
		return custom_error.NewValidationError("line item %d does not exist", id)
	}
	if !row.Session.IsAdHoc() {
		return custom_error.NewValidationError("line item %d belongs to a manifest session and cannot be deleted", id)
	}

	return s.store.DeleteLine(id)
}

func trimSerials(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	serials := make([]string, 0, len(raw))
	for _, candidate := range raw {
		s := strings.TrimSpace(candidate)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		serials = append(serials, s)
	}
	return serials
}
