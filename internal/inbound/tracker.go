package inbound

import (
	"fmt"
	"strings"
	"time"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// ActorPrefix tags inbound-confirmation stamps so report readers can tell them
// apart from checking edits.
const ActorPrefix = "INBOUND:"

type LineStore interface {
	GetLine(id int) (*models.LineItem, error)
	UpdateLine(id int, rec goqu.Record) error
}

// Tracker drives the one-way PENDING -> CONFIRMED flag on checked lines.
// Confirmation is deliberately coarser than checking: it performs no snapshot
// conflict check, so a note written moments earlier by a checker is
// overwritten by the confirmation annotation.
type Tracker struct {
	store LineStore
	log   *zap.Logger
}

func NewTracker(store LineStore, log *zap.Logger) *Tracker {
	return &Tracker{store: store, log: log}
}

// ConfirmInbound marks a line as physically moved to its destination. Only
// lines with a recorded physical quantity that are still pending are eligible.
func (t *Tracker) ConfirmInbound(itemID int, actor string) error {
	if strings.TrimSpace(actor) == "" {
		return custom_error.NewValidationError("actor is required")
	}

	row, err := t.store.GetLine(itemID)
	if err != nil {
		return err
	}
	if row == nil {
		return custom_error.NewValidationError("line item %d does not exist", itemID)
	}
	if row.InboundConfirmed {
		return custom_error.NewValidationError("line item %d is already confirmed inbound", itemID)
	}
	if row.PhysicalQty <= 0 {
		return custom_error.NewValidationError("line item %d has no physical quantity recorded yet", itemID)
	}

	now := time.Now().UTC()
	rec := goqu.Record{
		"inbound_confirmed": true,
		"note":              fmt.Sprintf("Inbound confirmed by %s", actor),
		"updated_at":        now,
		"updated_by":        ActorPrefix + actor,
	}

	if err := t.store.UpdateLine(itemID, rec); err != nil {
		return err
	}

	t.log.Info("inbound confirmed",
		zap.Int("line_id", itemID),
		zap.String("actor", actor),
	)

	return nil
}
