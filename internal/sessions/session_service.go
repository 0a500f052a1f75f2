package sessions

import (
	"strings"
	"time"

	custom_error "receiving/pkg/errors"
	"receiving/pkg/models"

	"go.uber.org/zap"
)

type LineStore interface {
	InsertLineBatch(lines []models.LineItem) (int, error)
	ArchiveSession(grNumber string) (int64, error)
	ActiveSessionIDs() ([]string, error)
	ArchivedSessionIDs() ([]string, error)
	DeleteActiveLines() (int64, error)
}

// Service groups line items under GR sessions. Several sessions can be open
// for checking at once; a session disappears from the active set only through
// explicit archival.
type Service struct {
	store LineStore
	log   *zap.Logger
}

func NewService(store LineStore, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

// IngestManifest creates one expected line per manifest row. Rows are written
// in chunks; a mid-batch store failure leaves earlier chunks committed, which
// the caller surfaces together with the inserted count.
func (s *Service) IngestManifest(rows []models.ManifestRow, grNumber string) (int, error) {
	gr := strings.TrimSpace(grNumber)
	if gr == "" {
		return 0, custom_error.NewValidationError("GR number is required")
	}
	if gr == models.AdHocStorageID {
		return 0, custom_error.NewValidationError("%q is reserved for ad-hoc intake", models.AdHocStorageID)
	}
	if len(rows) == 0 {
		return 0, custom_error.NewValidationError("manifest contains no rows")
	}

	session := models.ManifestSession(gr)
	now := time.Now().UTC()

	lines := make([]models.LineItem, 0, len(rows))
	for _, row := range rows {
		line := models.LineItem{
			Session:          session,
			SKU:              row.SKU,
			ItemName:         row.ItemName,
			Category:         row.Category,
			ExpectedQty:      row.ExpectedQty,
			PhysicalQty:      0,
			Allocation:       row.Allocation,
			Note:             row.Note,
			IsActive:         true,
			InboundConfirmed: false,
			UpdatedAt:        now,
			UpdatedBy:        "-",
		}
		if row.Category == models.CategorySerialized {
			line.SerialNumbers = []string{}
		}
		lines = append(lines, line)
	}

	inserted, err := s.store.InsertLineBatch(lines)
	if err != nil {
		s.log.Error("manifest ingestion failed mid-batch",
			zap.String("gr_number", gr),
			zap.Int("inserted", inserted),
			zap.Error(err),
		)
		return inserted, err
	}

	s.log.Info("manifest ingested",
		zap.String("gr_number", gr),
		zap.Int("lines", inserted),
	)

	return inserted, nil
}

// ArchiveSession closes a session for checking. Idempotent: archiving an
// already archived session affects zero rows and succeeds.
func (s *Service) ArchiveSession(grNumber string) error {
	gr := strings.TrimSpace(grNumber)
	if gr == "" {
		return custom_error.NewValidationError("GR number is required")
	}

	affected, err := s.store.ArchiveSession(gr)
	if err != nil {
		return err
	}

	s.log.Info("session archived",
		zap.String("gr_number", gr),
		zap.Int64("lines", affected),
	)

	return nil
}

func (s *Service) ListActiveSessions() ([]string, error) {
	return s.store.ActiveSessionIDs()
}

func (s *Service) ListArchivedSessions() ([]string, error) {
	return s.store.ArchivedSessionIDs()
}

// PurgeActiveLines hard-deletes every open row without archiving. Irreversible;
// the handler gates it behind admin role and the reset PIN.
func (s *Service) PurgeActiveLines() (int64, error) {
	deleted, err := s.store.DeleteActiveLines()
	if err != nil {
		return 0, err
	}

	s.log.Warn("active sessions purged", zap.Int64("lines", deleted))

	return deleted, nil
}
