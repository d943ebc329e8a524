package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/storage"
	"github.com/google/uuid"
)

// ExportLinkTTL is how long a presigned export link stays valid.
const ExportLinkTTL = 15 * time.Minute

// EntryLister is the part of EntryService the exporter reads from.
type EntryLister interface {
	ListByUser(ctx context.Context, userID string) ([]api.Entry, error)
}

// journalExport is the document written to object storage.
type journalExport struct {
	UserID     string      `json:"user_id"`
	ExportedAt time.Time   `json:"exported_at"`
	Entries    []api.Entry `json:"entries"`
}

// ExportService dumps a user's journal to object storage.
type ExportService struct {
	entries EntryLister
	store   storage.ObjectStore
	now     func() time.Time
	log     logging.Logger
}

// NewExportService returns an exporter. A nil store disables exports.
func NewExportService(entries EntryLister, store storage.ObjectStore, log logging.Logger) *ExportService {
	return &ExportService{
		entries: entries,
		store:   store,
		now:     time.Now,
		log:     log.With("module", "export"),
	}
}

// ExportKey returns the object key of a new export of userID made at t.
func ExportKey(userID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("exports/%s/%04d/%02d/%02d/%s.json", userID, t.Year(), int(t.Month()), t.Day(), uuid.NewString())
}

// Export writes all entries of userID as JSON and returns a presigned link.
func (s *ExportService) Export(ctx context.Context, userID string) (api.ExportResponse, error) {
	if s.store == nil {
		return api.ExportResponse{}, fmt.Errorf("%w: export storage is not configured", common.ErrorNotFound)
	}

	list, err := s.entries.ListByUser(ctx, userID)
	if err != nil {
		return api.ExportResponse{}, err
	}

	now := s.now()
	body, err := json.MarshalIndent(journalExport{UserID: userID, ExportedAt: now.UTC(), Entries: list}, "", "  ")
	if err != nil {
		return api.ExportResponse{}, fmt.Errorf("error encoding export: %w", err)
	}

	key := ExportKey(userID, now)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return api.ExportResponse{}, err
	}
	url, err := s.store.PresignGet(ctx, key, ExportLinkTTL)
	if err != nil {
		return api.ExportResponse{}, err
	}

	s.log.Info(ctx, "journal exported", "user_id", userID, "key", key, "entries", len(list))
	return api.ExportResponse{URL: url, Key: key, ExpiresAt: now.Add(ExportLinkTTL).UTC()}, nil
}
