package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/client"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/tags"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/filex"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/netx"
)

// JournalService covers the tag index and journal export.
type JournalService interface {
	// Tags refreshes the local tag index and falls back to it offline.
	Tags(ctx context.Context, userID string) ([]api.Tag, error)
	// Export asks the server for a journal dump. With a non-empty path the
	// dump is downloaded there as well.
	Export(ctx context.Context, userID, path string) (api.ExportResponse, error)
}

type journalService struct {
	client   client.Client
	db       *sql.DB
	download *http.Client
	log      logging.Logger
}

func NewJournalService(c client.Client, db *sql.DB, log logging.Logger) JournalService {
	return &journalService{client: c, db: db, log: log.With("module", "journal")}
}

func (s *journalService) Tags(ctx context.Context, userID string) ([]api.Tag, error) {
	remote, err := s.client.ListTags(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			s.log.Warn(ctx, "Server unavailable, listing cached tags", "error", err)
			return tags.NewSQLiteRepository(s.db).ListByUser(ctx, userID)
		}
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return tags.NewSQLiteRepository(tx).ReplaceForUser(ctx, userID, remote)
	})
	if err != nil {
		s.log.Error(ctx, "Caching tags failed", "user_id", userID, "error", err)
	}
	return remote, nil
}

func (s *journalService) Export(ctx context.Context, userID, path string) (api.ExportResponse, error) {
	res, err := s.client.Export(ctx, userID)
	if err != nil {
		return res, err
	}
	if path == "" {
		return res, nil
	}

	path, err = filex.ExpandHome(path)
	if err != nil {
		return res, err
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return res, err
	}
	f, err := os.Create(path)
	if err != nil {
		return res, fmt.Errorf("create export file: %w", err)
	}
	n, err := netx.DownloadPresignedURL(ctx, s.download, res.URL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return res, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	s.log.Info(ctx, "Journal exported", "user_id", userID, "key", res.Key, "bytes", n)
	return res, nil
}
