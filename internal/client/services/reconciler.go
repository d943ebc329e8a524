package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/client"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/entries"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
)

// Reconciler keeps today's entry of the logged-in user consistent between the
// local store and the server.
//
// The session is scoped to one user and one calendar day; it resets to
// ModeUnknown when either changes. Every load takes a sequence number and a
// remote answer that arrives after a newer load or submit started is
// discarded.
type Reconciler struct {
	client client.Client
	db     *sql.DB
	loc    *time.Location
	now    func() time.Time
	log    logging.Logger

	mu     sync.Mutex
	seq    uint64
	userID string
	view   models.DailyView
}

func NewReconciler(c client.Client, db *sql.DB, loc *time.Location, log logging.Logger) *Reconciler {
	return &Reconciler{
		client: c,
		db:     db,
		loc:    loc,
		now:    time.Now,
		log:    log.With("module", "reconciler"),
		view:   models.DailyView{Mode: models.ModeUnknown},
	}
}

func (r *Reconciler) today() datex.Date {
	return datex.Today(r.loc, r.now())
}

// begin resets the session if needed and returns a new sequence number.
// Callers hold r.mu.
func (r *Reconciler) begin(userID string, today datex.Date) uint64 {
	if r.userID != userID || r.view.Date != today {
		r.userID = userID
		r.view = models.DailyView{Mode: models.ModeUnknown, Date: today}
	}
	r.seq++
	return r.seq
}

// commit stores view unless a newer operation started after seq.
func (r *Reconciler) commit(seq uint64, view models.DailyView) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		return false
	}
	r.view = view
	return true
}

// View returns the current session view.
func (r *Reconciler) View() models.DailyView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// LoadTodaysEntry reconciles today's entry of userID. When the local store
// has a record for today, onProvisional (if not nil) is called with it before
// the server is asked. A network failure is not an error: the local view is
// returned with Offline set.
func (r *Reconciler) LoadTodaysEntry(ctx context.Context, userID string, onProvisional func(models.DailyView)) (models.DailyView, error) {
	today := r.today()

	r.mu.Lock()
	seq := r.begin(userID, today)
	current := r.view
	r.mu.Unlock()

	repo := entries.NewSQLiteRepository(r.db)
	cached, err := repo.GetByUserDate(ctx, userID, today)
	if err != nil {
		r.log.Warn(ctx, "Reading local store failed", "user_id", userID, "error", err)
	}

	local := current
	if len(cached) > 0 {
		e := cached[0].Entry
		local = models.DailyView{Mode: models.ModeProvisional, Date: today, Entry: &e}
		if current.Mode == models.ModeEdit && current.HasEntry() && current.Entry.ID == e.ID {
			local.Mode = models.ModeEdit
		}
		if r.commit(seq, local) && onProvisional != nil {
			onProvisional(local)
		}
	}

	remote, err := r.client.ListEntries(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			r.log.Warn(ctx, "Server unavailable, showing local entry", "user_id", userID, "error", err)
			local.Offline = true
			local.Duplicates = nil
			r.commit(seq, local)
			return local, nil
		}
		return local, err
	}

	var (
		match      *api.Entry
		duplicates []string
		keep       = make(map[string]struct{}, len(remote))
	)
	for i := range remote {
		keep[remote[i].ID] = struct{}{}
		if remote[i].Date != today {
			continue
		}
		if match == nil {
			match = &remote[i]
			continue
		}
		duplicates = append(duplicates, remote[i].ID)
	}
	if len(duplicates) > 0 {
		r.log.Warn(ctx, "Several entries for one day, using the first", "user_id", userID,
			"date", today.String(), "entry_id", match.ID, "duplicates", duplicates)
	}

	view := models.DailyView{Mode: models.ModeCreate, Date: today, Duplicates: duplicates}
	if match != nil {
		e := *match
		view.Mode = models.ModeEdit
		view.Entry = &e
	}

	if !r.isCurrent(seq) {
		r.log.Debug(ctx, "Dropping late entries response", "user_id", userID, "error", common.ErrStaleResponse)
		return r.View(), nil
	}

	if err := r.writeThrough(ctx, remote, cached, keep); err != nil {
		r.log.Error(ctx, "Updating local store failed", "user_id", userID, "error", err)
	}

	if !r.commit(seq, view) {
		r.log.Debug(ctx, "Dropping late entries response", "user_id", userID, "error", common.ErrStaleResponse)
		return r.View(), nil
	}
	return view, nil
}

func (r *Reconciler) isCurrent(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return seq == r.seq
}

// writeThrough overwrites the local store with the remote entries and purges
// cached records of today the server no longer knows.
func (r *Reconciler) writeThrough(ctx context.Context, remote []api.Entry, cached []models.CachedEntry, keep map[string]struct{}) error {
	now := r.now()
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := entries.NewSQLiteRepository(tx)
		for _, e := range remote {
			if err := repo.Upsert(ctx, &models.CachedEntry{Entry: e, CachedAt: now}); err != nil {
				return err
			}
		}
		for _, c := range cached {
			if _, ok := keep[c.ID]; ok {
				continue
			}
			if err := repo.Delete(ctx, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// SubmitEntry creates today's entry or, when the session knows its id,
// updates it with the whole draft. On failure the local store is left
// untouched and the current view is returned with the error.
func (r *Reconciler) SubmitEntry(ctx context.Context, userID string, draft models.Draft) (models.DailyView, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return r.View(), err
	}

	today := r.today()
	r.mu.Lock()
	prevUser, prev := r.userID, r.view
	seq := r.begin(userID, today)
	current := r.view
	r.mu.Unlock()

	// An entry opened before midnight is still sent as an update, so the
	// server can reject it as too late instead of a new entry being created.
	target := current
	if !current.HasEntry() && prevUser == userID && prev.HasEntry() && prev.Date != today {
		target = prev
	}

	if target.HasEntry() {
		updated, err := r.client.UpdateEntry(ctx, target.Entry.ID, draft.UpdateRequest())
		if err != nil {
			return current, err
		}
		if err := r.store(ctx, updated); err != nil {
			return current, err
		}
		return r.LoadTodaysEntry(ctx, userID, nil)
	}

	created, err := r.client.CreateEntry(ctx, draft.CreateRequest(userID))
	if err != nil {
		return current, err
	}
	if created.ID == "" {
		return current, fmt.Errorf("%w: server returned an entry without id", common.ErrorInternal)
	}

	view := models.DailyView{Mode: models.ModeEdit, Date: today, Entry: &created}
	r.commit(seq, view)
	if err := r.store(ctx, created); err != nil {
		return view, fmt.Errorf("entry %s saved on server: %w", created.ID, err)
	}
	r.log.Info(ctx, "Entry created", "user_id", userID, "entry_id", created.ID)
	return view, nil
}

func (r *Reconciler) store(ctx context.Context, e api.Entry) error {
	repo := entries.NewSQLiteRepository(r.db)
	if err := repo.Upsert(ctx, &models.CachedEntry{Entry: e, CachedAt: r.now()}); err != nil {
		return fmt.Errorf("local store: %w", err)
	}
	return nil
}

// History returns the locally cached entries of userID, newest first.
func (r *Reconciler) History(ctx context.Context, userID string) ([]models.CachedEntry, error) {
	return entries.NewSQLiteRepository(r.db).ListByUser(ctx, userID)
}
