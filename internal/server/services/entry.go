package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/cache"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/repomanager"
)

// EntryService owns entries, their tags and reactions. "Today" is decided in
// loc, so the edit window closes at local midnight.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.EntryCache
	loc         *time.Location
	now         func() time.Time
	log         logging.Logger
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager, c *cache.EntryCache, loc *time.Location, log logging.Logger) *EntryService {
	if loc == nil {
		loc = time.UTC
	}
	return &EntryService{
		db:          db,
		repomanager: m,
		cache:       c,
		loc:         loc,
		now:         time.Now,
		log:         log.With("module", "entries"),
	}
}

func (s *EntryService) today() datex.Date {
	return datex.Today(s.loc, s.now())
}

// hydrate loads the tag names and reactions of e.
func (s *EntryService) hydrate(ctx context.Context, db dbx.DBTX, e *models.Entry) error {
	names, err := s.repomanager.Tags(db).NamesForEntry(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("error loading tags: %w", err)
	}
	reactions, err := s.repomanager.Entries(db).Reactions(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("error loading reactions: %w", err)
	}
	e.Tags = names
	e.Reactions = reactions
	return nil
}

func (s *EntryService) toAPI(ctx context.Context, list []*models.Entry) ([]api.Entry, error) {
	out := make([]api.Entry, 0, len(list))
	for _, e := range list {
		if err := s.hydrate(ctx, s.db, e); err != nil {
			return nil, err
		}
		out = append(out, e.ToAPI())
	}
	return out, nil
}

// writeTags links tags to entryID in order, creating unknown tag names for
// the user on the way.
func (s *EntryService) writeTags(ctx context.Context, tx dbx.DBTX, userID, entryID string, tags []string) error {
	repo := s.repomanager.Tags(tx)
	for i, name := range tags {
		tagID, err := repo.Upsert(ctx, userID, name)
		if err != nil {
			return fmt.Errorf("error saving tag %q: %w", name, err)
		}
		if err := repo.Link(ctx, entryID, tagID, i); err != nil {
			return fmt.Errorf("error linking tag %q: %w", name, err)
		}
	}
	return nil
}

func (s *EntryService) invalidate(ctx context.Context, userIDs ...string) {
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.log.Warn(ctx, "entry cache invalidation failed", "user_ids", userIDs, "error", err)
	}
}

// ListByUser returns every entry of userID. The order carries no meaning.
func (s *EntryService) ListByUser(ctx context.Context, userID string) ([]api.Entry, error) {
	if cached, ok := s.cache.Get(ctx, userID); ok {
		return cached, nil
	}

	list, err := s.repomanager.Entries(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	out, err := s.toAPI(ctx, list)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, userID, out); err != nil {
		s.log.Warn(ctx, "entry cache write failed", "user_id", userID, "error", err)
	}
	return out, nil
}

// Create stores today's entry for req.UserID together with its tags. A second
// entry on the same day yields common.ErrEntryExists.
func (s *EntryService) Create(ctx context.Context, req api.CreateEntryRequest) (api.Entry, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return api.Entry{}, err
	}

	e := &models.Entry{
		UserID:    req.UserID,
		Date:      s.today(),
		RoseText:  req.RoseText,
		BudText:   req.BudText,
		ThornText: req.ThornText,
		IsPublic:  *req.IsPublic,
		Tags:      req.Tags,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Entries(tx).Create(ctx, e); err != nil {
			return err
		}
		return s.writeTags(ctx, tx, e.UserID, e.ID, e.Tags)
	})
	if err != nil {
		s.log.Error(ctx, "entry create failed", "user_id", e.UserID, "entry_id", e.ID, "error", err)
		return api.Entry{}, err
	}

	s.invalidate(ctx, e.UserID)
	return e.ToAPI(), nil
}

// Update applies a partial update to an entry owned by userID. Entries can only
// be changed on the day they were written.
func (s *EntryService) Update(ctx context.Context, userID, entryID string, req api.UpdateEntryRequest) (api.Entry, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return api.Entry{}, err
	}

	e, err := s.repomanager.Entries(s.db).GetByID(ctx, entryID)
	if err != nil {
		return api.Entry{}, err
	}
	if e.UserID != userID {
		return api.Entry{}, common.ErrorForbidden
	}
	if e.Date != s.today() {
		return api.Entry{}, common.ErrEditWindowClosed
	}

	if req.RoseText != nil {
		e.RoseText = *req.RoseText
	}
	if req.BudText != nil {
		e.BudText = *req.BudText
	}
	if req.ThornText != nil {
		e.ThornText = *req.ThornText
	}
	if req.IsPublic != nil {
		e.IsPublic = *req.IsPublic
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Entries(tx).Update(ctx, e); err != nil {
			return err
		}
		if req.Tags != nil {
			if err := s.repomanager.Tags(tx).UnlinkEntry(ctx, e.ID); err != nil {
				return fmt.Errorf("error unlinking tags: %w", err)
			}
			if err := s.writeTags(ctx, tx, e.UserID, e.ID, *req.Tags); err != nil {
				return err
			}
		}
		return s.hydrate(ctx, tx, e)
	})
	if err != nil {
		s.log.Error(ctx, "entry update failed", "user_id", e.UserID, "entry_id", e.ID, "error", err)
		return api.Entry{}, err
	}

	s.invalidate(ctx, e.UserID)
	return e.ToAPI(), nil
}

// entryInGroup loads the group and the entry and checks that the entry's
// author belongs to the group. A requester outside the group yields
// common.ErrorForbidden.
func (s *EntryService) entryInGroup(ctx context.Context, groupID, entryID, requesterID string) (*models.Entry, error) {
	groups := s.repomanager.Groups(s.db)

	if _, err := groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	member, err := groups.IsMember(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, common.ErrorForbidden
	}

	e, err := s.repomanager.Entries(s.db).GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.UserID != requesterID {
		authorIn, err := groups.IsMember(ctx, groupID, e.UserID)
		if err != nil {
			return nil, err
		}
		if !authorIn {
			return nil, fmt.Errorf("%w: entry is not shared with this group", common.ErrorNotFound)
		}
	}
	return e, nil
}

// TogglePrivacy flips the visibility of an entry shared in groupID. The
// requester must be a member of the group.
func (s *EntryService) TogglePrivacy(ctx context.Context, groupID, entryID, userID string) (api.Entry, error) {
	e, err := s.entryInGroup(ctx, groupID, entryID, userID)
	if err != nil {
		return api.Entry{}, err
	}

	public, err := s.repomanager.Entries(s.db).TogglePublic(ctx, e.ID)
	if err != nil {
		return api.Entry{}, err
	}
	e.IsPublic = public

	if err := s.hydrate(ctx, s.db, e); err != nil {
		return api.Entry{}, err
	}
	s.invalidate(ctx, e.UserID)
	return e.ToAPI(), nil
}

// React appends a reaction of userID to a public entry shared in groupID.
func (s *EntryService) React(ctx context.Context, groupID, entryID, userID, kind string) (api.Entry, error) {
	if err := (api.ReactionRequest{ReactionKind: kind}).Validate(); err != nil {
		return api.Entry{}, err
	}

	e, err := s.entryInGroup(ctx, groupID, entryID, userID)
	if err != nil {
		return api.Entry{}, err
	}
	if !e.IsPublic {
		return api.Entry{}, fmt.Errorf("%w: entry is private", common.ErrorNotFound)
	}

	r := &models.Reaction{EntryID: e.ID, GroupID: groupID, UserReactingID: userID, ReactionKind: kind}
	if err := s.repomanager.Entries(s.db).AddReaction(ctx, r); err != nil {
		return api.Entry{}, err
	}

	if err := s.hydrate(ctx, s.db, e); err != nil {
		return api.Entry{}, err
	}
	s.invalidate(ctx, e.UserID)
	return e.ToAPI(), nil
}

// GroupEntries lists the public entries of groupID's members, newest day
// first. Only members may read the feed.
func (s *EntryService) GroupEntries(ctx context.Context, groupID, userID string) ([]api.Entry, error) {
	groups := s.repomanager.Groups(s.db)
	if _, err := groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	member, err := groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, common.ErrorForbidden
	}

	list, err := s.repomanager.Entries(s.db).ListPublicByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("error listing group entries: %w", err)
	}
	return s.toAPI(ctx, list)
}

// ListTags returns the user's tags with the ids of the entries carrying them.
func (s *EntryService) ListTags(ctx context.Context, userID string) ([]api.Tag, error) {
	list, err := s.repomanager.Tags(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	out := make([]api.Tag, 0, len(list))
	for _, t := range list {
		out = append(out, t.ToAPI())
	}
	return out, nil
}
