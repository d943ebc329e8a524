package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/client"
	"github.com/dmitrijs2005/rosebudthorn/internal/client/repositories/groups"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
)

// GroupService resolves group membership and the group feed.
type GroupService interface {
	GenerateUniqueCode(ctx context.Context) (string, error)
	CreateGroup(ctx context.Context, userID, name, code string) (api.Group, error)
	JoinGroup(ctx context.Context, userID, codeOrID string) (api.Group, error)
	ListGroups(ctx context.Context, userID string) ([]api.Group, error)
	Feed(ctx context.Context, groupCode string) (api.Group, []api.Entry, error)
	TogglePrivacy(ctx context.Context, groupCode, entryID, userID string) (api.Entry, error)
	React(ctx context.Context, groupCode, entryID, kind string) (api.Entry, error)
}

type groupService struct {
	client     client.Client
	db         *sql.DB
	retryDelay time.Duration
	newCode    func() (string, error)
	log        logging.Logger
}

func NewGroupService(c client.Client, db *sql.DB, retryDelay time.Duration, log logging.Logger) GroupService {
	return &groupService{
		client:     c,
		db:         db,
		retryDelay: retryDelay,
		newCode: func() (string, error) {
			return common.RandomString(common.GroupCodeLength, common.GroupCodeAlphabet)
		},
		log: log.With("module", "groups"),
	}
}

// GenerateUniqueCode draws codes until the server reports one as available.
// While the server is unreachable it waits retryDelay between attempts,
// without an attempt limit; cancel ctx to give up.
func (s *groupService) GenerateUniqueCode(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate group code: %w", err)
		}

		ok, err := s.client.VerifyCode(ctx, code)
		switch {
		case err == nil && ok:
			return code, nil
		case err == nil:
			s.log.Debug(ctx, "Group code taken", "code", code)
			continue
		case errors.Is(err, common.ErrUnavailable):
			s.log.Warn(ctx, "Verifying group code failed, retrying", "delay", s.retryDelay, "error", err)
		default:
			return "", err
		}

		timer := time.NewTimer(s.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *groupService) CreateGroup(ctx context.Context, userID, name, code string) (api.Group, error) {
	if userID == "" {
		return api.Group{}, common.ErrorUnauthorized
	}
	req := api.CreateGroupRequest{Name: name, GroupCode: code}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return api.Group{}, err
	}

	g, err := s.client.CreateGroup(ctx, userID, req)
	if err != nil {
		return api.Group{}, err
	}
	s.cache(ctx, g)
	return g, nil
}

func (s *groupService) JoinGroup(ctx context.Context, userID, codeOrID string) (api.Group, error) {
	if userID == "" {
		return api.Group{}, common.ErrorUnauthorized
	}
	codeOrID = strings.TrimSpace(codeOrID)
	if codeOrID == "" {
		return api.Group{}, fmt.Errorf("%w: group code is required", common.ErrValidation)
	}

	g, err := s.client.JoinGroup(ctx, codeOrID, userID)
	if err != nil {
		return api.Group{}, err
	}
	s.cache(ctx, g)
	return g, nil
}

// ListGroups refreshes the cached groups from the server and falls back to
// the cache when the server is unreachable.
func (s *groupService) ListGroups(ctx context.Context, userID string) ([]api.Group, error) {
	remote, err := s.client.ListGroups(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrUnavailable) {
			s.log.Warn(ctx, "Server unavailable, listing cached groups", "error", err)
			return groups.NewSQLiteRepository(s.db).List(ctx)
		}
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := groups.NewSQLiteRepository(tx)
		for _, g := range remote {
			if err := repo.Upsert(ctx, g); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "Caching groups failed", "error", err)
	}
	return remote, nil
}

// resolve maps a group code to the cached group. Group ids pass through.
func (s *groupService) resolve(ctx context.Context, codeOrID string) (api.Group, error) {
	code := strings.ToUpper(strings.TrimSpace(codeOrID))
	if api.ValidateGroupCode(code) != nil {
		return api.Group{ID: codeOrID}, nil
	}
	g, err := groups.NewSQLiteRepository(s.db).GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return api.Group{}, fmt.Errorf("%w: unknown group %s, run 'groups' first", common.ErrorNotFound, code)
		}
		return api.Group{}, err
	}
	return *g, nil
}

func (s *groupService) Feed(ctx context.Context, groupCode string) (api.Group, []api.Entry, error) {
	g, err := s.resolve(ctx, groupCode)
	if err != nil {
		return api.Group{}, nil, err
	}
	list, err := s.client.GroupEntries(ctx, g.ID)
	if err != nil {
		return g, nil, err
	}
	return g, list, nil
}

func (s *groupService) TogglePrivacy(ctx context.Context, groupCode, entryID, userID string) (api.Entry, error) {
	g, err := s.resolve(ctx, groupCode)
	if err != nil {
		return api.Entry{}, err
	}
	return s.client.TogglePrivacy(ctx, g.ID, entryID, userID)
}

func (s *groupService) React(ctx context.Context, groupCode, entryID, kind string) (api.Entry, error) {
	req := api.ReactionRequest{ReactionKind: strings.ToLower(strings.TrimSpace(kind))}
	if err := req.Validate(); err != nil {
		return api.Entry{}, err
	}
	g, err := s.resolve(ctx, groupCode)
	if err != nil {
		return api.Entry{}, err
	}
	return s.client.React(ctx, g.ID, entryID, req.ReactionKind)
}

func (s *groupService) cache(ctx context.Context, g api.Group) {
	if err := groups.NewSQLiteRepository(s.db).Upsert(ctx, g); err != nil {
		s.log.Error(ctx, "Caching group failed", "group_code", g.GroupCode, "error", err)
	}
}
