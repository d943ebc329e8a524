package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/dbx"
	"github.com/dmitrijs2005/rosebudthorn/internal/logging"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/cache"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// GroupService creates groups, resolves join requests by code or id and
// checks code availability.
type GroupService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	reservations *cache.CodeReservations
	log          logging.Logger
}

func NewGroupService(db *sql.DB, m repomanager.RepositoryManager, r *cache.CodeReservations, log logging.Logger) *GroupService {
	return &GroupService{
		db:           db,
		repomanager:  m,
		reservations: r,
		log:          log.With("module", "groups"),
	}
}

// VerifyCode reports whether code can be used for a new group. An available
// code is reserved for requesterID for a few minutes. Reservation failures
// are logged and do not block the check.
func (s *GroupService) VerifyCode(ctx context.Context, requesterID, code string) (bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := api.ValidateGroupCode(code); err != nil {
		return false, err
	}

	exists, err := s.repomanager.Groups(s.db).CodeExists(ctx, code)
	if err != nil {
		return false, fmt.Errorf("error checking group code: %w", err)
	}
	if exists {
		return false, nil
	}

	ok, err := s.reservations.Reserve(ctx, code, requesterID)
	if err != nil {
		s.log.Warn(ctx, "group code reservation failed", "code", code, "error", err)
		return true, nil
	}
	return ok, nil
}

// CreateGroup creates a group owned by userID, who becomes its first member
// in the same transaction.
func (s *GroupService) CreateGroup(ctx context.Context, userID string, req api.CreateGroupRequest) (api.Group, error) {
	if userID == "" {
		return api.Group{}, common.ErrorUnauthorized
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return api.Group{}, err
	}

	ok, err := s.reservations.Reserve(ctx, req.GroupCode, userID)
	if err != nil {
		s.log.Warn(ctx, "group code reservation failed", "code", req.GroupCode, "error", err)
	} else if !ok {
		return api.Group{}, common.ErrGroupCodeTaken
	}

	g := &models.Group{Name: req.Name, GroupCode: req.GroupCode, CreatedBy: userID}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Groups(tx)
		if _, err := repo.Create(ctx, g); err != nil {
			return err
		}
		return repo.AddMember(ctx, g.ID, userID)
	})
	if err != nil {
		return api.Group{}, err
	}
	g.Members = []string{userID}

	if err := s.reservations.Release(ctx, g.GroupCode); err != nil {
		s.log.Warn(ctx, "group code release failed", "code", g.GroupCode, "error", err)
	}
	s.log.Info(ctx, "group created", "group_id", g.ID, "user_id", userID)
	return g.ToAPI(), nil
}

// JoinGroup adds userID to the group identified by a group code or a group id.
func (s *GroupService) JoinGroup(ctx context.Context, userID, codeOrID string) (api.Group, error) {
	if userID == "" {
		return api.Group{}, common.ErrorUnauthorized
	}
	repo := s.repomanager.Groups(s.db)

	var g *models.Group
	var err error
	if _, perr := uuid.Parse(codeOrID); perr == nil {
		g, err = repo.GetByID(ctx, codeOrID)
	} else {
		g, err = repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(codeOrID)))
	}
	if err != nil {
		return api.Group{}, err
	}

	if err := repo.AddMember(ctx, g.ID, userID); err != nil {
		return api.Group{}, err
	}

	members, err := repo.Members(ctx, g.ID)
	if err != nil {
		return api.Group{}, fmt.Errorf("error loading members: %w", err)
	}
	g.Members = members
	return g.ToAPI(), nil
}

// ListGroups returns the groups userID belongs to, with their members.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]api.Group, error) {
	repo := s.repomanager.Groups(s.db)
	list, err := repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}

	out := make([]api.Group, 0, len(list))
	for _, g := range list {
		members, err := repo.Members(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("error loading members: %w", err)
		}
		g.Members = members
		out = append(out, g.ToAPI())
	}
	return out, nil
}
