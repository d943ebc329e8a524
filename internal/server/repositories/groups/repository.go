// Package groups stores groups and their memberships.
package groups

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
)

type Repository interface {
	// Create inserts g. A code held by another group yields
	// common.ErrGroupCodeTaken.
	Create(ctx context.Context, g *models.Group) (*models.Group, error)
	GetByID(ctx context.Context, id string) (*models.Group, error)
	GetByCode(ctx context.Context, code string) (*models.Group, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// AddMember yields common.ErrAlreadyMember for an existing membership.
	AddMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// Members returns user ids in join order.
	Members(ctx context.Context, groupID string) ([]string, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Group, error)
}
