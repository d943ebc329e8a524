package users

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
)

type Repository interface {
	// Create stores a new user. A taken username yields common.ErrUsernameTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
