// Package tags mirrors the server's tag index of a user in the local store.
package tags

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
)

type Repository interface {
	// ReplaceForUser drops the cached tags of userID and stores tags instead.
	ReplaceForUser(ctx context.Context, userID string, tags []api.Tag) error
	ListByUser(ctx context.Context, userID string) ([]api.Tag, error)
}
