// Package groups caches the user's groups in the local store, keyed by group
// code.
package groups

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/api"
)

type Repository interface {
	// Upsert stores g, replacing a cached group with the same code.
	Upsert(ctx context.Context, g api.Group) error
	GetByCode(ctx context.Context, code string) (*api.Group, error)
	List(ctx context.Context) ([]api.Group, error)
}
