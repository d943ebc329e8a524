// Package entries is the local store of journal entries on the client.
// Records are a read-through cache of the server and are never authoritative.
package entries

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/client/models"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
)

type Repository interface {
	// Upsert inserts an entry or overwrites the record with the same id.
	Upsert(ctx context.Context, e *models.CachedEntry) error

	// GetByUserDate returns the cached entries of a user for one day, oldest
	// first.
	GetByUserDate(ctx context.Context, userID string, date datex.Date) ([]models.CachedEntry, error)

	// ListByUser returns every cached entry of a user, newest day first.
	ListByUser(ctx context.Context, userID string) ([]models.CachedEntry, error)

	// Delete removes the record with the given id. Deleting a missing record
	// is not an error.
	Delete(ctx context.Context, id string) error
}
