// Package tags stores per-user tag names and their links to entries.
package tags

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
)

type Repository interface {
	// Upsert returns the id of the user's tag with name, creating it on first use.
	Upsert(ctx context.Context, userID, name string) (string, error)
	// Link attaches a tag to an entry at the given display position.
	Link(ctx context.Context, entryID, tagID string, position int) error
	UnlinkEntry(ctx context.Context, entryID string) error
	// NamesForEntry returns tag names in display order.
	NamesForEntry(ctx context.Context, entryID string) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Tag, error)
}
