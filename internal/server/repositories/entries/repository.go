package entries

import (
	"context"

	"github.com/dmitrijs2005/rosebudthorn/internal/server/models"
)

// Repository persists entry rows and their reactions. Tags live in the tags
// repository.
type Repository interface {
	// Create inserts e and fills its ID and timestamps. A second entry for the
	// same user and day yields common.ErrEntryExists.
	Create(ctx context.Context, e *models.Entry) (*models.Entry, error)
	GetByID(ctx context.Context, id string) (*models.Entry, error)
	// ListByUser returns the user's entries oldest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Entry, error)
	// Update writes the editable fields of e and refreshes UpdatedAt.
	Update(ctx context.Context, e *models.Entry) error
	// TogglePublic flips is_public and returns the new value.
	TogglePublic(ctx context.Context, id string) (bool, error)
	// ListPublicByGroup returns public entries written by members of groupID,
	// newest day first.
	ListPublicByGroup(ctx context.Context, groupID string) ([]*models.Entry, error)

	AddReaction(ctx context.Context, r *models.Reaction) error
	Reactions(ctx context.Context, entryID string) ([]models.Reaction, error)
}
