// Package notes declares storage for user-owned notes. Every operation is
// scoped by the owner's ID; a note owned by someone else is indistinguishable
// from a missing one.
package notes

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	// List returns the owner's notes, newest first.
	List(ctx context.Context, userID string) ([]*models.Note, error)

	// Create inserts note and fills ID and timestamps.
	Create(ctx context.Context, note *models.Note) (*models.Note, error)

	// Get returns the note with id owned by userID or common.ErrorNotFound.
	Get(ctx context.Context, userID, id string) (*models.Note, error)

	// Update overwrites title and content and refreshes UpdatedAt.
	// common.ErrorNotFound when (note.ID, note.UserID) matches nothing.
	Update(ctx context.Context, note *models.Note) (*models.Note, error)

	// Delete removes the note with id owned by userID or returns common.ErrorNotFound.
	Delete(ctx context.Context, userID, id string) error
}
