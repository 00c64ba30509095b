// Package users declares the credential store: persistence of registered
// accounts keyed by their normalised email.
package users

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository defines operations on user records.
type Repository interface {
	// Create inserts user and fills its ID and timestamps. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given (already normalised) email
	// or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
