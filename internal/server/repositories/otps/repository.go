// Package otps declares the one-time code store and its PostgreSQL and Redis
// implementations.
package otps

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository defines row-level operations over one-time codes.
type Repository interface {
	// DeleteByEmail removes every code issued for email. Deleting nothing is not an error.
	DeleteByEmail(ctx context.Context, email string) error

	// Create stores code and fills its ID and CreatedAt.
	Create(ctx context.Context, code *models.OneTimeCode) error

	// Consume atomically finds and deletes the row matching (email, code) and
	// returns it. Implementations return common.ErrorNotFound when nothing matches.
	Consume(ctx context.Context, email, code string) (*models.OneTimeCode, error)
}

// Store is what the authentication service needs: replace the pending code
// for an address, and consume a code exactly once.
type Store interface {
	// Replace discards earlier codes for code.Email and stores code, leaving
	// exactly one pending code for the address.
	Replace(ctx context.Context, code *models.OneTimeCode) error

	// Consume behaves like Repository.Consume.
	Consume(ctx context.Context, email, code string) (*models.OneTimeCode, error)
}
