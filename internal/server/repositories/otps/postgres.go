package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// DeleteByEmail removes all codes issued for email.
func (r *PostgresRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `
		DELETE FROM otps
		WHERE email = $1
	`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Create inserts code. The unique index on email turns a concurrent insert
// for the same address into an overwrite, so at most one row survives.
func (r *PostgresRepository) Create(ctx context.Context, code *models.OneTimeCode) error {
	query := `
		INSERT INTO otps (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email)
		DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = now()
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, code.Email, code.Code, code.ExpiresAt).Scan(&code.ID, &code.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume deletes the row matching (email, code) in a single statement and
// returns what was deleted.
func (r *PostgresRepository) Consume(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	query := `
		DELETE FROM otps
		WHERE email = $1 AND code = $2
		RETURNING id, email, code, expires_at, created_at
	`
	otp := &models.OneTimeCode{}
	err := r.db.QueryRowContext(ctx, query, email, code).Scan(&otp.ID, &otp.Email, &otp.Code, &otp.ExpiresAt, &otp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return otp, nil
}

// RepositoryFactory binds a Repository to a DBTX; the repository manager's
// OTPs method satisfies it.
type RepositoryFactory func(db dbx.DBTX) Repository

// PostgresStore implements Store, running Replace inside a transaction.
type PostgresStore struct {
	db    *sql.DB
	repos RepositoryFactory
}

// NewPostgresStore builds a store whose repositories come from repos.
// A nil factory falls back to NewPostgresRepository.
func NewPostgresStore(db *sql.DB, repos RepositoryFactory) *PostgresStore {
	if repos == nil {
		repos = func(db dbx.DBTX) Repository { return NewPostgresRepository(db) }
	}
	return &PostgresStore{db: db, repos: repos}
}

func (s *PostgresStore) Replace(ctx context.Context, code *models.OneTimeCode) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos(tx)
		if err := repo.DeleteByEmail(ctx, code.Email); err != nil {
			return err
		}
		return repo.Create(ctx, code)
	})
}

func (s *PostgresStore) Consume(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	return s.repos(s.db).Consume(ctx, email, code)
}
