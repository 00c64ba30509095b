package otps

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	deleteByEmailQ = `(?s)^DELETE\s+FROM\s+otps\s+WHERE\s+email\s*=\s*\$1\s*$`
	insertQ        = `(?s)^INSERT\s+INTO\s+otps\s*\(email,\s*code,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(email\).*RETURNING\s+id,\s*created_at\s*$`
	consumeQ       = `(?s)^DELETE\s+FROM\s+otps\s+WHERE\s+email\s*=\s*\$1\s+AND\s+code\s*=\s*\$2\s*RETURNING\s+id,\s*email,\s*code,\s*expires_at,\s*created_at\s*$`
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return db, mock
}

func TestPostgresRepository_Consume_Found(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	exp := time.Now().Add(10 * time.Minute)
	created := time.Now()
	mock.ExpectQuery(consumeQ).
		WithArgs("a@x.com", "123456").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "code", "expires_at", "created_at"}).
			AddRow("o-1", "a@x.com", "123456", exp, created))

	got, err := NewPostgresRepository(db).Consume(context.Background(), "a@x.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "o-1", got.ID)
	assert.Equal(t, "123456", got.Code)
	assert.True(t, got.ExpiresAt.Equal(exp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Consume_NoMatch(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeQ).
		WithArgs("a@x.com", "000000").
		WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresRepository(db).Consume(context.Background(), "a@x.com", "000000")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Consume_DBError(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeQ).WillReturnError(errors.New("conn reset"))

	_, err := NewPostgresRepository(db).Consume(context.Background(), "a@x.com", "123456")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "db error")
}

func TestPostgresStore_Replace_DeletesThenInsertsInTx(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	exp := time.Now().Add(10 * time.Minute)
	created := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(deleteByEmailQ).WithArgs("a@x.com").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(insertQ).
		WithArgs("a@x.com", "654321", exp).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("o-2", created))
	mock.ExpectCommit()

	code := &models.OneTimeCode{Email: "a@x.com", Code: "654321", ExpiresAt: exp}
	require.NoError(t, NewPostgresStore(db, nil).Replace(context.Background(), code))
	assert.Equal(t, "o-2", code.ID)
	assert.True(t, code.CreatedAt.Equal(created))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Replace_RollsBackOnInsertError(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(deleteByEmailQ).WithArgs("a@x.com").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	code := &models.OneTimeCode{Email: "a@x.com", Code: "654321", ExpiresAt: time.Now()}
	err := NewPostgresStore(db, nil).Replace(context.Background(), code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Consume_Delegates(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeQ).WithArgs("a@x.com", "111111").WillReturnError(sql.ErrNoRows)

	_, err := NewPostgresStore(db, nil).Consume(context.Background(), "a@x.com", "111111")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPostgresRepository_Consume_LeadingZerosStayStrings(t *testing.T) {
	db, mock := newMock(t)
	defer db.Close()

	exp := time.Now().Add(10 * time.Minute)
	mock.ExpectQuery(consumeQ).
		WithArgs("a@x.com", "7890").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(consumeQ).
		WithArgs("a@x.com", "007890").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "code", "expires_at", "created_at"}).
			AddRow("o-1", "a@x.com", "007890", exp, time.Now()))

	repo := NewPostgresRepository(db)
	_, err := repo.Consume(context.Background(), "a@x.com", "7890")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	got, err := repo.Consume(context.Background(), "a@x.com", "007890")
	require.NoError(t, err)
	assert.Equal(t, "007890", got.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
