package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	MsgTitleContentRequired = "Title and content are required"
	MsgInvalidNoteID        = "Invalid note ID"
)

// NoteService exposes note CRUD. userID always comes from a verified
// session; every storage call is keyed by it.
type NoteService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	storageTimeout time.Duration
	logger         logging.Logger
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, storageTimeout time.Duration, logger logging.Logger) *NoteService {
	return &NoteService{db: db, repomanager: m, storageTimeout: storageTimeout, logger: logger}
}

func (s *NoteService) List(ctx context.Context, userID string) ([]*models.Note, error) {
	var list []*models.Note
	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		list, err = s.repomanager.Notes(s.db).List(ctx, userID)
		return err
	})
	if err != nil {
		return nil, s.storageError(ctx, "list notes", err)
	}
	return list, nil
}

func (s *NoteService) Create(ctx context.Context, userID, title, content string) (*models.Note, error) {
	if err := validateNoteFields(title, content); err != nil {
		return nil, err
	}

	var note *models.Note
	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		note, err = s.repomanager.Notes(s.db).Create(ctx, &models.Note{UserID: userID, Title: title, Content: content})
		return err
	})
	if err != nil {
		return nil, s.storageError(ctx, "create note", err)
	}
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	if err := validateNoteID(id); err != nil {
		return nil, err
	}

	var note *models.Note
	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		note, err = s.repomanager.Notes(s.db).Get(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, s.storageError(ctx, "get note", err)
	}
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, userID, id, title, content string) (*models.Note, error) {
	if err := validateNoteFields(title, content); err != nil {
		return nil, err
	}
	if err := validateNoteID(id); err != nil {
		return nil, err
	}

	var note *models.Note
	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		var err error
		note, err = s.repomanager.Notes(s.db).Update(ctx, &models.Note{ID: id, UserID: userID, Title: title, Content: content})
		return err
	})
	if err != nil {
		return nil, s.storageError(ctx, "update note", err)
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if err := validateNoteID(id); err != nil {
		return err
	}

	err := dbx.WithTimeout(ctx, s.storageTimeout, func(ctx context.Context) error {
		return s.repomanager.Notes(s.db).Delete(ctx, userID, id)
	})
	if err != nil {
		return s.storageError(ctx, "delete note", err)
	}
	return nil
}

// storageError keeps ErrorNotFound visible to callers and folds everything
// else into ErrorInternal.
func (s *NoteService) storageError(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s: %w", op, common.ErrorNotFound)
	}
	s.logger.Error(ctx, "note storage failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}

func validateNoteFields(title, content string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return common.NewValidationError(MsgTitleContentRequired)
	}
	return nil
}

func validateNoteID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewValidationError(MsgInvalidNoteID)
	}
	return nil
}
