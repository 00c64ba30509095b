package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/notify"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/otps"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- users ---

type fakeUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byEmail[u.Email] = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

// --- notes ---

type fakeNotesRepo struct {
	mu    sync.Mutex
	notes map[string]*models.Note
	err   error
	calls int
}

func newFakeNotesRepo() *fakeNotesRepo {
	return &fakeNotesRepo{notes: map[string]*models.Note{}}
}

func (f *fakeNotesRepo) List(_ context.Context, userID string) ([]*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Note, 0)
	for _, n := range f.notes {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotesRepo) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *n
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now().Add(time.Duration(len(f.notes)) * time.Millisecond)
	cp.UpdatedAt = cp.CreatedAt
	f.notes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeNotesRepo) Get(_ context.Context, userID, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotesRepo) Update(_ context.Context, note *models.Note) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.notes[note.ID]
	if !ok || n.UserID != note.UserID {
		return nil, common.ErrorNotFound
	}
	n.Title, n.Content, n.UpdatedAt = note.Title, note.Content, time.Now()
	cp := *n
	return &cp, nil
}

func (f *fakeNotesRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	n, ok := f.notes[id]
	if !ok || n.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.notes, id)
	return nil
}

// --- repomanager ---

type fakeRepoManager struct {
	users *fakeUsersRepo
	notes *fakeNotesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsersRepo(), notes: newFakeNotesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) OTPs(dbx.DBTX) otps.Repository                { return nil }
func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository              { return m.notes }

// --- otp store ---

// fakeCodeStore mirrors the atomic semantics of the real stores: one pending
// code per email, consumed on the first matching attempt.
type fakeCodeStore struct {
	mu         sync.Mutex
	pending    map[string]models.OneTimeCode
	replaceErr error
	consumeErr error
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{pending: map[string]models.OneTimeCode{}}
}

func (f *fakeCodeStore) Replace(_ context.Context, c *models.OneTimeCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	c.ID = uuid.NewString()
	f.pending[c.Email] = *c
	return nil
}

func (f *fakeCodeStore) Consume(_ context.Context, email, code string) (*models.OneTimeCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	c, ok := f.pending[email]
	if !ok || c.Code != code {
		return nil, common.ErrorNotFound
	}
	delete(f.pending, email)
	return &c, nil
}

func (f *fakeCodeStore) count(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pending[email]; ok {
		return 1
	}
	return 0
}

// --- notifier ---

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) SendCode(_ context.Context, m notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeNotifier) last() notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}
