package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal in-memory stand-in for the notekeeper HTTP API.
type fakeAPI struct {
	mu        sync.Mutex
	codes     map[string]string
	notes     map[string]map[string]string
	requested []string
	nextID    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{codes: map[string]string{}, notes: map[string]map[string]string{}}
}

func (f *fakeAPI) handler() http.Handler {
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if ck, err := r.Cookie("session"); err != nil || ck.Value != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
				return
			}
			next(w, r)
		}
	}
	body := func(r *http.Request) map[string]string {
		m := map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&m)
		return m
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/sign-up", func(w http.ResponseWriter, r *http.Request) {
		in := body(r)
		if in["password"] != "hunter22" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"userId":"u1"}`))
	})
	mux.HandleFunc("POST /api/auth/request-otp", func(w http.ResponseWriter, r *http.Request) {
		in := body(r)
		f.mu.Lock()
		f.requested = append(f.requested, in["email"])
		f.codes[in["email"]] = "123456"
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("POST /api/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		in := body(r)
		f.mu.Lock()
		ok := f.codes[in["email"]] == in["code"] && in["code"] != ""
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid verification code. Please check the code and try again."}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		_, _ = w.Write([]byte(`{"ok":true,"user":{"name":"Ann","email":"` + in["email"] + `"}}`))
	})
	mux.HandleFunc("POST /api/auth/sign-out", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "", Path: "/", MaxAge: -1})
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("GET /api/auth/session", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"user":{"id":"u1","name":"Ann","email":"a@b.c"}}`))
	}))
	mux.HandleFunc("GET /api/notes", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		type note struct {
			ID        string    `json:"id"`
			Title     string    `json:"title"`
			Content   string    `json:"content"`
			UpdatedAt time.Time `json:"updatedAt"`
		}
		out := []note{}
		for id, n := range f.notes {
			out = append(out, note{ID: id, Title: n["title"], Content: n["content"], UpdatedAt: time.Now()})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"notes": out})
	}))
	mux.HandleFunc("POST /api/notes", authed(func(w http.ResponseWriter, r *http.Request) {
		in := body(r)
		f.mu.Lock()
		f.nextID++
		id := "n" + string(rune('0'+f.nextID))
		f.notes[id] = in
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"Note created successfully","noteId":"` + id + `"}`))
	}))
	mux.HandleFunc("GET /api/notes/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		n, ok := f.notes[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Note not found"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"note": map[string]string{
			"id": r.PathValue("id"), "title": n["title"], "content": n["content"],
		}})
	}))
	mux.HandleFunc("PUT /api/notes/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		in := body(r)
		f.mu.Lock()
		f.notes[r.PathValue("id")] = in
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"Note updated successfully"}`))
	}))
	mux.HandleFunc("DELETE /api/notes/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		delete(f.notes, r.PathValue("id"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"message":"Note deleted successfully"}`))
	}))
	return mux
}

type harness struct {
	api         *fakeAPI
	url         string
	sessionFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	f := newFakeAPI()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return &harness{api: f, url: srv.URL, sessionFile: filepath.Join(t.TempDir(), "session")}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	full := append([]string{"--server", h.url, "--session-file", h.sessionFile}, args...)
	err := Execute(context.Background(), strings.NewReader(stdin), &out, full)
	return out.String(), err
}

func TestLoginFlow_PersistsSession(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "123456\n", "login", "--email", "a@b.c")
	require.NoError(t, err, out)
	assert.Contains(t, out, "A verification code was sent to a@b.c.")
	assert.Contains(t, out, "Signed in as Ann <a@b.c>.")
	assert.Equal(t, []string{"a@b.c"}, h.api.requested)

	b, err := os.ReadFile(h.sessionFile)
	require.NoError(t, err)
	assert.Equal(t, "tok", string(b))

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Ann <a@b.c> (u1)\n", out)

	out, err = h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	_, err = os.Stat(h.sessionFile)
	assert.True(t, os.IsNotExist(err))

	out, err = h.run(t, "", "whoami")
	require.Error(t, err)
	assert.Contains(t, out, "notekeeper login")
}

func TestLogin_PromptsForEmailAndRejectsWrongCode(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "a@b.c\n000000\n", "login")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid verification code")
	_, statErr := os.Stat(h.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogin_WithCodeSkipsRequest(t *testing.T) {
	h := newHarness(t)
	h.api.codes["a@b.c"] = "654321"

	_, err := h.run(t, "", "login", "--email", "a@b.c", "--code", "654321")
	require.NoError(t, err)
	assert.Empty(t, h.api.requested)
}

func TestSignUp(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(int) ([]byte, error) { return []byte("hunter22"), nil }

	h := newHarness(t)
	out, err := h.run(t, "Ann\na@b.c\n", "signup")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Account created.")

	readPassword = func(int) ([]byte, error) { return []byte("x"), nil }
	out, err = h.run(t, "", "signup", "--name", "Ann", "--email", "a@b.c")
	require.Error(t, err)
	assert.Contains(t, out, "bad password")
}

func TestNotesCommands(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "123456\n", "login", "--email", "a@b.c")
	require.NoError(t, err)

	out, err := h.run(t, "", "notes", "list")
	require.NoError(t, err)
	assert.Equal(t, "No notes yet.\n", out)

	out, err = h.run(t, "first line\nsecond line\n\n", "notes", "add", "--title", "Groceries")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Note created: n1")
	assert.Equal(t, "first line\nsecond line", h.api.notes["n1"]["content"])

	out, err = h.run(t, "", "notes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "n1")
	assert.Contains(t, out, "Groceries")

	_, err = h.run(t, "", "notes", "edit", "n1", "--title", "Weekend")
	require.NoError(t, err)
	assert.Equal(t, "Weekend", h.api.notes["n1"]["title"])
	assert.Equal(t, "first line\nsecond line", h.api.notes["n1"]["content"])

	out, err = h.run(t, "", "notes", "show", "n1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Weekend\n\nfirst line\nsecond line\n"))

	_, err = h.run(t, "", "notes", "rm", "n1")
	require.NoError(t, err)
	assert.Empty(t, h.api.notes)

	out, err = h.run(t, "", "notes", "show", "n1")
	require.Error(t, err)
	assert.Contains(t, out, "Note not found")
}

func TestNotes_RequireSession(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "", "notes", "list")
	require.Error(t, err)
	assert.Contains(t, out, "Unauthorized")
	assert.Contains(t, out, "notekeeper login")
}
