package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type noteBody struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}

func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	var out struct {
		Notes []Note `json:"notes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

func (c *Client) CreateNote(ctx context.Context, title, content string) (string, error) {
	var out struct {
		NoteID string `json:"noteId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/notes", noteBody{title, content}, &out)
	return out.NoteID, err
}

func (c *Client) GetNote(ctx context.Context, id string) (*Note, error) {
	var out struct {
		Note Note `json:"note"`
	}
	if err := c.do(ctx, http.MethodGet, notePath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id, title, content string) error {
	return c.do(ctx, http.MethodPut, notePath(id), noteBody{title, content}, nil)
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, notePath(id), nil, nil)
}
