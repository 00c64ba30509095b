package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type notesResponse struct {
	Notes []*models.Note `json:"notes"`
}

type noteResponse struct {
	Note *models.Note `json:"note"`
}

type noteCreatedResponse struct {
	Message string `json:"message"`
	NoteID  string `json:"noteId"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// userID is only called behind requireSession.
func userID(r *http.Request) string {
	id, _ := IdentityFrom(r.Context())
	return id.UserID
}

func (h *Handler) listNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.List(r.Context(), userID(r))
	if err != nil {
		h.fail(w, r, "list-notes", err, msgNoteNotFound)
		return
	}
	if list == nil {
		list = []*models.Note{}
	}
	writeJSON(w, http.StatusOK, notesResponse{Notes: list})
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	n, err := h.notes.Create(r.Context(), userID(r), req.Title, req.Content)
	if err != nil {
		h.fail(w, r, "create-note", err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, noteCreatedResponse{Message: "Note created successfully", NoteID: n.ID})
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.notes.Get(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get-note", err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{Note: n})
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	_, err := h.notes.Update(r.Context(), userID(r), chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		h.fail(w, r, "update-note", err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Note updated successfully"})
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete-note", err, msgNoteNotFound)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Note deleted successfully"})
}
