package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

const maxBodyBytes = 1 << 20

// Public messages.
const (
	msgServerError   = "Server error"
	msgUnauthorized  = "Unauthorized"
	msgBadBody       = "Invalid request body"
	msgEmailNotFound = "Email not found. Please sign up first to create an account."
	msgNoteNotFound  = "Note not found"
	msgAccountExists = "An account with this email already exists. Please sign in instead."
	msgCodeInvalid   = "Invalid verification code. Please check the code and try again."
	msgCodeExpired   = "Verification code has expired. Please request a new code."
	msgEmailService  = "Email service unavailable"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// zero-valued so required-field checks can report it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// errorStatus maps service errors to an HTTP status and public message.
// notFound is the message for common.ErrorNotFound, which depends on the
// resource. The bool reports whether err is an unexpected failure that
// should be logged.
func errorStatus(err error, notFound string) (int, string, bool) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message, false
	case errors.Is(err, common.ErrCodeExpired):
		return http.StatusUnauthorized, msgCodeExpired, false
	case errors.Is(err, common.ErrCodeInvalid):
		return http.StatusUnauthorized, msgCodeInvalid, false
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized, false
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, msgAccountExists, false
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, notFound, false
	case errors.Is(err, common.ErrorDispatch):
		return http.StatusInternalServerError, msgEmailService, true
	default:
		return http.StatusInternalServerError, msgServerError, true
	}
}
