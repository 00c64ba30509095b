package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpResponse struct {
	OK     bool   `json:"ok"`
	UserID string `json:"userId"`
}

type requestOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type verifyOTPResponse struct {
	OK   bool            `json:"ok"`
	User models.UserView `json:"user"`
}

type sessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	User sessionUser `json:"user"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, "sign-up", err, msgEmailNotFound)
		return
	}

	writeJSON(w, http.StatusOK, signUpResponse{OK: true, UserID: user.ID})
}

func (h *Handler) requestOTP(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	if err := h.auth.RequestCode(r.Context(), req.Email); err != nil {
		h.fail(w, r, "request-otp", err, msgEmailNotFound)
		return
	}

	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}

	s, err := h.auth.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		h.fail(w, r, "verify-otp", err, msgEmailNotFound)
		return
	}

	auth.SetSessionCookie(w, h.cookie, s.Token)
	writeJSON(w, http.StatusOK, verifyOTPResponse{OK: true, User: s.User})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookie)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: sessionUser{ID: id.UserID, Name: id.Name, Email: id.Email}})
}
