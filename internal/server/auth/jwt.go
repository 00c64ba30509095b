// Package auth issues and verifies session tokens and manages the session
// cookie that carries them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token. Subject duplicates UserID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Identity is what a verified session says about its holder.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// SessionManager signs and verifies HS256 session tokens with a single
// secret. Only HS256 is accepted on parse.
type SessionManager struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewSessionManager(secret []byte, validity time.Duration) *SessionManager {
	return &SessionManager{secret: secret, validity: validity, now: time.Now}
}

// Validity is the configured session lifetime.
func (m *SessionManager) Validity() time.Duration { return m.validity }

// Issue signs a token for id that expires after the configured validity.
func (m *SessionManager) Issue(id Identity) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		},
		UserID: id.UserID,
		Email:  id.Email,
		Name:   id.Name,
	})

	s, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return s, nil
}

// Parse verifies token and returns the identity it carries. Expired tokens
// yield common.ErrTokenExpired, everything else common.ErrInvalidToken.
func (m *SessionManager) Parse(token string) (*Identity, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !t.Valid || claims.UserID == "" || claims.Subject != claims.UserID {
		return nil, common.ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}
