package api

import (
	"context"
	"net/http"
)

type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) SignUp(ctx context.Context, name, email, password string) (string, error) {
	var out struct {
		UserID string `json:"userId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-up", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	return out.UserID, err
}

func (c *Client) RequestCode(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/request-otp", map[string]string{"email": email}, nil)
}

// VerifyCode exchanges a code for a session, which the client then holds.
func (c *Client) VerifyCode(ctx context.Context, email, code string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify-otp", map[string]string{
		"email": email, "code": code,
	}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/sign-out", nil, nil)
	c.session = ""
	return err
}

func (c *Client) WhoAmI(ctx context.Context) (*User, error) {
	if c.session == "" {
		return nil, ErrNoSession
	}
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}
