package models

import "time"

// OneTimeCode is a pending email verification code. It is consumed (deleted)
// on first successful use or once found expired.
type OneTimeCode struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
