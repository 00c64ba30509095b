// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. Email is stored lower-cased and is unique.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the public projection of a User returned to clients.
type UserView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// View strips everything but the public fields.
func (u *User) View() UserView {
	return UserView{Name: u.Name, Email: u.Email}
}
