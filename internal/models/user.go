package models

import (
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the outward-facing view of a User. It never carries the
// password digest.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func PublicUsers(us []User) []PublicUser {
	out := make([]PublicUser, 0, len(us))
	for _, u := range us {
		out = append(out, u.Public())
	}
	return out
}

// NormalizeEmail is the form used for storage and every email comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type AuthResult struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

type Stats struct {
	TotalUsers int       `json:"total_users"`
	Timestamp  time.Time `json:"timestamp"`
}
