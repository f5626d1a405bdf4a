package model

import "time"

// Admin is an operator allowed to sign in to the API.
type Admin struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	Email        string
	PasswordHash []byte
	ID           int64
}

// Session backs one issued bearer token.
type Session struct {
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	ID        string
	AdminID   int64
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
