package domain

import "time"

// Session is the authenticated state bound to one bearer token.
type Session struct {
	ID              string       `json:"id"`
	IsAuthenticated bool         `json:"is_authenticated"`
	Role            Role         `json:"role,omitempty"`
	UserEmail       string       `json:"user_email,omitempty"`
	StaffID         string       `json:"staff_id,omitempty"`
	Lang            LanguageCode `json:"lang,omitempty"`
	IssuedAt        time.Time    `json:"issued_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
}

// Anonymous returns the unauthenticated session value.
func Anonymous() Session {
	return Session{IsAuthenticated: false}
}
