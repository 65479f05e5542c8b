package dto

import (
	"time"

	"github.com/civicdesk/issue-admin/internal/domain"
)

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	IsAuthenticated bool                `json:"is_authenticated"`
	Role            domain.Role         `json:"role,omitempty"`
	UserEmail       string              `json:"user_email,omitempty"`
	StaffID         string              `json:"staff_id,omitempty"`
	Lang            domain.LanguageCode `json:"lang,omitempty"`
	ExpiresAt       *time.Time          `json:"expires_at,omitempty"`
	Capabilities    []domain.Capability `json:"capabilities"`
}

// NewSessionResponse maps a session and lists what its role may do.
func NewSessionResponse(s domain.Session) SessionResponse {
	resp := SessionResponse{
		IsAuthenticated: s.IsAuthenticated,
		Role:            s.Role,
		UserEmail:       s.UserEmail,
		StaffID:         s.StaffID,
		Lang:            s.Lang,
		Capabilities:    []domain.Capability{},
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt
		resp.ExpiresAt = &exp
	}
	if s.IsAuthenticated {
		for _, c := range domain.Capabilities {
			if s.Role.Can(c) {
				resp.Capabilities = append(resp.Capabilities, c)
			}
		}
	}
	return resp
}
