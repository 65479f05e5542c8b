package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

const sessionKey = "auth_session"

// AuthMiddleware validates bearer tokens and binds the session to the request.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions SessionStore
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions SessionStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions}
}

// Handle enforces authentication for protected routes. The session must still
// exist server-side, so a logged-out token is rejected even before it expires.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewNotAuthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewNotAuthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewNotAuthenticated("invalid token")
	}

	session, err := m.sessions.Get(c.UserContext(), claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperrors.NewNotAuthenticated("session expired or signed out")
		}
		return apperrors.MapError(err)
	}
	if !session.IsAuthenticated || session.StaffID != claims.Subject {
		return apperrors.NewNotAuthenticated("session mismatch")
	}

	c.Locals(sessionKey, session)
	return c.Next()
}

// SessionFromContext returns the session bound by AuthMiddleware, or the
// anonymous session.
func SessionFromContext(c *fiber.Ctx) domain.Session {
	if session, ok := c.Locals(sessionKey).(*domain.Session); ok && session != nil {
		return *session
	}
	return domain.Anonymous()
}

// RequireCapability rejects sessions whose role lacks c.
func RequireCapability(capability domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := SessionFromContext(c)
		if !session.IsAuthenticated {
			return apperrors.NewNotAuthenticated("sign in required")
		}
		if !session.Role.Can(capability) {
			return apperrors.NewForbidden("role " + string(session.Role) + " lacks " + string(capability))
		}
		return c.Next()
	}
}
