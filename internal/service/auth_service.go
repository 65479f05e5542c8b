package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/civicdesk/issue-admin/internal/auth"
	"github.com/civicdesk/issue-admin/internal/domain"
	"github.com/civicdesk/issue-admin/internal/observability"
	"github.com/civicdesk/issue-admin/internal/repository"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// CredentialVerifier checks an email/password pair and returns the staff
// member it belongs to.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*domain.StaffMember, error)
}

// StaffDirectoryVerifier verifies bcrypt hashes stored with staff records.
type StaffDirectoryVerifier struct {
	staff repository.StaffRepository
}

// NewStaffDirectoryVerifier builds the verifier.
func NewStaffDirectoryVerifier(staff repository.StaffRepository) *StaffDirectoryVerifier {
	return &StaffDirectoryVerifier{staff: staff}
}

// Verify implements CredentialVerifier. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (v *StaffDirectoryVerifier) Verify(ctx context.Context, email, password string) (*domain.StaffMember, error) {
	staff, err := v.staff.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if staff.PasswordHash == "" || auth.ComparePassword(staff.PasswordHash, password) != nil {
		return nil, errInvalidCredentials()
	}
	return staff, nil
}

func errInvalidCredentials() error {
	return apperrors.NewNotAuthenticated("invalid credentials")
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string              `validate:"required,email"`
	Password string              `validate:"required,min=6"`
	Role     domain.Role         `validate:"required,oneof=ADMIN DEPT_HEAD STAFF"`
	Lang     domain.LanguageCode `validate:"omitempty,oneof=en hi"`
}

// LoginResult is returned on successful sign-in.
type LoginResult struct {
	Token   string
	Session domain.Session
	Staff   domain.StaffMember
}

// AuthService signs staff in and out.
type AuthService struct {
	verifier CredentialVerifier
	sessions auth.SessionStore
	tokens   *auth.TokenManager
	limiter  auth.LoginLimiter
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      Clock
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	Verifier CredentialVerifier
	Sessions auth.SessionStore
	Tokens   *auth.TokenManager
	Limiter  auth.LoginLimiter
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	Clock    Clock
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = auth.NoopLimiter{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		verifier: deps.Verifier,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		limiter:  limiter,
		metrics:  deps.Metrics,
		logger:   logger,
		now:      clockOrNow(deps.Clock),
	}
}

// Login validates the form before touching any state, then verifies
// credentials. The claimed role must equal the stored one.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		s.metrics.RecordLogin("invalid")
		return nil, err
	}
	if err := s.limiter.Allow(ctx, input.Email); err != nil {
		if apperrors.HasCode(err, apperrors.CodeRateLimited) {
			s.metrics.RecordLogin("limited")
		}
		return nil, err
	}

	staff, err := s.verifier.Verify(ctx, input.Email, input.Password)
	if err != nil {
		s.metrics.RecordLogin("denied")
		return nil, err
	}
	if staff.Role != input.Role {
		s.metrics.RecordLogin("denied")
		s.logger.Warn("login role mismatch", zap.String("staff_id", staff.ID), zap.String("claimed", string(input.Role)))
		return nil, errInvalidCredentials()
	}

	lang := input.Lang
	if lang == "" {
		lang = domain.LanguageEnglish
	}
	now := s.now()
	sessionID := newID()
	token, expiresAt, err := s.tokens.GenerateToken(sessionID, staff.ID, staff.Role, now)
	if err != nil {
		return nil, err
	}
	session := domain.Session{
		ID:              sessionID,
		IsAuthenticated: true,
		Role:            staff.Role,
		UserEmail:       staff.Email,
		StaffID:         staff.ID,
		Lang:            lang,
		IssuedAt:        now,
		ExpiresAt:       expiresAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("success")
	s.logger.Info("staff signed in", zap.String("staff_id", staff.ID), zap.String("role", string(staff.Role)))
	staff.PasswordHash = ""
	return &LoginResult{Token: token, Session: session, Staff: *staff}, nil
}

// Logout revokes the session. Revoking an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, session domain.Session) error {
	if session.ID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		return err
	}
	s.logger.Info("staff signed out", zap.String("staff_id", session.StaffID))
	return nil
}

// SetLanguage switches the session's UI language.
func (s *AuthService) SetLanguage(ctx context.Context, session domain.Session, lang domain.LanguageCode) (*domain.Session, error) {
	if !lang.Valid() {
		return nil, apperrors.NewValidationError("unsupported language", map[string]any{"lang": lang})
	}
	if !session.IsAuthenticated {
		return nil, apperrors.NewNotAuthenticated("sign in required")
	}
	if !s.now().Before(session.ExpiresAt) {
		return nil, apperrors.NewNotAuthenticated("session expired")
	}
	session.Lang = lang
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}
