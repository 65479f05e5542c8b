package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	now := time.Now()

	token, expiresAt, err := tm.GenerateToken("s1", "u3", domain.RoleStaff, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(30*time.Minute), expiresAt, time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.ID)
	assert.Equal(t, "u3", claims.Subject)
	assert.Equal(t, domain.RoleStaff, claims.Role)
}

func TestTokenRejectsForeignSignatureAndExpiry(t *testing.T) {
	token, _, err := NewTokenManager("other", 30).GenerateToken("s1", "u3", domain.RoleStaff, time.Now())
	require.NoError(t, err)
	_, err = NewTokenManager("secret", 30).ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	stale, _, err := NewTokenManager("secret", 1).GenerateToken("s1", "u3", domain.RoleStaff, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = NewTokenManager("secret", 1).ParseToken(stale)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresSessionAndIssuer(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	noSession, _, err := tm.GenerateToken("", "u3", domain.RoleStaff, time.Now())
	require.NoError(t, err)
	_, err = tm.ParseToken(noSession)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "s1",
			Subject:   "u1",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("civic123", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "civic123"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Session{ID: "s1", IsAuthenticated: true, ExpiresAt: now.Add(time.Minute)}))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, domain.Session{ID: "s2", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func testApp(tm *TokenManager, sessions SessionStore) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	mw := NewAuthMiddleware(tm, sessions)
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.SendString(string(SessionFromContext(c).Role))
	})
	app.Get("/issues", mw.Handle, RequireCapability(domain.CapViewIssues), func(c *fiber.Ctx) error {
		return c.SendString(SessionFromContext(c).StaffID)
	})
	app.Get("/departments/manage", mw.Handle, RequireCapability(domain.CapManageOrg), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app
}

func TestMiddlewareGates(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	sessions := NewMemorySessionStore(nil)
	app := testApp(tm, sessions)
	now := time.Now()

	token, expiresAt, err := tm.GenerateToken("s1", "u3", domain.RoleStaff, now)
	require.NoError(t, err)
	require.NoError(t, sessions.Save(context.Background(), domain.Session{
		ID: "s1", IsAuthenticated: true, Role: domain.RoleStaff, StaffID: "u3", ExpiresAt: expiresAt,
	}))

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{name: "anonymous open route", path: "/open", status: http.StatusOK, body: ""},
		{name: "missing header", path: "/issues", status: http.StatusUnauthorized, body: apperrors.CodeNotAuthenticated},
		{name: "garbage token", path: "/issues", header: "Bearer nope", status: http.StatusUnauthorized, body: apperrors.CodeNotAuthenticated},
		{name: "valid session", path: "/issues", header: "Bearer " + token, status: http.StatusOK, body: "u3"},
		{name: "missing capability", path: "/departments/manage", header: "Bearer " + token, status: http.StatusForbidden, body: apperrors.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			buf := make([]byte, 64)
			n, _ := resp.Body.Read(buf)
			assert.Equal(t, tt.body, string(buf[:n]))
		})
	}

	require.NoError(t, sessions.Delete(context.Background(), "s1"))
	req := httptest.NewRequest(http.MethodGet, "/issues", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func redisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLoginLimiter(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	prefix := "test:login:" + time.Now().Format("150405.000000000")
	limiter := NewRedisLoginLimiter(client, prefix, 2, time.Minute)

	require.NoError(t, limiter.Allow(ctx, "anita@jh.gov.in"))
	require.NoError(t, limiter.Allow(ctx, "ANITA@jh.gov.in"))
	err := limiter.Allow(ctx, "anita@jh.gov.in")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeRateLimited))
}

func TestRedisSessionStore(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	store := NewRedisSessionStore(client, "test:session")

	session := domain.Session{ID: "redis-s1", IsAuthenticated: true, Role: domain.RoleAdmin, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Save(ctx, session))
	got, err := store.Get(ctx, "redis-s1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	require.NoError(t, store.Delete(ctx, "redis-s1"))
	_, err = store.Get(ctx, "redis-s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
