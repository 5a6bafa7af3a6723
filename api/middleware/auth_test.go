package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolbridge/schoolbridge-backend/pkg/auth"
	"github.com/schoolbridge/schoolbridge-backend/pkg/auth/session"
	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
)

type sessionCheck struct {
	live bool
	err  error
}

func (s sessionCheck) HasSession(context.Context, string) (bool, error) {
	return s.live, s.err
}

type seenIdentity struct {
	user     string
	role     string
	supplier string
	called   bool
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

// protectedHandler wraps a capture handler in the auth middleware so tests
// can assert both the response code and the identity placed in context.
func protectedHandler(cfg config.JWTConfig, verifier session.AccessSessionChecker, seen *seenIdentity) http.Handler {
	return Auth(cfg, verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.called = true
		seen.user = UserIDFromContext(r.Context())
		seen.role = RoleFromContext(r.Context())
		seen.supplier = SupplierIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, role enums.UserRole, supplierID *uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID:     uuid.New(),
		SupplierID: supplierID,
		Role:       role,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doAuthRequest(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRejectsMissingAndMalformedTokens(t *testing.T) {
	seen := &seenIdentity{}
	handler := protectedHandler(authTestConfig(), sessionCheck{live: true}, seen)

	for name, header := range map[string]string{
		"no header":     "",
		"garbage token": "Bearer invalid",
	} {
		t.Run(name, func(t *testing.T) {
			rec := doAuthRequest(handler, header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 got %d", rec.Code)
			}
		})
	}
	if seen.called {
		t.Fatal("next handler should not run without valid credentials")
	}
}

func TestAuthSeedsSupplierIdentity(t *testing.T) {
	cfg := authTestConfig()
	supplierID := uuid.New()
	token := mintTestToken(t, cfg, enums.UserRoleSupplier, &supplierID)

	seen := &seenIdentity{}
	rec := doAuthRequest(protectedHandler(cfg, sessionCheck{live: true}, seen), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if seen.user == "" {
		t.Fatal("expected user id in context")
	}
	if seen.role != string(enums.UserRoleSupplier) {
		t.Fatalf("expected role supplier got %s", seen.role)
	}
	if seen.supplier != supplierID.String() {
		t.Fatalf("expected supplier %s got %s", supplierID, seen.supplier)
	}
}

func TestAuthSeedsAdminIdentityWithoutSupplier(t *testing.T) {
	cfg := authTestConfig()
	token := mintTestToken(t, cfg, enums.UserRoleAdmin, nil)

	seen := &seenIdentity{}
	rec := doAuthRequest(protectedHandler(cfg, sessionCheck{live: true}, seen), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if seen.role != string(enums.UserRoleAdmin) {
		t.Fatalf("expected role admin got %s", seen.role)
	}
	if seen.supplier != "" {
		t.Fatalf("expected empty supplier got %s", seen.supplier)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := authTestConfig()
	token := mintTestToken(t, cfg, enums.UserRoleSupplier, nil)

	seen := &seenIdentity{}
	rec := doAuthRequest(protectedHandler(cfg, sessionCheck{live: false}, seen), "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if seen.called {
		t.Fatal("next handler should not run after logout")
	}
}

func TestAuthSessionStoreFailure(t *testing.T) {
	cfg := authTestConfig()
	token := mintTestToken(t, cfg, enums.UserRoleSupplier, nil)

	seen := &seenIdentity{}
	rec := doAuthRequest(protectedHandler(cfg, sessionCheck{err: errors.New("redis down")}, seen), "Bearer "+token)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
