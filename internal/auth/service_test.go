package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/schoolbridge/schoolbridge-backend/pkg/auth"
	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/security"
)

func TestServiceLoginSupplierWithApplication(t *testing.T) {
	password := "supplier-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "supplier@example.com",
		PasswordHash: hashed,
		FirstName:    "Sam",
		LastName:     "Vega",
		Role:         enums.UserRoleSupplier,
		IsActive:     true,
	}
	app := &models.SupplierApplication{
		ID:          uuid.New(),
		OwnerID:     user.ID,
		CompanyName: "Vega Transit",
		Status:      enums.SupplierStatusApproved,
	}
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "schoolbridge",
		ExpirationMinutes: 30,
	}

	svc, _, err := buildTestService(user, app, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.Role != enums.UserRoleSupplier {
		t.Fatalf("expected supplier role claim, got %s", claims.Role)
	}
	if claims.SupplierID == nil || *claims.SupplierID != app.ID {
		t.Fatalf("expected supplier id claim")
	}
	if resp.Supplier == nil || resp.Supplier.Status != enums.SupplierStatusApproved {
		t.Fatalf("expected supplier summary in response")
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
}

func TestServiceLoginSchoolHasNoSupplierClaim(t *testing.T) {
	password := "school-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "school@example.com",
		PasswordHash: hashed,
		FirstName:    "Dana",
		LastName:     "Okafor",
		Role:         enums.UserRoleSchool,
		IsActive:     true,
	}
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "schoolbridge",
		ExpirationMinutes: 30,
	}

	svc, _, err := buildTestService(user, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.SupplierID != nil {
		t.Fatalf("school login should not carry supplier id")
	}
	if resp.Supplier != nil {
		t.Fatalf("school login should not return supplier summary")
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	hashed := mustHashPassword(t, "right-password")
	user := &models.User{
		ID:           uuid.New(),
		Email:        "someone@example.com",
		PasswordHash: hashed,
		Role:         enums.UserRoleSchool,
		IsActive:     true,
	}
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "schoolbridge",
		ExpirationMinutes: 30,
	}

	svc, _, err := buildTestService(user, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	if err == nil {
		t.Fatalf("expected unauthorized for wrong password")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceAdminLoginRejectsNonAdmin(t *testing.T) {
	password := "school-secret"
	hashed := mustHashPassword(t, password)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "school@example.com",
		PasswordHash: hashed,
		Role:         enums.UserRoleSchool,
		IsActive:     true,
	}
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "schoolbridge",
		ExpirationMinutes: 30,
	}

	svc, _, err := buildTestService(user, nil, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.AdminLogin(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err == nil {
		t.Fatalf("expected unauthorized for non-admin")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func buildTestService(user *models.User, app *models.SupplierApplication, jwtCfg config.JWTConfig) (Service, *stubSessionManager, error) {
	userRepo := stubUserRepo{user: user}
	supplierRepo := stubSupplierRepo{app: app}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SupplierRepo:   supplierRepo,
		SessionManager: sessionMgr,
		JWTConfig:      jwtCfg,
	})
	return svc, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSupplierRepo struct {
	app *models.SupplierApplication
	err error
}

func (s stubSupplierRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.SupplierApplication, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.app == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.app, nil
}

type stubSessionManager struct {
	refreshToken string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}
