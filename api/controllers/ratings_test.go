package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/api/middleware"
	"github.com/schoolbridge/schoolbridge-backend/internal/ratings"
)

type testRatingsService struct {
	loadFn     func(ctx context.Context, supplierID uuid.UUID) (*ratings.ConfigurationDTO, error)
	saveFn     func(ctx context.Context, supplierID, adminID uuid.UUID, input ratings.SaveConfigurationInput) (*ratings.ConfigurationDTO, error)
	resetFn    func(ctx context.Context, supplierID uuid.UUID) (*ratings.ConfigurationDTO, error)
	submitFn   func(ctx context.Context, supplierID, raterID uuid.UUID, input ratings.SubmitInput) (*ratings.SummaryDTO, error)
	summaryFn  func(ctx context.Context, supplierID uuid.UUID) (*ratings.SummaryDTO, error)
	overviewFn func(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]ratings.Overview, error)
}

func (s *testRatingsService) LoadConfiguration(ctx context.Context, supplierID uuid.UUID) (*ratings.ConfigurationDTO, error) {
	return s.loadFn(ctx, supplierID)
}

func (s *testRatingsService) SaveConfiguration(ctx context.Context, supplierID, adminID uuid.UUID, input ratings.SaveConfigurationInput) (*ratings.ConfigurationDTO, error) {
	return s.saveFn(ctx, supplierID, adminID, input)
}

func (s *testRatingsService) ResetConfiguration(ctx context.Context, supplierID uuid.UUID) (*ratings.ConfigurationDTO, error) {
	return s.resetFn(ctx, supplierID)
}

func (s *testRatingsService) Submit(ctx context.Context, supplierID, raterID uuid.UUID, input ratings.SubmitInput) (*ratings.SummaryDTO, error) {
	return s.submitFn(ctx, supplierID, raterID, input)
}

func (s *testRatingsService) Summary(ctx context.Context, supplierID uuid.UUID) (*ratings.SummaryDTO, error) {
	return s.summaryFn(ctx, supplierID)
}

func (s *testRatingsService) OverviewForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]ratings.Overview, error) {
	return s.overviewFn(ctx, supplierIDs)
}

func TestSubmitSupplierRatingCreated(t *testing.T) {
	raterID := uuid.New()
	supplierID := uuid.New()
	svc := &testRatingsService{
		submitFn: func(ctx context.Context, supplier, rater uuid.UUID, input ratings.SubmitInput) (*ratings.SummaryDTO, error) {
			if supplier != supplierID || rater != raterID {
				t.Fatalf("unexpected identities supplier=%s rater=%s", supplier, rater)
			}
			if input.Scores["delivery"] != 4 {
				t.Fatalf("unexpected scores %v", input.Scores)
			}
			return &ratings.SummaryDTO{SupplierID: supplier, Overall: 4.0, Count: 1, HasRatings: true}, nil
		},
	}

	body := []byte(`{"scores":{"delivery":4}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/"+supplierID.String()+"/ratings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), raterID.String()))
	req = addRouteParam(req, "supplierId", supplierID.String())
	resp := httptest.NewRecorder()
	SubmitSupplierRating(svc, testLogger())(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestGetSupplierRatingsInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/suppliers/nope/ratings", nil)
	req = addRouteParam(req, "supplierId", "nope")
	resp := httptest.NewRecorder()
	GetSupplierRatings(&testRatingsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminSaveRatingConfigPassesAdmin(t *testing.T) {
	adminID := uuid.New()
	supplierID := uuid.New()
	svc := &testRatingsService{
		saveFn: func(ctx context.Context, supplier, admin uuid.UUID, input ratings.SaveConfigurationInput) (*ratings.ConfigurationDTO, error) {
			if supplier != supplierID || admin != adminID {
				t.Fatalf("unexpected identities supplier=%s admin=%s", supplier, admin)
			}
			if len(input.Areas) != 1 || input.Areas[0].ID != "delivery" || input.Areas[0].Weight != 2 {
				t.Fatalf("unexpected areas %+v", input.Areas)
			}
			return &ratings.ConfigurationDTO{SupplierID: supplier, Configured: true}, nil
		},
	}

	body := []byte(`{"areas":[{"id":"delivery","enabled":true,"weight":2}]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/admin/v1/suppliers/"+supplierID.String()+"/rating-config", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), adminID.String()))
	req = addRouteParam(req, "supplierId", supplierID.String())
	resp := httptest.NewRecorder()
	AdminSaveRatingConfig(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestAdminResetRatingConfig(t *testing.T) {
	supplierID := uuid.New()
	called := false
	svc := &testRatingsService{
		resetFn: func(ctx context.Context, supplier uuid.UUID) (*ratings.ConfigurationDTO, error) {
			called = true
			if supplier != supplierID {
				t.Fatalf("unexpected supplier %s", supplier)
			}
			return &ratings.ConfigurationDTO{SupplierID: supplier}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/suppliers/"+supplierID.String()+"/rating-config/reset", nil)
	req = addRouteParam(req, "supplierId", supplierID.String())
	resp := httptest.NewRecorder()
	AdminResetRatingConfig(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}
