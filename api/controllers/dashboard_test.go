package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/api/middleware"
	"github.com/schoolbridge/schoolbridge-backend/internal/dashboard"
)

type testDashboardService struct {
	supplierFn func(ctx context.Context, ownerID uuid.UUID) (*dashboard.SupplierStats, error)
	adminFn    func(ctx context.Context) (*dashboard.AdminStats, error)
}

func (s *testDashboardService) SupplierStats(ctx context.Context, ownerID uuid.UUID) (*dashboard.SupplierStats, error) {
	return s.supplierFn(ctx, ownerID)
}

func (s *testDashboardService) AdminStats(ctx context.Context) (*dashboard.AdminStats, error) {
	return s.adminFn(ctx)
}

func TestSupplierDashboardReturnsStats(t *testing.T) {
	ownerID := uuid.New()
	svc := &testDashboardService{
		supplierFn: func(ctx context.Context, owner uuid.UUID) (*dashboard.SupplierStats, error) {
			if owner != ownerID {
				t.Fatalf("unexpected owner %s", owner)
			}
			return &dashboard.SupplierStats{UnreadMessages: 3, PricingEntries: 7}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/supplier/dashboard", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), ownerID.String()))
	resp := httptest.NewRecorder()
	SupplierDashboard(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}

	var envelope struct {
		Data dashboard.SupplierStats `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.UnreadMessages != 3 || envelope.Data.PricingEntries != 7 {
		t.Fatalf("unexpected stats %+v", envelope.Data)
	}
}

func TestSupplierDashboardRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/supplier/dashboard", nil)
	resp := httptest.NewRecorder()
	SupplierDashboard(&testDashboardService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminDashboardTotals(t *testing.T) {
	svc := &testDashboardService{
		adminFn: func(ctx context.Context) (*dashboard.AdminStats, error) {
			return &dashboard.AdminStats{Pending: 4, Approved: 12, Total: 16}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/dashboard", nil)
	resp := httptest.NewRecorder()
	AdminDashboard(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}

	var envelope struct {
		Data dashboard.AdminStats `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Total != 16 {
		t.Fatalf("unexpected total %d", envelope.Data.Total)
	}
}
