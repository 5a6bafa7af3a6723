package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/schoolbridge/schoolbridge-backend/api/middleware"
	"github.com/schoolbridge/schoolbridge-backend/internal/feedback"
)

type testFeedbackService struct {
	submitFn func(ctx context.Context, supplierID, authorID uuid.UUID, input feedback.SubmitInput) (*feedback.FeedbackDTO, error)
	listFn   func(ctx context.Context, supplierID uuid.UUID) ([]feedback.FeedbackDTO, error)
}

func (s *testFeedbackService) Submit(ctx context.Context, supplierID, authorID uuid.UUID, input feedback.SubmitInput) (*feedback.FeedbackDTO, error) {
	return s.submitFn(ctx, supplierID, authorID, input)
}

func (s *testFeedbackService) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]feedback.FeedbackDTO, error) {
	return s.listFn(ctx, supplierID)
}

func TestSubmitSupplierFeedbackCreated(t *testing.T) {
	authorID := uuid.New()
	supplierID := uuid.New()
	svc := &testFeedbackService{
		submitFn: func(ctx context.Context, supplier, author uuid.UUID, input feedback.SubmitInput) (*feedback.FeedbackDTO, error) {
			if supplier != supplierID || author != authorID {
				t.Fatalf("unexpected identities supplier=%s author=%s", supplier, author)
			}
			if input.Body != "Responsive and on budget." {
				t.Fatalf("unexpected body %q", input.Body)
			}
			return &feedback.FeedbackDTO{ID: uuid.New(), SupplierID: supplier}, nil
		},
	}

	body := []byte(`{"body":"Responsive and on budget."}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/"+supplierID.String()+"/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), authorID.String()))
	req = addRouteParam(req, "supplierId", supplierID.String())
	resp := httptest.NewRecorder()
	SubmitSupplierFeedback(svc, testLogger())(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestListSupplierFeedback(t *testing.T) {
	supplierID := uuid.New()
	svc := &testFeedbackService{
		listFn: func(ctx context.Context, supplier uuid.UUID) ([]feedback.FeedbackDTO, error) {
			if supplier != supplierID {
				t.Fatalf("unexpected supplier %s", supplier)
			}
			return []feedback.FeedbackDTO{{ID: uuid.New()}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/suppliers/"+supplierID.String()+"/feedback", nil)
	req = addRouteParam(req, "supplierId", supplierID.String())
	resp := httptest.NewRecorder()
	ListSupplierFeedback(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
