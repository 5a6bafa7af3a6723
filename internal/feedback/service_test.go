package feedback

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
)

type stubFeedbackRepo struct {
	rows []*models.SupplierFeedback
}

func (s *stubFeedbackRepo) Create(ctx context.Context, feedback *models.SupplierFeedback) error {
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}
	s.rows = append(s.rows, feedback)
	return nil
}

func (s *stubFeedbackRepo) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.SupplierFeedback, error) {
	var rows []models.SupplierFeedback
	for _, row := range s.rows {
		if row.SupplierID == supplierID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

type stubFeedbackSupplierReader struct {
	suppliers map[uuid.UUID]*models.SupplierApplication
}

func (s *stubFeedbackSupplierReader) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error) {
	if app, ok := s.suppliers[id]; ok {
		return app, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newFeedbackService(t *testing.T, suppliers map[uuid.UUID]*models.SupplierApplication) (Service, *stubFeedbackRepo) {
	t.Helper()
	repo := &stubFeedbackRepo{}
	svc, err := NewService(repo, &stubFeedbackSupplierReader{suppliers: suppliers})
	if err != nil {
		t.Fatalf("new feedback service: %v", err)
	}
	return svc, repo
}

func TestSubmitFeedback(t *testing.T) {
	supplierID := uuid.New()
	svc, repo := newFeedbackService(t, map[uuid.UUID]*models.SupplierApplication{
		supplierID: {ID: supplierID, Status: enums.SupplierStatusApproved},
	})

	authorID := uuid.New()
	dto, err := svc.Submit(context.Background(), supplierID, authorID, SubmitInput{Body: " Great turnaround. "})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if dto.Body != "Great turnaround." {
		t.Fatalf("body not trimmed: %q", dto.Body)
	}
	if len(repo.rows) != 1 || repo.rows[0].AuthorID != authorID {
		t.Fatalf("feedback not persisted correctly")
	}

	listed, err := svc.ListBySupplier(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected one feedback entry, got %d", len(listed))
	}
}

func TestSubmitFeedbackRejectsEmptyBody(t *testing.T) {
	supplierID := uuid.New()
	svc, repo := newFeedbackService(t, map[uuid.UUID]*models.SupplierApplication{
		supplierID: {ID: supplierID, Status: enums.SupplierStatusApproved},
	})

	_, err := svc.Submit(context.Background(), supplierID, uuid.New(), SubmitInput{Body: "  "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("nothing should be persisted")
	}
}

func TestSubmitFeedbackHidesUnapprovedSuppliers(t *testing.T) {
	supplierID := uuid.New()
	svc, _ := newFeedbackService(t, map[uuid.UUID]*models.SupplierApplication{
		supplierID: {ID: supplierID, Status: enums.SupplierStatusWaiting},
	})

	_, err := svc.Submit(context.Background(), supplierID, uuid.New(), SubmitInput{Body: "hello"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
