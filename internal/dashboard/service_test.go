package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/internal/complaints"
	"github.com/schoolbridge/schoolbridge-backend/internal/messaging"
	"github.com/schoolbridge/schoolbridge-backend/internal/pricing"
	"github.com/schoolbridge/schoolbridge-backend/internal/ratings"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
)

type stubApplicationReader struct {
	byOwner map[uuid.UUID]*models.SupplierApplication
	counts  map[enums.SupplierStatus]int64
}

func (r *stubApplicationReader) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.SupplierApplication, error) {
	app, ok := r.byOwner[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return app, nil
}

func (r *stubApplicationReader) CountByStatus(_ context.Context) (map[enums.SupplierStatus]int64, error) {
	return r.counts, nil
}

type stubRatingOverviewer struct {
	overviews map[uuid.UUID]ratings.Overview
}

func (r *stubRatingOverviewer) OverviewForSuppliers(_ context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]ratings.Overview, error) {
	out := make(map[uuid.UUID]ratings.Overview)
	for _, id := range supplierIDs {
		if overview, ok := r.overviews[id]; ok {
			out[id] = overview
		}
	}
	return out, nil
}

type stubConversationLister struct {
	conversations []messaging.ConversationDTO
}

func (l *stubConversationLister) ListConversations(_ context.Context, _ messaging.Participant) ([]messaging.ConversationDTO, error) {
	return l.conversations, nil
}

type stubComplaintLister struct {
	complaints []complaints.ComplaintDTO
}

func (l *stubComplaintLister) ListBySupplier(_ context.Context, _ uuid.UUID) ([]complaints.ComplaintDTO, error) {
	return l.complaints, nil
}

type stubPricingLister struct {
	entries []pricing.EntryDTO
}

func (l *stubPricingLister) ListOwn(_ context.Context, _ uuid.UUID) ([]pricing.EntryDTO, error) {
	return l.entries, nil
}

func TestSupplierStatsAggregation(t *testing.T) {
	ownerID := uuid.New()
	supplierID := uuid.New()
	decidedAt := time.Now().UTC().Add(-time.Hour)

	apps := &stubApplicationReader{byOwner: map[uuid.UUID]*models.SupplierApplication{
		ownerID: {
			ID:        supplierID,
			OwnerID:   ownerID,
			Status:    enums.SupplierStatusApproved,
			DecidedAt: &decidedAt,
		},
	}}
	svc, err := NewService(ServiceParams{
		Applications: apps,
		Ratings: &stubRatingOverviewer{overviews: map[uuid.UUID]ratings.Overview{
			supplierID: {Overall: 4.4, Count: 12},
		}},
		Messaging: &stubConversationLister{conversations: []messaging.ConversationDTO{
			{UnreadCount: 2},
			{UnreadCount: 0},
			{UnreadCount: 3},
		}},
		Complaints: &stubComplaintLister{complaints: []complaints.ComplaintDTO{
			{Status: enums.ComplaintStatusOpen},
			{Status: enums.ComplaintStatusUnderReview},
			{Status: enums.ComplaintStatusResolved},
			{Status: enums.ComplaintStatusDismissed},
		}},
		Pricing: &stubPricingLister{entries: make([]pricing.EntryDTO, 4)},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	stats, err := svc.SupplierStats(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("supplier stats: %v", err)
	}
	if stats.ApplicationStatus != enums.SupplierStatusApproved {
		t.Fatalf("expected approved status, got %s", stats.ApplicationStatus)
	}
	if stats.RatingOverall != 4.4 || stats.RatingCount != 12 {
		t.Fatalf("unexpected rating overview: %+v", stats)
	}
	if stats.UnreadMessages != 5 {
		t.Fatalf("expected 5 unread messages, got %d", stats.UnreadMessages)
	}
	if stats.OpenComplaints != 2 {
		t.Fatalf("expected 2 open complaints, got %d", stats.OpenComplaints)
	}
	if stats.PricingEntries != 4 {
		t.Fatalf("expected 4 pricing entries, got %d", stats.PricingEntries)
	}
	if stats.DecidedAt == nil || !stats.DecidedAt.Equal(decidedAt) {
		t.Fatalf("decided_at not carried over: %v", stats.DecidedAt)
	}
}

func TestSupplierStatsWithoutApplication(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Applications: &stubApplicationReader{byOwner: map[uuid.UUID]*models.SupplierApplication{}},
		Ratings:      &stubRatingOverviewer{},
		Messaging:    &stubConversationLister{},
		Complaints:   &stubComplaintLister{},
		Pricing:      &stubPricingLister{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SupplierStats(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminStatsTotals(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Applications: &stubApplicationReader{counts: map[enums.SupplierStatus]int64{
			enums.SupplierStatusPending:  3,
			enums.SupplierStatusApproved: 10,
			enums.SupplierStatusWaiting:  1,
		}},
		Ratings:    &stubRatingOverviewer{},
		Messaging:  &stubConversationLister{},
		Complaints: &stubComplaintLister{},
		Pricing:    &stubPricingLister{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	stats, err := svc.AdminStats(context.Background())
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if stats.Pending != 3 || stats.Approved != 10 || stats.Rejected != 0 || stats.Waiting != 1 {
		t.Fatalf("unexpected queue counts: %+v", stats)
	}
	if stats.Total != 14 {
		t.Fatalf("expected total 14, got %d", stats.Total)
	}
}
