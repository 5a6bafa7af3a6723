package dashboard

import (
	"context"
	"errors"
	"fmt"
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

// SupplierStats is the at-a-glance summary on the supplier home screen.
type SupplierStats struct {
	ApplicationStatus enums.SupplierStatus `json:"application_status"`
	SubmittedAt       time.Time            `json:"submitted_at"`
	DecidedAt         *time.Time           `json:"decided_at,omitempty"`
	RatingOverall     float64              `json:"rating_overall"`
	RatingCount       int                  `json:"rating_count"`
	UnreadMessages    int64                `json:"unread_messages"`
	OpenComplaints    int                  `json:"open_complaints"`
	PricingEntries    int                  `json:"pricing_entries"`
}

// AdminStats summarizes the vetting queue for the admin console.
type AdminStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Waiting  int64 `json:"waiting"`
	Total    int64 `json:"total"`
}

type applicationReader interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.SupplierApplication, error)
	CountByStatus(ctx context.Context) (map[enums.SupplierStatus]int64, error)
}

type ratingOverviewer interface {
	OverviewForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]ratings.Overview, error)
}

type conversationLister interface {
	ListConversations(ctx context.Context, participant messaging.Participant) ([]messaging.ConversationDTO, error)
}

type complaintLister interface {
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]complaints.ComplaintDTO, error)
}

type pricingLister interface {
	ListOwn(ctx context.Context, supplierID uuid.UUID) ([]pricing.EntryDTO, error)
}

// Service aggregates per-role dashboard numbers from the domain services.
type Service interface {
	SupplierStats(ctx context.Context, ownerID uuid.UUID) (*SupplierStats, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
}

// ServiceParams lists the collaborators SupplierStats draws from.
type ServiceParams struct {
	Applications applicationReader
	Ratings      ratingOverviewer
	Messaging    conversationLister
	Complaints   complaintLister
	Pricing      pricingLister
}

type service struct {
	applications applicationReader
	ratings      ratingOverviewer
	messaging    conversationLister
	complaints   complaintLister
	pricing      pricingLister
}

// NewService wires the dashboard aggregator.
func NewService(params ServiceParams) (Service, error) {
	if params.Applications == nil {
		return nil, fmt.Errorf("application reader required")
	}
	if params.Ratings == nil {
		return nil, fmt.Errorf("rating overviewer required")
	}
	if params.Messaging == nil {
		return nil, fmt.Errorf("conversation lister required")
	}
	if params.Complaints == nil {
		return nil, fmt.Errorf("complaint lister required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing lister required")
	}
	return &service{
		applications: params.Applications,
		ratings:      params.Ratings,
		messaging:    params.Messaging,
		complaints:   params.Complaints,
		pricing:      params.Pricing,
	}, nil
}

func (s *service) SupplierStats(ctx context.Context, ownerID uuid.UUID) (*SupplierStats, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	app, err := s.applications.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no supplier application on file")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier application")
	}

	stats := &SupplierStats{
		ApplicationStatus: app.Status,
		SubmittedAt:       app.CreatedAt,
		DecidedAt:         app.DecidedAt,
	}

	overviews, err := s.ratings.OverviewForSuppliers(ctx, []uuid.UUID{app.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating overview")
	}
	if overview, ok := overviews[app.ID]; ok {
		stats.RatingOverall = overview.Overall
		stats.RatingCount = overview.Count
	}

	conversations, err := s.messaging.ListConversations(ctx, messaging.Participant{
		UserID:     ownerID,
		Role:       enums.UserRoleSupplier,
		SupplierID: &app.ID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}
	for _, conversation := range conversations {
		stats.UnreadMessages += conversation.UnreadCount
	}

	filed, err := s.complaints.ListBySupplier(ctx, app.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	for _, complaint := range filed {
		if complaint.Status == enums.ComplaintStatusOpen || complaint.Status == enums.ComplaintStatusUnderReview {
			stats.OpenComplaints++
		}
	}

	entries, err := s.pricing.ListOwn(ctx, app.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pricing entries")
	}
	stats.PricingEntries = len(entries)

	return stats, nil
}

func (s *service) AdminStats(ctx context.Context) (*AdminStats, error) {
	counts, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count applications")
	}
	stats := &AdminStats{
		Pending:  counts[enums.SupplierStatusPending],
		Approved: counts[enums.SupplierStatusApproved],
		Rejected: counts[enums.SupplierStatusRejected],
		Waiting:  counts[enums.SupplierStatusWaiting],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected + stats.Waiting
	return stats, nil
}
