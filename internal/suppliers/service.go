package suppliers

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type brochureSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
}

// RatingReader supplies the aggregate ratings rendered on supplier cards.
type RatingReader interface {
	OverviewForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]RatingOverview, error)
}

// Service exposes supplier application operations for all three roles.
type Service interface {
	SubmitApplication(ctx context.Context, ownerID uuid.UUID, input SubmitApplicationInput) (*SupplierDTO, error)
	GetOwnApplication(ctx context.Context, ownerID uuid.UUID) (*SupplierDTO, error)
	UpdateApplication(ctx context.Context, ownerID uuid.UUID, input UpdateApplicationInput) (*SupplierDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	GetApproved(ctx context.Context, id uuid.UUID) (*SupplierDTO, error)
	AdminList(ctx context.Context, input AdminListInput) (*AdminListResult, error)
	Decide(ctx context.Context, input DecisionInput) (*SupplierDTO, error)
	BrochureUploadURL(ctx context.Context, ownerID uuid.UUID, contentType string) (*BrochureUploadDTO, error)
	AttachBrochure(ctx context.Context, ownerID uuid.UUID, object string) (*SupplierDTO, error)
}

// BrochureUploadDTO carries the presigned PUT target for a brochure upload.
type BrochureUploadDTO struct {
	UploadURL string `json:"upload_url"`
	Object    string `json:"object"`
	ExpiresAt int64  `json:"expires_at"`
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	ratings RatingReader
	signer  brochureSigner
	gcsCfg  config.GCSConfig
}

// ServiceParams bundles the supplier service dependencies. Signer may be nil
// when brochure uploads are disabled in the environment.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Outbox  outboxPublisher
	Ratings RatingReader
	Signer  brochureSigner
	GCSCfg  config.GCSConfig
}

// NewService builds the supplier service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Ratings == nil {
		return nil, fmt.Errorf("rating reader required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		ratings: params.Ratings,
		signer:  params.Signer,
		gcsCfg:  params.GCSCfg,
	}, nil
}

func (s *service) SubmitApplication(ctx context.Context, ownerID uuid.UUID, input SubmitApplicationInput) (*SupplierDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	supplierType, err := enums.ParseSupplierType(strings.ToLower(strings.TrimSpace(input.SupplierType)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplier type")
	}
	modes, err := normalizePaymentModes(input.PaymentModes)
	if err != nil {
		return nil, err
	}
	details := input.ServiceDetails
	if details.Type == "" {
		details.Type = supplierType
	}
	if details.Type != supplierType {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service details do not match supplier type")
	}
	if err := details.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service details")
	}

	app := &models.SupplierApplication{
		OwnerID:        ownerID,
		CompanyName:    strings.TrimSpace(input.CompanyName),
		ContactName:    strings.TrimSpace(input.ContactName),
		ContactEmail:   strings.ToLower(strings.TrimSpace(input.ContactEmail)),
		ContactPhone:   input.ContactPhone,
		Website:        input.Website,
		Description:    input.Description,
		City:           strings.TrimSpace(input.City),
		State:          strings.TrimSpace(input.State),
		SupplierType:   supplierType,
		PaymentModes:   modes,
		Status:         enums.SupplierStatusPending,
		ServiceDetails: details,
	}
	if app.CompanyName == "" || app.ContactName == "" || app.ContactEmail == "" || app.City == "" || app.State == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company, contact, city, and state are required")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByOwner(ctx, ownerID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "application already submitted")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing application")
		}

		if err := repo.Create(ctx, app); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create application")
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierSubmitted,
			AggregateType: enums.AggregateSupplier,
			AggregateID:   app.ID,
			Version:       1,
			Actor:         buildActor(ownerID, &app.ID, string(enums.UserRoleSupplier)),
			Data: payloads.SupplierSubmittedEvent{
				SupplierID:   app.ID,
				OwnerID:      ownerID,
				CompanyName:  app.CompanyName,
				SupplierType: app.SupplierType,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(app), nil
}

func (s *service) GetOwnApplication(ctx context.Context, ownerID uuid.UUID) (*SupplierDTO, error) {
	app, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}
	return FromModel(app), nil
}

func (s *service) UpdateApplication(ctx context.Context, ownerID uuid.UUID, input UpdateApplicationInput) (*SupplierDTO, error) {
	app, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}

	if input.CompanyName != nil {
		app.CompanyName = strings.TrimSpace(*input.CompanyName)
	}
	if input.ContactName != nil {
		app.ContactName = strings.TrimSpace(*input.ContactName)
	}
	if input.ContactEmail != nil {
		app.ContactEmail = strings.ToLower(strings.TrimSpace(*input.ContactEmail))
	}
	if input.ContactPhone != nil {
		app.ContactPhone = cloneStringPtr(input.ContactPhone)
	}
	if input.Website != nil {
		app.Website = cloneStringPtr(input.Website)
	}
	if input.Description != nil {
		app.Description = cloneStringPtr(input.Description)
	}
	if input.City != nil {
		app.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		app.State = strings.TrimSpace(*input.State)
	}
	if input.PaymentModes != nil {
		modes, err := normalizePaymentModes(*input.PaymentModes)
		if err != nil {
			return nil, err
		}
		app.PaymentModes = modes
	}
	if input.ServiceDetails != nil {
		details := *input.ServiceDetails
		if details.Type != app.SupplierType {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service details do not match supplier type")
		}
		if err := details.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service details")
		}
		app.ServiceDetails = details
	}
	if app.CompanyName == "" || app.ContactName == "" || app.ContactEmail == "" || app.City == "" || app.State == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company, contact, city, and state are required")
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update application")
	}
	return FromModel(app), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Filters.SupplierType != "" {
		supplierType, err := enums.ParseSupplierType(strings.ToLower(strings.TrimSpace(input.Filters.SupplierType)))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid supplier type filter")
		}
		input.Filters.SupplierType = string(supplierType)
	}
	if input.Filters.PaymentMode != "" {
		mode, err := enums.ParsePaymentMode(strings.ToLower(strings.TrimSpace(input.Filters.PaymentMode)))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode filter")
		}
		input.Filters.PaymentMode = string(mode)
	}

	rows, nextCursor, err := s.repo.ListApproved(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	overviews, err := s.ratings.OverviewForSuppliers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier ratings")
	}

	cards := make([]SupplierCardDTO, 0, len(rows))
	for i := range rows {
		cards = append(cards, CardFromModel(&rows[i], overviews[rows[i].ID]))
	}
	return &ListResult{Suppliers: cards, NextCursor: nextCursor}, nil
}

func (s *service) GetApproved(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if app.Status != enums.SupplierStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return FromModel(app), nil
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*AdminListResult, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	rows, nextCursor, err := s.repo.ListByStatus(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}
	apps := make([]SupplierDTO, 0, len(rows))
	for i := range rows {
		apps = append(apps, *FromModel(&rows[i]))
	}
	return &AdminListResult{Applications: apps, NextCursor: nextCursor}, nil
}

func (s *service) Decide(ctx context.Context, input DecisionInput) (*SupplierDTO, error) {
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.AdminUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	target, err := mapDecisionToStatus(input.Decision)
	if err != nil {
		return nil, err
	}

	var app *models.SupplierApplication
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByID(ctx, input.SupplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
		}
		if !loaded.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move application from %s to %s", loaded.Status, target))
		}

		fromStatus := loaded.Status
		now := time.Now().UTC()
		loaded.Status = target
		loaded.DecisionNote = cloneStringPtr(input.Note)
		loaded.DecidedBy = &input.AdminUserID
		loaded.DecidedAt = &now

		if err := repo.Update(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update application")
		}

		note := ""
		if input.Note != nil {
			note = *input.Note
		}
		app = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSupplierStatusChanged,
			AggregateType: enums.AggregateSupplier,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.AdminUserID, nil, string(enums.UserRoleAdmin)),
			Data: payloads.SupplierStatusChangedEvent{
				SupplierID:   loaded.ID,
				OwnerID:      loaded.OwnerID,
				CompanyName:  loaded.CompanyName,
				FromStatus:   fromStatus,
				ToStatus:     target,
				DecisionNote: note,
				DecidedAt:    now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return FromModel(app), nil
}

func (s *service) BrochureUploadURL(ctx context.Context, ownerID uuid.UUID, contentType string) (*BrochureUploadDTO, error) {
	if s.signer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "brochure storage not configured")
	}
	if contentType != "application/pdf" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brochures must be application/pdf")
	}

	app, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}

	object := path.Join("brochures", app.ID.String(), uuid.NewString()+".pdf")
	url, err := s.signer.SignedURL(s.gcsCfg.BucketName, object, contentType, s.gcsCfg.UploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}
	return &BrochureUploadDTO{
		UploadURL: url,
		Object:    object,
		ExpiresAt: time.Now().Add(s.gcsCfg.UploadURLExpiry).Unix(),
	}, nil
}

func (s *service) AttachBrochure(ctx context.Context, ownerID uuid.UUID, object string) (*SupplierDTO, error) {
	app, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
	}

	expectedPrefix := path.Join("brochures", app.ID.String()) + "/"
	if !strings.HasPrefix(object, expectedPrefix) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object does not belong to this supplier")
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.gcsCfg.BucketName, object)
	app.BrochureURL = &url
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach brochure")
	}
	return FromModel(app), nil
}

func mapDecisionToStatus(decision string) (enums.SupplierStatus, error) {
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case "approve":
		return enums.SupplierStatusApproved, nil
	case "reject":
		return enums.SupplierStatusRejected, nil
	case "waitlist":
		return enums.SupplierStatusWaiting, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve, reject, or waitlist")
	}
}

func normalizePaymentModes(raw []string) (pq.StringArray, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one payment mode is required")
	}
	seen := make(map[enums.PaymentMode]bool, len(raw))
	modes := make(pq.StringArray, 0, len(raw))
	for _, value := range raw {
		mode, err := enums.ParsePaymentMode(strings.ToLower(strings.TrimSpace(value)))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment mode %q", value))
		}
		if seen[mode] {
			continue
		}
		seen[mode] = true
		modes = append(modes, string(mode))
	}
	return modes, nil
}

func buildActor(userID uuid.UUID, supplierID *uuid.UUID, role string) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:     userID,
		SupplierID: supplierID,
		Role:       role,
	}
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
