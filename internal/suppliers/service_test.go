package suppliers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/config"
	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

type stubSuppliersRepo struct {
	byOwner map[uuid.UUID]*models.SupplierApplication
	byID    map[uuid.UUID]*models.SupplierApplication
	created *models.SupplierApplication
	updated *models.SupplierApplication
	listed  []models.SupplierApplication
	gotList ListInput
}

func newStubSuppliersRepo() *stubSuppliersRepo {
	return &stubSuppliersRepo{
		byOwner: map[uuid.UUID]*models.SupplierApplication{},
		byID:    map[uuid.UUID]*models.SupplierApplication{},
	}
}

func (s *stubSuppliersRepo) add(app *models.SupplierApplication) {
	s.byOwner[app.OwnerID] = app
	s.byID[app.ID] = app
}

func (s *stubSuppliersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSuppliersRepo) Create(ctx context.Context, app *models.SupplierApplication) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	s.created = app
	s.add(app)
	return nil
}

func (s *stubSuppliersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error) {
	if app, ok := s.byID[id]; ok {
		return app, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSuppliersRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.SupplierApplication, error) {
	if app, ok := s.byOwner[ownerID]; ok {
		return app, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSuppliersRepo) Update(ctx context.Context, app *models.SupplierApplication) error {
	s.updated = app
	s.add(app)
	return nil
}

func (s *stubSuppliersRepo) ListApproved(ctx context.Context, input ListInput) ([]models.SupplierApplication, string, error) {
	s.gotList = input
	return s.listed, "", nil
}

func (s *stubSuppliersRepo) ListByStatus(ctx context.Context, input AdminListInput) ([]models.SupplierApplication, string, error) {
	var rows []models.SupplierApplication
	for _, app := range s.byID {
		if app.Status == input.Status {
			rows = append(rows, *app)
		}
	}
	return rows, "", nil
}

func (s *stubSuppliersRepo) ListByStatusBefore(ctx context.Context, statuses []enums.SupplierStatus, cutoff time.Time) ([]models.SupplierApplication, error) {
	var rows []models.SupplierApplication
	for _, app := range s.byID {
		for _, status := range statuses {
			if app.Status == status && app.CreatedAt.Before(cutoff) {
				rows = append(rows, *app)
			}
		}
	}
	return rows, nil
}

func (s *stubSuppliersRepo) CountByStatus(ctx context.Context) (map[enums.SupplierStatus]int64, error) {
	counts := map[enums.SupplierStatus]int64{}
	for _, app := range s.byID {
		counts[app.Status]++
	}
	return counts, nil
}

type stubSupplierTxRunner struct{}

func (s stubSupplierTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSupplierOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubSupplierOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubSupplierOutbox) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return s.Emit(ctx, tx, event)
}

type stubRatingReader struct {
	overviews map[uuid.UUID]RatingOverview
}

func (s *stubRatingReader) OverviewForSuppliers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]RatingOverview, error) {
	return s.overviews, nil
}

type stubBrochureSigner struct {
	lastObject string
}

func (s *stubBrochureSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	s.lastObject = object
	return "https://storage.googleapis.com/" + bucket + "/" + object + "?signed=1", nil
}

type supplierServiceSetup struct {
	repo    *stubSuppliersRepo
	outbox  *stubSupplierOutbox
	ratings *stubRatingReader
	signer  *stubBrochureSigner
	service Service
}

func newSupplierServiceSetup(t *testing.T) *supplierServiceSetup {
	t.Helper()
	repo := newStubSuppliersRepo()
	ob := &stubSupplierOutbox{}
	ratings := &stubRatingReader{overviews: map[uuid.UUID]RatingOverview{}}
	signer := &stubBrochureSigner{}
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      stubSupplierTxRunner{},
		Outbox:  ob,
		Ratings: ratings,
		Signer:  signer,
		GCSCfg:  config.GCSConfig{BucketName: "sb-brochures", UploadURLExpiry: 15 * time.Minute},
	})
	if err != nil {
		t.Fatalf("new supplier service: %v", err)
	}
	return &supplierServiceSetup{repo: repo, outbox: ob, ratings: ratings, signer: signer, service: svc}
}

func sampleSubmitInput() SubmitApplicationInput {
	return SubmitApplicationInput{
		CompanyName:  "Apex Learning Supply",
		ContactName:  "Dana Wells",
		ContactEmail: "Dana@Apex.example",
		City:         "Austin",
		State:        "TX",
		SupplierType: "furniture",
		PaymentModes: []string{"Invoice", "purchase_order", "invoice"},
		ServiceDetails: types.ServiceDetails{
			Type:      enums.SupplierTypeFurniture,
			Furniture: &types.FurnitureDetails{Categories: []string{"desks"}, LeadTimeDays: 30},
		},
	}
}

func TestSubmitApplicationEmitsEvent(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	ownerID := uuid.New()

	dto, err := setup.service.SubmitApplication(context.Background(), ownerID, sampleSubmitInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if dto.Status != enums.SupplierStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if dto.ContactEmail != "dana@apex.example" {
		t.Fatalf("email not normalized: %s", dto.ContactEmail)
	}
	if len(dto.PaymentModes) != 2 {
		t.Fatalf("expected deduped payment modes, got %v", dto.PaymentModes)
	}

	if len(setup.outbox.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(setup.outbox.events))
	}
	event := setup.outbox.events[0]
	if event.EventType != enums.EventSupplierSubmitted {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.SupplierSubmittedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.OwnerID != ownerID || payload.SupplierID != dto.ID {
		t.Fatalf("payload identity mismatch: %+v", payload)
	}
}

func TestSubmitApplicationRejectsSecondSubmission(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	ownerID := uuid.New()

	if _, err := setup.service.SubmitApplication(context.Background(), ownerID, sampleSubmitInput()); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	_, err := setup.service.SubmitApplication(context.Background(), ownerID, sampleSubmitInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmitApplicationValidatesServiceDetails(t *testing.T) {
	setup := newSupplierServiceSetup(t)

	input := sampleSubmitInput()
	input.ServiceDetails = types.ServiceDetails{
		Type:   enums.SupplierTypeEdTech,
		EdTech: &types.EdTechDetails{Platforms: []string{"web"}},
	}
	_, err := setup.service.SubmitApplication(context.Background(), uuid.New(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListNormalizesFiltersAndAttachesRatings(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	supplierID := uuid.New()
	setup.repo.listed = []models.SupplierApplication{{
		ID:          supplierID,
		CompanyName: "Apex Learning Supply",
		City:        "Austin",
		State:       "TX",
		Status:      enums.SupplierStatusApproved,
	}}
	setup.ratings.overviews[supplierID] = RatingOverview{Overall: 4.2, Count: 7}

	result, err := setup.service.List(context.Background(), ListInput{Filters: ListFilters{
		SupplierType: "FURNITURE",
		PaymentMode:  "Invoice",
	}})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if setup.repo.gotList.Filters.SupplierType != "furniture" {
		t.Fatalf("supplier type not normalized: %q", setup.repo.gotList.Filters.SupplierType)
	}
	if setup.repo.gotList.Filters.PaymentMode != "invoice" {
		t.Fatalf("payment mode not normalized: %q", setup.repo.gotList.Filters.PaymentMode)
	}
	if len(result.Suppliers) != 1 {
		t.Fatalf("expected one card, got %d", len(result.Suppliers))
	}
	if result.Suppliers[0].Rating.Overall != 4.2 || result.Suppliers[0].Rating.Count != 7 {
		t.Fatalf("rating not attached: %+v", result.Suppliers[0].Rating)
	}
}

func TestListRejectsUnknownFilterValues(t *testing.T) {
	setup := newSupplierServiceSetup(t)

	_, err := setup.service.List(context.Background(), ListInput{Filters: ListFilters{SupplierType: "catering"}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideApprovesPendingApplication(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	ownerID := uuid.New()
	adminID := uuid.New()
	app := &models.SupplierApplication{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		CompanyName: "Apex Learning Supply",
		Status:      enums.SupplierStatusPending,
	}
	setup.repo.add(app)

	note := "verified references"
	dto, err := setup.service.Decide(context.Background(), DecisionInput{
		SupplierID:  app.ID,
		Decision:    "approve",
		Note:        &note,
		AdminUserID: adminID,
	})
	if err != nil {
		t.Fatalf("decide failed: %v", err)
	}

	if dto.Status != enums.SupplierStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if dto.DecidedAt == nil {
		t.Fatalf("decided_at not set")
	}
	if len(setup.outbox.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(setup.outbox.events))
	}
	payload, ok := setup.outbox.events[0].Data.(payloads.SupplierStatusChangedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", setup.outbox.events[0].Data)
	}
	if payload.FromStatus != enums.SupplierStatusPending || payload.ToStatus != enums.SupplierStatusApproved {
		t.Fatalf("transition payload mismatch: %+v", payload)
	}
	if payload.OwnerID != ownerID {
		t.Fatalf("owner not carried on payload")
	}
}

func TestDecideRejectsTerminalTransition(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	app := &models.SupplierApplication{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  enums.SupplierStatusRejected,
	}
	setup.repo.add(app)

	_, err := setup.service.Decide(context.Background(), DecisionInput{
		SupplierID:  app.ID,
		Decision:    "approve",
		AdminUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(setup.outbox.events) != 0 {
		t.Fatalf("no event should be emitted on rejected transition")
	}
}

func TestGetApprovedHidesPendingSuppliers(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	app := &models.SupplierApplication{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  enums.SupplierStatusPending,
	}
	setup.repo.add(app)

	_, err := setup.service.GetApproved(context.Background(), app.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for pending supplier, got %v", err)
	}
}

func TestBrochureUploadAndAttach(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	ownerID := uuid.New()
	app := &models.SupplierApplication{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Status:  enums.SupplierStatusApproved,
	}
	setup.repo.add(app)

	upload, err := setup.service.BrochureUploadURL(context.Background(), ownerID, "application/pdf")
	if err != nil {
		t.Fatalf("upload url failed: %v", err)
	}
	if upload.Object == "" || upload.UploadURL == "" {
		t.Fatalf("incomplete upload dto: %+v", upload)
	}

	dto, err := setup.service.AttachBrochure(context.Background(), ownerID, upload.Object)
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if dto.BrochureURL == nil {
		t.Fatalf("brochure url not set")
	}

	if _, err := setup.service.AttachBrochure(context.Background(), ownerID, "brochures/"+uuid.NewString()+"/x.pdf"); err == nil {
		t.Fatalf("expected rejection for foreign object path")
	}
}

func TestBrochureUploadRejectsNonPDF(t *testing.T) {
	setup := newSupplierServiceSetup(t)
	ownerID := uuid.New()
	setup.repo.add(&models.SupplierApplication{ID: uuid.New(), OwnerID: ownerID})

	_, err := setup.service.BrochureUploadURL(context.Background(), ownerID, "image/png")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
