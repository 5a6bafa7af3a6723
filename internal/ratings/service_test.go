package ratings

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

type submissionKey struct {
	supplierID uuid.UUID
	raterID    uuid.UUID
}

type stubRatingsRepo struct {
	configs     map[uuid.UUID]*models.RatingConfiguration
	submissions map[submissionKey]*models.RatingSubmission
}

func newStubRatingsRepo() *stubRatingsRepo {
	return &stubRatingsRepo{
		configs:     map[uuid.UUID]*models.RatingConfiguration{},
		submissions: map[submissionKey]*models.RatingSubmission{},
	}
}

func (s *stubRatingsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRatingsRepo) FindConfiguration(ctx context.Context, supplierID uuid.UUID) (*models.RatingConfiguration, error) {
	if cfg, ok := s.configs[supplierID]; ok {
		return cfg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRatingsRepo) SaveConfiguration(ctx context.Context, cfg *models.RatingConfiguration) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	s.configs[cfg.SupplierID] = cfg
	return nil
}

func (s *stubRatingsRepo) DeleteConfiguration(ctx context.Context, supplierID uuid.UUID) error {
	delete(s.configs, supplierID)
	return nil
}

func (s *stubRatingsRepo) FindSubmission(ctx context.Context, supplierID, raterID uuid.UUID) (*models.RatingSubmission, error) {
	if sub, ok := s.submissions[submissionKey{supplierID, raterID}]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRatingsRepo) SaveSubmission(ctx context.Context, submission *models.RatingSubmission) error {
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	s.submissions[submissionKey{submission.SupplierID, submission.RaterID}] = submission
	return nil
}

func (s *stubRatingsRepo) ListSubmissions(ctx context.Context, supplierID uuid.UUID) ([]models.RatingSubmission, error) {
	var rows []models.RatingSubmission
	for key, sub := range s.submissions {
		if key.supplierID == supplierID {
			rows = append(rows, *sub)
		}
	}
	return rows, nil
}

func (s *stubRatingsRepo) ListSubmissionsForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) ([]models.RatingSubmission, error) {
	var rows []models.RatingSubmission
	for _, id := range supplierIDs {
		batch, _ := s.ListSubmissions(ctx, id)
		rows = append(rows, batch...)
	}
	return rows, nil
}

type stubSupplierReader struct {
	suppliers map[uuid.UUID]*models.SupplierApplication
}

func (s *stubSupplierReader) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error) {
	if app, ok := s.suppliers[id]; ok {
		return app, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubRatingsTxRunner struct{}

func (s stubRatingsTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRatingsOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubRatingsOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type ratingsSetup struct {
	repo      *stubRatingsRepo
	suppliers *stubSupplierReader
	outbox    *stubRatingsOutbox
	service   Service
}

func newRatingsSetup(t *testing.T) *ratingsSetup {
	t.Helper()
	repo := newStubRatingsRepo()
	suppliers := &stubSupplierReader{suppliers: map[uuid.UUID]*models.SupplierApplication{}}
	ob := &stubRatingsOutbox{}
	svc, err := NewService(repo, suppliers, stubRatingsTxRunner{}, ob)
	if err != nil {
		t.Fatalf("new ratings service: %v", err)
	}
	return &ratingsSetup{repo: repo, suppliers: suppliers, outbox: ob, service: svc}
}

func (s *ratingsSetup) addApprovedSupplier() *models.SupplierApplication {
	app := &models.SupplierApplication{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Status:  enums.SupplierStatusApproved,
	}
	s.suppliers.suppliers[app.ID] = app
	return app
}

func TestDefaultAreaWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, area := range DefaultAreas() {
		if !area.Enabled {
			t.Fatalf("catalog default %q should be enabled", area.ID)
		}
		sum += area.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("default weights sum to %f, want 1.0", sum)
	}
}

func TestConfigurationSaveLoadRoundTrip(t *testing.T) {
	setup := newRatingsSetup(t)
	supplierID := uuid.New()

	input := SaveConfigurationInput{Areas: []AreaSettingInput{
		{ID: "reliability", Enabled: true, Weight: 0.5},
		{ID: "quality", Enabled: true, Weight: 0.5},
		{ID: "responsiveness", Enabled: false, Weight: 0.2},
		{ID: "value", Enabled: false, Weight: 0},
		{ID: "support", Enabled: false, Weight: 0},
	}}
	saved, err := setup.service.SaveConfiguration(context.Background(), supplierID, uuid.New(), input)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !saved.Configured {
		t.Fatalf("saved configuration should report configured=true")
	}

	loaded, err := setup.service.LoadConfiguration(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	byID := map[string]Area{}
	for _, area := range loaded.Areas {
		byID[area.ID] = area
	}
	if !byID["reliability"].Enabled || byID["reliability"].Weight != 0.5 {
		t.Fatalf("reliability override lost: %+v", byID["reliability"])
	}
	if byID["responsiveness"].Enabled {
		t.Fatalf("disabled area came back enabled")
	}
}

func TestSaveConfigurationRejectsBadWeightSum(t *testing.T) {
	setup := newRatingsSetup(t)

	_, err := setup.service.SaveConfiguration(context.Background(), uuid.New(), uuid.New(), SaveConfigurationInput{
		Areas: []AreaSettingInput{
			{ID: "reliability", Enabled: true, Weight: 0.5},
			{ID: "quality", Enabled: true, Weight: 0.3},
			{ID: "responsiveness", Enabled: false, Weight: 0},
			{ID: "value", Enabled: false, Weight: 0},
			{ID: "support", Enabled: false, Weight: 0},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSaveConfigurationRejectsPartialCatalog(t *testing.T) {
	setup := newRatingsSetup(t)

	_, err := setup.service.SaveConfiguration(context.Background(), uuid.New(), uuid.New(), SaveConfigurationInput{
		Areas: []AreaSettingInput{{ID: "reliability", Enabled: true, Weight: 1.0}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSavedConfigurationKeepsEnabledWeightSumAtOne(t *testing.T) {
	setup := newRatingsSetup(t)
	supplierID := uuid.New()

	_, err := setup.service.SaveConfiguration(context.Background(), supplierID, uuid.New(), SaveConfigurationInput{
		Areas: singleEnabledArea("reliability"),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := setup.service.LoadConfiguration(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	sum := 0.0
	for _, area := range loaded.Areas {
		if area.Enabled {
			sum += area.Weight
		}
	}
	if math.Abs(sum-1.0) > WeightSumTolerance {
		t.Fatalf("loaded enabled weights sum to %f, want 1.0", sum)
	}
}

// singleEnabledArea covers the whole catalog with one enabled area carrying
// the full weight and everything else disabled.
func singleEnabledArea(enabledID string) []AreaSettingInput {
	areas := make([]AreaSettingInput, 0, len(DefaultAreas()))
	for _, area := range DefaultAreas() {
		input := AreaSettingInput{ID: area.ID}
		if area.ID == enabledID {
			input.Enabled = true
			input.Weight = 1.0
		}
		areas = append(areas, input)
	}
	return areas
}

func TestSaveConfigurationRejectsUnknownArea(t *testing.T) {
	setup := newRatingsSetup(t)

	_, err := setup.service.SaveConfiguration(context.Background(), uuid.New(), uuid.New(), SaveConfigurationInput{
		Areas: []AreaSettingInput{{ID: "punctuality", Enabled: true, Weight: 1.0}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResetConfigurationRestoresDefaults(t *testing.T) {
	setup := newRatingsSetup(t)
	supplierID := uuid.New()

	_, err := setup.service.SaveConfiguration(context.Background(), supplierID, uuid.New(), SaveConfigurationInput{
		Areas: singleEnabledArea("reliability"),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reset, err := setup.service.ResetConfiguration(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if reset.Configured {
		t.Fatalf("reset configuration should report configured=false")
	}
	defaults := DefaultAreas()
	if len(reset.Areas) != len(defaults) {
		t.Fatalf("expected %d areas, got %d", len(defaults), len(reset.Areas))
	}
	for i, area := range reset.Areas {
		if area != defaults[i] {
			t.Fatalf("area %d differs from catalog default: %+v vs %+v", i, area, defaults[i])
		}
	}
}

func TestSubmitRejectsEmptyScores(t *testing.T) {
	setup := newRatingsSetup(t)
	supplier := setup.addApprovedSupplier()

	_, err := setup.service.Submit(context.Background(), supplier.ID, uuid.New(), SubmitInput{Scores: map[string]int{}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(setup.repo.submissions) != 0 {
		t.Fatalf("nothing should be persisted on rejection")
	}
}

func TestSubmitRejectsOutOfRangeScore(t *testing.T) {
	setup := newRatingsSetup(t)
	supplier := setup.addApprovedSupplier()

	for _, value := range []int{0, 6} {
		_, err := setup.service.Submit(context.Background(), supplier.ID, uuid.New(), SubmitInput{
			Scores: map[string]int{"quality": value},
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for score %d, got %v", value, err)
		}
	}
}

func TestSubmitRejectsDisabledArea(t *testing.T) {
	setup := newRatingsSetup(t)
	supplier := setup.addApprovedSupplier()

	_, err := setup.service.SaveConfiguration(context.Background(), supplier.ID, uuid.New(), SaveConfigurationInput{
		Areas: singleEnabledArea("reliability"),
	})
	if err != nil {
		t.Fatalf("save config failed: %v", err)
	}

	_, err = setup.service.Submit(context.Background(), supplier.ID, uuid.New(), SubmitInput{
		Scores: map[string]int{"quality": 4},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResubmissionReplacesScoresWholesale(t *testing.T) {
	setup := newRatingsSetup(t)
	supplier := setup.addApprovedSupplier()
	raterID := uuid.New()

	if _, err := setup.service.Submit(context.Background(), supplier.ID, raterID, SubmitInput{
		Scores: map[string]int{"quality": 5},
	}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := setup.service.Submit(context.Background(), supplier.ID, raterID, SubmitInput{
		Scores: map[string]int{"reliability": 3},
	}); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	stored := setup.repo.submissions[submissionKey{supplier.ID, raterID}]
	if len(stored.Scores) != 1 {
		t.Fatalf("expected wholesale replacement, got %v", stored.Scores)
	}
	if stored.Scores["reliability"] != 3 {
		t.Fatalf("replacement scores wrong: %v", stored.Scores)
	}
	if _, ok := stored.Scores["quality"]; ok {
		t.Fatalf("old area should be gone after replacement")
	}

	if len(setup.outbox.events) != 2 {
		t.Fatalf("expected two outbox events, got %d", len(setup.outbox.events))
	}
	second, ok := setup.outbox.events[1].Data.(payloads.RatingSubmittedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", setup.outbox.events[1].Data)
	}
	if !second.Replaced {
		t.Fatalf("second submission should be flagged as a replacement")
	}
}

func TestSubmitToPendingSupplierFails(t *testing.T) {
	setup := newRatingsSetup(t)
	app := &models.SupplierApplication{ID: uuid.New(), OwnerID: uuid.New(), Status: enums.SupplierStatusPending}
	setup.suppliers.suppliers[app.ID] = app

	_, err := setup.service.Submit(context.Background(), app.ID, uuid.New(), SubmitInput{
		Scores: map[string]int{"quality": 4},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for pending supplier, got %v", err)
	}
}

func TestWeightedOverallScore(t *testing.T) {
	score := OverallScore([]AreaAverage{
		{AreaID: "a", Average: 4, Weight: 0.6, Count: 2},
		{AreaID: "b", Average: 2, Weight: 0.4, Count: 1},
	})
	if math.Abs(score-3.2) > 1e-9 {
		t.Fatalf("expected 3.2, got %f", score)
	}
}

func TestOverallScoreSkipsUnratedAreas(t *testing.T) {
	score := OverallScore([]AreaAverage{
		{AreaID: "a", Average: 4, Weight: 0.5, Count: 1},
		{AreaID: "b", Average: 0, Weight: 0.5, Count: 0},
	})
	if math.Abs(score-4.0) > 1e-9 {
		t.Fatalf("unrated areas must not drag the score, got %f", score)
	}
}

func TestSummaryWithZeroRatings(t *testing.T) {
	setup := newRatingsSetup(t)
	supplierID := uuid.New()

	summary, err := setup.service.Summary(context.Background(), supplierID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.HasRatings {
		t.Fatalf("expected no-ratings state")
	}
	if summary.Overall != 0 {
		t.Fatalf("expected overall 0, got %f", summary.Overall)
	}
	if summary.Count != 0 {
		t.Fatalf("expected zero submissions, got %d", summary.Count)
	}
}

func TestSummaryAveragesAcrossRaters(t *testing.T) {
	setup := newRatingsSetup(t)
	supplier := setup.addApprovedSupplier()

	if _, err := setup.service.Submit(context.Background(), supplier.ID, uuid.New(), SubmitInput{
		Scores: map[string]int{"quality": 5},
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := setup.service.Submit(context.Background(), supplier.ID, uuid.New(), SubmitInput{
		Scores: map[string]int{"quality": 3},
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	summary, err := setup.service.Summary(context.Background(), supplier.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	for _, area := range summary.Areas {
		if area.AreaID == "quality" {
			if math.Abs(area.Average-4.0) > 1e-9 || area.Count != 2 {
				t.Fatalf("quality average wrong: %+v", area)
			}
			return
		}
	}
	t.Fatalf("quality area missing from summary")
}

func TestResolveIgnoresUnknownOverrideKeys(t *testing.T) {
	resolved := Resolve(types.AreaSettings{
		"reliability": {Enabled: false, Weight: 0.1},
		"ghost":       {Enabled: true, Weight: 0.9},
	}, DefaultAreas())

	if len(resolved) != len(DefaultAreas()) {
		t.Fatalf("resolve must preserve catalog shape")
	}
	for _, area := range resolved {
		if area.ID == "reliability" && area.Enabled {
			t.Fatalf("override not applied")
		}
		if area.ID == "ghost" {
			t.Fatalf("unknown override key leaked into result")
		}
	}
}
