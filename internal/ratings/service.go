package ratings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox"
	"github.com/schoolbridge/schoolbridge-backend/pkg/outbox/payloads"
	"github.com/schoolbridge/schoolbridge-backend/pkg/types"
)

// WeightSumTolerance is the slack allowed when checking that enabled area
// weights sum to 1.0 on configuration save.
const WeightSumTolerance = 1e-3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error)
}

// Service exposes rating configuration, submission, and aggregation.
type Service interface {
	LoadConfiguration(ctx context.Context, supplierID uuid.UUID) (*ConfigurationDTO, error)
	SaveConfiguration(ctx context.Context, supplierID, adminID uuid.UUID, input SaveConfigurationInput) (*ConfigurationDTO, error)
	ResetConfiguration(ctx context.Context, supplierID uuid.UUID) (*ConfigurationDTO, error)
	Submit(ctx context.Context, supplierID, raterID uuid.UUID, input SubmitInput) (*SummaryDTO, error)
	Summary(ctx context.Context, supplierID uuid.UUID) (*SummaryDTO, error)
	OverviewForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]Overview, error)
}

type service struct {
	repo      Repository
	suppliers supplierReader
	tx        txRunner
	outbox    outboxPublisher
}

// NewService builds the rating service with the provided dependencies.
func NewService(repo Repository, suppliers supplierReader, tx txRunner, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, suppliers: suppliers, tx: tx, outbox: ob}, nil
}

func (s *service) LoadConfiguration(ctx context.Context, supplierID uuid.UUID) (*ConfigurationDTO, error) {
	stored, err := s.repo.FindConfiguration(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ConfigurationDTO{
				SupplierID: supplierID,
				Areas:      DefaultAreas(),
				Configured: false,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating configuration")
	}
	updatedAt := stored.UpdatedAt
	return &ConfigurationDTO{
		SupplierID: supplierID,
		Areas:      Resolve(stored.Areas, DefaultAreas()),
		Configured: true,
		UpdatedAt:  &updatedAt,
	}, nil
}

func (s *service) SaveConfiguration(ctx context.Context, supplierID, adminID uuid.UUID, input SaveConfigurationInput) (*ConfigurationDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	settings, err := validateAreaSettings(input.Areas)
	if err != nil {
		return nil, err
	}

	cfg, err := s.repo.FindConfiguration(ctx, supplierID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rating configuration")
		}
		cfg = &models.RatingConfiguration{SupplierID: supplierID}
	}
	cfg.Areas = settings
	cfg.UpdatedBy = adminID

	if err := s.repo.SaveConfiguration(ctx, cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rating configuration")
	}
	return s.LoadConfiguration(ctx, supplierID)
}

// ResetConfiguration discards the stored override so loads fall back to the
// catalog defaults.
func (s *service) ResetConfiguration(ctx context.Context, supplierID uuid.UUID) (*ConfigurationDTO, error) {
	if err := s.repo.DeleteConfiguration(ctx, supplierID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset rating configuration")
	}
	return s.LoadConfiguration(ctx, supplierID)
}

func (s *service) Submit(ctx context.Context, supplierID, raterID uuid.UUID, input SubmitInput) (*SummaryDTO, error) {
	if raterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Scores) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one area must be rated")
	}

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Status != enums.SupplierStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	config, err := s.LoadConfiguration(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	enabled := make(map[string]bool, len(config.Areas))
	for _, area := range config.Areas {
		if area.Enabled {
			enabled[area.ID] = true
		}
	}
	scores := make(types.RatingScores, len(input.Scores))
	for areaID, value := range input.Scores {
		if !enabled[areaID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("area %q is not rateable for this supplier", areaID))
		}
		if value < 1 || value > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("score for %q must be between 1 and 5", areaID))
		}
		scores[areaID] = value
	}

	var summary *SummaryDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		replaced := false
		submission, err := repo.FindSubmission(ctx, supplierID, raterID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
			}
			submission = &models.RatingSubmission{SupplierID: supplierID, RaterID: raterID}
		} else {
			replaced = true
		}

		// Resubmission replaces the whole scores map. Areas rated last
		// time but absent now are gone.
		submission.Scores = scores
		submission.Feedback = input.Feedback
		if err := repo.SaveSubmission(ctx, submission); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save submission")
		}

		rows, err := repo.ListSubmissions(ctx, supplierID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
		}
		computed := computeSummary(supplierID, config.Areas, rows)
		summary = &computed

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRatingSubmitted,
			AggregateType: enums.AggregateRating,
			AggregateID:   submission.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: raterID,
				Role:   string(enums.UserRoleSchool),
			},
			Data: payloads.RatingSubmittedEvent{
				SupplierID:      supplierID,
				SupplierOwnerID: supplier.OwnerID,
				RaterID:         raterID,
				Replaced:        replaced,
				OverallScore:    computed.Overall,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *service) Summary(ctx context.Context, supplierID uuid.UUID) (*SummaryDTO, error) {
	config, err := s.LoadConfiguration(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSubmissions(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}
	summary := computeSummary(supplierID, config.Areas, rows)
	return &summary, nil
}

// OverviewForSuppliers computes compact aggregates for a batch of suppliers,
// used by the browse endpoint to decorate cards in one query.
func (s *service) OverviewForSuppliers(ctx context.Context, supplierIDs []uuid.UUID) (map[uuid.UUID]Overview, error) {
	overviews := make(map[uuid.UUID]Overview, len(supplierIDs))
	if len(supplierIDs) == 0 {
		return overviews, nil
	}
	rows, err := s.repo.ListSubmissionsForSuppliers(ctx, supplierIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}

	bySupplier := make(map[uuid.UUID][]models.RatingSubmission, len(supplierIDs))
	for _, row := range rows {
		bySupplier[row.SupplierID] = append(bySupplier[row.SupplierID], row)
	}
	for _, supplierID := range supplierIDs {
		config, err := s.LoadConfiguration(ctx, supplierID)
		if err != nil {
			return nil, err
		}
		summary := computeSummary(supplierID, config.Areas, bySupplier[supplierID])
		overviews[supplierID] = Overview{Overall: summary.Overall, Count: summary.Count}
	}
	return overviews, nil
}

// validateAreaSettings requires the payload to cover the full catalog.
// Reads merge stored settings over the defaults, so a partial save would let
// the untouched defaults push the effective enabled weight sum past 1.0.
func validateAreaSettings(inputs []AreaSettingInput) (types.AreaSettings, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one area is required")
	}

	known := make(map[string]bool)
	for _, area := range DefaultAreas() {
		known[area.ID] = true
	}

	settings := make(types.AreaSettings, len(inputs))
	enabledSum := 0.0
	for _, input := range inputs {
		if !known[input.ID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown rating area %q", input.ID))
		}
		if _, dup := settings[input.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate rating area %q", input.ID))
		}
		if input.Weight < 0 || input.Weight > 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("weight for %q must be between 0 and 1", input.ID))
		}
		settings[input.ID] = types.AreaSetting{Enabled: input.Enabled, Weight: input.Weight}
		if input.Enabled {
			enabledSum += input.Weight
		}
	}

	for id := range known {
		if _, ok := settings[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rating area %q missing from configuration", id))
		}
	}

	if math.Abs(enabledSum-1.0) > WeightSumTolerance {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("enabled area weights must sum to 1.0, got %.3f", enabledSum))
	}
	return settings, nil
}

// computeSummary builds the aggregation view: per-area averages over the
// submissions that rated the area, plus the weighted overall score.
func computeSummary(supplierID uuid.UUID, areas []Area, submissions []models.RatingSubmission) SummaryDTO {
	type bucket struct {
		sum   int
		count int
	}
	buckets := make(map[string]*bucket)
	for _, submission := range submissions {
		for areaID, value := range submission.Scores {
			b, ok := buckets[areaID]
			if !ok {
				b = &bucket{}
				buckets[areaID] = b
			}
			b.sum += value
			b.count++
		}
	}

	averages := make([]AreaAverage, 0, len(areas))
	for _, area := range areas {
		if !area.Enabled {
			continue
		}
		avg := AreaAverage{AreaID: area.ID, Name: area.Name, Weight: area.Weight}
		if b, ok := buckets[area.ID]; ok && b.count > 0 {
			avg.Average = float64(b.sum) / float64(b.count)
			avg.Count = b.count
		}
		averages = append(averages, avg)
	}
	sort.SliceStable(averages, func(i, j int) bool { return averages[i].AreaID < averages[j].AreaID })

	return SummaryDTO{
		SupplierID: supplierID,
		Areas:      averages,
		Overall:    OverallScore(averages),
		Count:      len(submissions),
		HasRatings: len(submissions) > 0,
	}
}

// OverallScore renormalizes over the areas that have at least one rating:
// sum(average*weight) / sum(weight), or 0 when nothing has been rated yet.
// Unrated areas do not drag the score down.
func OverallScore(averages []AreaAverage) float64 {
	weightedSum := 0.0
	totalWeight := 0.0
	for _, avg := range averages {
		if avg.Count == 0 {
			continue
		}
		weightedSum += avg.Average * avg.Weight
		totalWeight += avg.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return weightedSum / totalWeight
}
