package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	pkgerrors "github.com/schoolbridge/schoolbridge-backend/pkg/errors"
)

// EntryDTO is one row of a supplier's published price table.
type EntryDTO struct {
	ID          uuid.UUID       `json:"id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	ItemName    string          `json:"item_name"`
	Description *string         `json:"description,omitempty"`
	Unit        string          `json:"unit"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Position    int             `json:"position"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// EntryInput carries the writable pricing fields.
type EntryInput struct {
	ItemName    string          `json:"item_name" validate:"required,max=200"`
	Description *string         `json:"description,omitempty"`
	Unit        string          `json:"unit" validate:"required,max=50"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Position    int             `json:"position"`
}

type supplierReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierApplication, error)
}

// Repository handles pricing entry persistence.
type Repository interface {
	Create(ctx context.Context, entry *models.PricingEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PricingEntry, error)
	Update(ctx context.Context, entry *models.PricingEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.PricingEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to pricing operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.PricingEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricingEntry, error) {
	var entry models.PricingEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Update(ctx context.Context, entry *models.PricingEntry) error {
	if entry == nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PricingEntry{}).Error
}

func (r *repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]models.PricingEntry, error) {
	var rows []models.PricingEntry
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("position ASC").Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Service exposes supplier-managed pricing with public reads for approved
// suppliers.
type Service interface {
	Create(ctx context.Context, supplierID uuid.UUID, input EntryInput) (*EntryDTO, error)
	Update(ctx context.Context, supplierID, entryID uuid.UUID, input EntryInput) (*EntryDTO, error)
	Delete(ctx context.Context, supplierID, entryID uuid.UUID) error
	ListOwn(ctx context.Context, supplierID uuid.UUID) ([]EntryDTO, error)
	ListPublic(ctx context.Context, supplierID uuid.UUID) ([]EntryDTO, error)
}

type service struct {
	repo      Repository
	suppliers supplierReader
}

// NewService builds the pricing service.
func NewService(repo Repository, suppliers supplierReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier reader required")
	}
	return &service{repo: repo, suppliers: suppliers}, nil
}

func (s *service) Create(ctx context.Context, supplierID uuid.UUID, input EntryInput) (*EntryDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	normalized, err := validateEntry(input)
	if err != nil {
		return nil, err
	}

	entry := &models.PricingEntry{
		SupplierID:  supplierID,
		ItemName:    normalized.ItemName,
		Description: normalized.Description,
		Unit:        normalized.Unit,
		Amount:      normalized.Amount,
		Currency:    normalized.Currency,
		Position:    normalized.Position,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pricing entry")
	}
	return fromModel(entry), nil
}

func (s *service) Update(ctx context.Context, supplierID, entryID uuid.UUID, input EntryInput) (*EntryDTO, error) {
	entry, err := s.ownedEntry(ctx, supplierID, entryID)
	if err != nil {
		return nil, err
	}
	normalized, err := validateEntry(input)
	if err != nil {
		return nil, err
	}

	entry.ItemName = normalized.ItemName
	entry.Description = normalized.Description
	entry.Unit = normalized.Unit
	entry.Amount = normalized.Amount
	entry.Currency = normalized.Currency
	entry.Position = normalized.Position
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pricing entry")
	}
	return fromModel(entry), nil
}

func (s *service) Delete(ctx context.Context, supplierID, entryID uuid.UUID) error {
	if _, err := s.ownedEntry(ctx, supplierID, entryID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, entryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pricing entry")
	}
	return nil
}

func (s *service) ListOwn(ctx context.Context, supplierID uuid.UUID) ([]EntryDTO, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	return s.list(ctx, supplierID)
}

// ListPublic serves a supplier's price table to schools. Only approved
// suppliers are visible.
func (s *service) ListPublic(ctx context.Context, supplierID uuid.UUID) ([]EntryDTO, error) {
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
	return s.list(ctx, supplierID)
}

func (s *service) list(ctx context.Context, supplierID uuid.UUID) ([]EntryDTO, error) {
	rows, err := s.repo.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pricing entries")
	}
	dtos := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *fromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) ownedEntry(ctx context.Context, supplierID, entryID uuid.UUID) (*models.PricingEntry, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier context missing")
	}
	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing entry")
	}
	if entry.SupplierID != supplierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pricing entry belongs to another supplier")
	}
	return entry, nil
}

func validateEntry(input EntryInput) (EntryInput, error) {
	input.ItemName = strings.TrimSpace(input.ItemName)
	input.Unit = strings.TrimSpace(input.Unit)
	if input.ItemName == "" || input.Unit == "" {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "item name and unit are required")
	}
	if input.Amount.IsNegative() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Currency == "" {
		input.Currency = "USD"
	}
	if len(input.Currency) != 3 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter code")
	}
	return input, nil
}

func fromModel(m *models.PricingEntry) *EntryDTO {
	return &EntryDTO{
		ID:          m.ID,
		SupplierID:  m.SupplierID,
		ItemName:    m.ItemName,
		Description: m.Description,
		Unit:        m.Unit,
		Amount:      m.Amount,
		Currency:    m.Currency,
		Position:    m.Position,
		UpdatedAt:   m.UpdatedAt,
	}
}
