package suppliers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schoolbridge/schoolbridge-backend/pkg/db/models"
	"github.com/schoolbridge/schoolbridge-backend/pkg/enums"
	"github.com/schoolbridge/schoolbridge-backend/pkg/pagination"
)

func setupSupplierTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS supplier_applications (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE,
  company_name TEXT NOT NULL,
  contact_name TEXT NOT NULL,
  contact_email TEXT NOT NULL,
  contact_phone TEXT,
  website TEXT,
  description TEXT,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  supplier_type TEXT NOT NULL,
  payment_modes TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  service_details TEXT,
  brochure_url TEXT,
  decision_note TEXT,
  decided_by TEXT,
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	t.Cleanup(func() {
		_ = db.Exec("DELETE FROM supplier_applications").Error
	})
	return db
}

func seededApp(name, city, state string, status enums.SupplierStatus, createdAt time.Time) *models.SupplierApplication {
	return &models.SupplierApplication{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		CompanyName:  name,
		ContactName:  "Dana Wells",
		ContactEmail: "dana@apex.example",
		City:         city,
		State:        state,
		SupplierType: enums.SupplierTypeEdTech,
		PaymentModes: pq.StringArray{string(enums.PaymentModeOnline)},
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestListApprovedMatchesLocationCaseInsensitively(t *testing.T) {
	db := setupSupplierTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, seededApp("Apex Learning Supply", "Austin", "TX", enums.SupplierStatusApproved, now)))
	require.NoError(t, repo.Create(ctx, seededApp("Lone Star Desks", "Dallas", "TX", enums.SupplierStatusApproved, now.Add(-time.Minute))))

	rows, _, err := repo.ListApproved(ctx, ListInput{
		Filters: ListFilters{City: "AUSTIN", State: "tx"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Apex Learning Supply", rows[0].CompanyName)

	rows, _, err = repo.ListApproved(ctx, ListInput{
		Filters: ListFilters{City: "houston"},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListApprovedExcludesUnapprovedRows(t *testing.T) {
	db := setupSupplierTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, seededApp("Approved Vendor", "Austin", "TX", enums.SupplierStatusApproved, now)))
	require.NoError(t, repo.Create(ctx, seededApp("Pending Vendor", "Austin", "TX", enums.SupplierStatusPending, now)))

	rows, _, err := repo.ListApproved(ctx, ListInput{
		Filters: ListFilters{City: "austin"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Approved Vendor", rows[0].CompanyName)
}

func TestListApprovedSearchIgnoresCase(t *testing.T) {
	db := setupSupplierTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	desc := "Turnkey FURNITURE refresh projects"
	withDesc := seededApp("Apex Learning Supply", "Austin", "TX", enums.SupplierStatusApproved, now)
	withDesc.Description = &desc
	require.NoError(t, repo.Create(ctx, withDesc))
	require.NoError(t, repo.Create(ctx, seededApp("Lone Star Desks", "Austin", "TX", enums.SupplierStatusApproved, now.Add(-time.Minute))))

	rows, _, err := repo.ListApproved(ctx, ListInput{
		Filters: ListFilters{Query: "APEX"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Apex Learning Supply", rows[0].CompanyName)

	rows, _, err = repo.ListApproved(ctx, ListInput{
		Filters: ListFilters{Query: "furniture refresh"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Apex Learning Supply", rows[0].CompanyName)
}

func TestListApprovedPagesByCursor(t *testing.T) {
	db := setupSupplierTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	names := []string{"Vendor A", "Vendor B", "Vendor C"}
	for i, name := range names {
		app := seededApp(name, "Austin", "TX", enums.SupplierStatusApproved, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, app))
	}

	first, cursor, err := repo.ListApproved(ctx, ListInput{
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, cursor)
	assert.Equal(t, "Vendor C", first[0].CompanyName)
	assert.Equal(t, "Vendor B", first[1].CompanyName)

	second, next, err := repo.ListApproved(ctx, ListInput{
		Pagination: pagination.Params{Limit: 2, Cursor: cursor},
	})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Empty(t, next)
	assert.Equal(t, "Vendor A", second[0].CompanyName)
}
