package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSupplierMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_supplier_applications.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no supplier applications migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS supplier_applications",
		"owner_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE",
		"status supplier_status NOT NULL DEFAULT 'pending'",
		"payment_modes TEXT[] NOT NULL",
		"DROP TABLE IF EXISTS supplier_applications",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRatingMigrationEnforcesOneSubmissionPerRater(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_ratings.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no ratings migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS rating_configurations",
		"supplier_id UUID NOT NULL UNIQUE REFERENCES supplier_applications(id) ON DELETE CASCADE",
		"UNIQUE (supplier_id, rater_id)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
