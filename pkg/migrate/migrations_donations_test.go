package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDonationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_donations_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no donations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE donation_status AS ENUM ('pending', 'success', 'failed')",
		"CREATE TABLE IF NOT EXISTS donations",
		"REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (amount > 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_donations_stripe_payment_intent",
		"DROP TABLE IF EXISTS donations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSingleMigrationPerTable(t *testing.T) {
	for _, table := range []string{"users", "causes", "donations"} {
		matches, err := filepath.Glob(filepath.Join("migrations", "*_create_"+table+"_table.sql"))
		if err != nil {
			t.Fatalf("glob migrations: %v", err)
		}
		if len(matches) != 1 {
			t.Errorf("expected exactly one create migration for %s, got %v", table, matches)
		}
	}
}

func TestUsersMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_users_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no users migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE user_role AS ENUM ('donor', 'admin')",
		"CREATE TYPE approval_status AS ENUM ('pending', 'approved', 'denied')",
		"CREATE TABLE IF NOT EXISTS users",
		"CHECK (total_donated >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_role",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
