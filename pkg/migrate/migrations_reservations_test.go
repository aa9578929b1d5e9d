package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReservationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_stock_reservations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no stock reservations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE reservation_status_enum AS ENUM",
		"CREATE TABLE IF NOT EXISTS stock_reservations",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (reserved_quantity > 0)",
		"idx_stock_reservations_active_expiry",
		"DROP TABLE IF EXISTS stock_reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestTransactionsMigrationContainsLedgerColumns(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_inventory_transactions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no inventory transactions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE transaction_type_enum AS ENUM",
		"CREATE TABLE IF NOT EXISTS inventory_transactions",
		"previous_stock INTEGER NOT NULL",
		"new_stock INTEGER NOT NULL CHECK (new_stock >= 0)",
		"idx_inventory_transactions_product_created",
		"DROP TABLE IF EXISTS inventory_transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
