package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProductsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_products_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS product_images",
		"specifications   TEXT[] NOT NULL DEFAULT '{}'",
		"REFERENCES products(id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_product_images_product_id",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestAuthMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_auth_tables.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS admins",
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_admins_username",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestFileCleanupMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_file_cleanup_table.sql")

	if !strings.Contains(content, "CREATE TABLE IF NOT EXISTS file_cleanup") {
		t.Errorf("missing file_cleanup table")
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
