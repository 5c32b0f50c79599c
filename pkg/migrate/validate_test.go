package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateDirAcceptsWellFormedMigration(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "20260301000001_init.sql", "-- +goose Up\nCREATE TABLE t (id int);\n-- +goose Down\nDROP TABLE t;\n")

	if err := ValidateDir(dir); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsMissingDownMarker(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "20260301000002_broken.sql", "-- +goose Up\nCREATE TABLE t (id int);\n")

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "+goose Down") {
		t.Fatalf("expected missing down marker error, got %v", err)
	}
}

func TestValidateDirRejectsBadFileName(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "init.sql", "-- +goose Up\n-- +goose Down\n")

	err := ValidateDir(dir)
	if err == nil || !strings.Contains(err.Error(), "bad file name") {
		t.Fatalf("expected bad file name error, got %v", err)
	}
}

func TestCreateSQLMigrationRejectsBadNames(t *testing.T) {
	if _, err := CreateSQLMigration(t.TempDir(), "Not Snake Case"); err == nil {
		t.Fatal("expected invalid name error")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "add_sales_index")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading created migration: %v", err)
	}
	if !strings.Contains(string(raw), "+goose Up") {
		t.Fatal("template missing up marker")
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("migration written outside dir: %s", path)
	}
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
