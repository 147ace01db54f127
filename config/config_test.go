package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeEnv(t, "AIRTABLE_API_KEY=file-key\nAIRTABLE_BASE_ID=appX\nAIRTABLE_TABLE_ID=tblY\nFRAGMENTS_MAX_LENGTH=500\nFRAGMENTS_FIELD_TITLE=Title\n")
	t.Setenv("AIRTABLE_API_KEY", "env-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AirtableAPIKey != "env-key" {
		t.Fatalf("environment should win over file, got %q", cfg.AirtableAPIKey)
	}
	if cfg.AirtableBaseID != "appX" || cfg.AirtableTableID != "tblY" {
		t.Fatalf("unexpected ids: %+v", cfg)
	}
	if cfg.MaxLength != 500 {
		t.Fatalf("MaxLength = %d", cfg.MaxLength)
	}
	if cfg.Fields.Title != "Title" || cfg.Fields.Content != "Фрагмент" {
		t.Fatalf("unexpected fields: %+v", cfg.Fields)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatalf("expected error for missing explicit env file")
	}
}

func TestLoadDefaultFileOptional(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if _, err := Load(); err != nil {
		t.Fatalf("missing default .env should be ignored: %v", err)
	}
}

func TestLoadRejectsBadMaxLength(t *testing.T) {
	path := writeEnv(t, "FRAGMENTS_MAX_LENGTH=abc\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for non-numeric max length")
	}
}

func TestValidateListsMissing(t *testing.T) {
	err := Config{AirtableBaseID: "app"}.Validate()
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "AIRTABLE_API_KEY") || !strings.Contains(msg, "AIRTABLE_TABLE_ID") || strings.Contains(msg, "AIRTABLE_BASE_ID") {
		t.Fatalf("unexpected message: %s", msg)
	}
}
