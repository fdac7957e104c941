package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreBackend != StoreMemory {
		t.Fatalf("default store backend = %q; want memory", cfg.StoreBackend)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("default http port = %d; want 8080", cfg.HTTPPort)
	}
	if cfg.StageName != "Main Stage" {
		t.Fatalf("default stage name = %q", cfg.StageName)
	}
}

func TestLoadSheetsBackendRequiresCredentials(t *testing.T) {
	t.Setenv("HEIMDALL_STORE_BACKEND", "sheets")
	t.Setenv("HEIMDALL_SHEETS_ID", "sheet-123")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail without a credentials file")
	}

	t.Setenv("HEIMDALL_SHEETS_CREDENTIALS_FILE", "/etc/heimdall/sa.json")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SheetsID != "sheet-123" {
		t.Fatalf("unexpected sheets id: %q", cfg.SheetsID)
	}
}

func TestLoadDatabaseBackendRequiresDSN(t *testing.T) {
	t.Setenv("HEIMDALL_STORE_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail without a DSN")
	}

	t.Setenv("HEIMDALL_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	if _, err := Load(); err != nil {
		t.Fatalf("load config: %v", err)
	}
}

func TestLoadProductionRejectsMemoryBackend(t *testing.T) {
	t.Setenv("HEIMDALL_ENV", "production")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config load to fail on the memory backend")
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_ID", "legacy-sheet")
	t.Setenv("STAGE_NAME", "Legacy Stage")
	t.Setenv("HEIMDALL_STORE_BACKEND", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) != 2 {
		t.Fatalf("expected 2 legacy warnings, got %v", cfg.LegacyEnvWarnings)
	}
	if cfg.StageName != "Legacy Stage" {
		t.Fatalf("legacy STAGE_NAME not honored: %q", cfg.StageName)
	}
}
