package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/desafios")
	t.Setenv("ADMIN_PANEL_PASSWORD", "japa")
	t.Setenv("STORAGE_ENDPOINT", "https://proj.supabase.co/storage/v1/s3/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "5200" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.StorageBucket != DefaultBucket {
		t.Fatalf("StorageBucket = %q", cfg.StorageBucket)
	}
	if cfg.SessionTTL != 4*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != 5*1024*1024 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.StoragePublicBaseURL != "https://proj.supabase.co/storage/v1/s3/challenge-prints" {
		t.Fatalf("StoragePublicBaseURL = %q", cfg.StoragePublicBaseURL)
	}
	if !cfg.UsesObjectStorage() {
		t.Fatal("expected object storage to be enabled")
	}
	if !cfg.SeedChallenges {
		t.Fatal("SeedChallenges should default to true")
	}
}

func TestLoadLegacyDashboardPassword(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/desafios")
	t.Setenv("ADMIN_PANEL_PASSWORD", "")
	t.Setenv("ADMIN_DASHBOARD_PASSWORD", "legacy")
	t.Setenv("STORAGE_ENDPOINT", "http://minio:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AdminPassword != "legacy" {
		t.Fatalf("AdminPassword = %q", cfg.AdminPassword)
	}
}

func TestValidateReportsMissingSettings(t *testing.T) {
	cfg := &Config{AppEnv: "production", SessionTTL: time.Hour}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"DATABASE_URL", "ADMIN_PANEL_PASSWORD", "SESSION_SECRET", "STORAGE_ENDPOINT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestDevelopmentFallsBackToUploadDir(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/desafios")
	t.Setenv("ADMIN_PANEL_PASSWORD", "japa")
	t.Setenv("STORAGE_ENDPOINT", "")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UsesObjectStorage() {
		t.Fatal("expected disk uploads without STORAGE_ENDPOINT")
	}
	if cfg.UploadDir != "uploads" {
		t.Fatalf("UploadDir = %q", cfg.UploadDir)
	}
}

func TestAllowedOriginsAreTrimmed(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	got := getEnvStringSlice("ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("origins = %#v", got)
	}
}
