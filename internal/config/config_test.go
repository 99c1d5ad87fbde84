package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Weights.MonthlyDiscountRate != 0.005 {
		t.Errorf("expected discount rate 0.005, got %v", cfg.Weights.MonthlyDiscountRate)
	}
	if cfg.Projection.HorizonSentinel != 99 {
		t.Errorf("expected horizon sentinel 99, got %d", cfg.Projection.HorizonSentinel)
	}
	if cfg.Projection.WithdrawalMonths != 300 {
		t.Errorf("expected 300 withdrawal months, got %v", cfg.Projection.WithdrawalMonths)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("PLANFORGE_CATALOG_DIR", "")

	path := filepath.Join(t.TempDir(), "planforge.yaml")
	cfg := DefaultConfig()
	cfg.Projection.BaseRate = 0.04
	cfg.CatalogDir = "/srv/catalogs"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Projection.BaseRate != 0.04 {
		t.Errorf("expected BaseRate 0.04, got %v", loaded.Projection.BaseRate)
	}
	if loaded.CatalogDir != "/srv/catalogs" {
		t.Errorf("expected catalog dir round-trip, got %q", loaded.CatalogDir)
	}
}

func TestConfig_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("PLANFORGE_CATALOG_DIR", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not fail: %v", err)
	}
	if cfg.Projection.FutureValueCap != 99_999_999 {
		t.Errorf("expected default cap, got %v", cfg.Projection.FutureValueCap)
	}
}

func TestConfig_EnvOverride(t *testing.T) {
	t.Setenv("PLANFORGE_CATALOG_DIR", "/etc/planforge/catalogs")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CatalogDir != "/etc/planforge/catalogs" {
		t.Errorf("expected env override, got %q", cfg.CatalogDir)
	}
}
