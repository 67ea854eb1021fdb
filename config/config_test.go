package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/config"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

func TestLoad_ReturnsDefaultsWhenStoreEmpty(t *testing.T) {
	store := config.NewStore(docstore.NewMemory())
	cfg, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.Defaults()
	if !cfg.MonthlyCap.Equal(want.MonthlyCap) || !cfg.TotalCap.Equal(want.TotalCap) {
		t.Errorf("caps = %+v, want defaults %+v", cfg, want)
	}
	if cfg.CertificateValidityMonths != 12 || cfg.TimeZone != "Asia/Manila" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.WeekendDays[time.Saturday] || !cfg.WeekendDays[time.Sunday] {
		t.Errorf("expected default weekend days Sat/Sun, got %+v", cfg.WeekendDays)
	}
}

func TestSetThenLoad_OverridesRecognizedKeys(t *testing.T) {
	store := config.NewStore(docstore.NewMemory())
	ctx := context.Background()

	if err := store.Set(ctx, config.MonthlyCap, "50.0"); err != nil {
		t.Fatalf("Set MonthlyCap: %v", err)
	}
	if err := store.Set(ctx, config.WeekendDays, "0"); err != nil {
		t.Fatalf("Set WeekendDays: %v", err)
	}

	cfg, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MonthlyCap.Equal(decimal.RequireFromString("50.0")) {
		t.Errorf("MonthlyCap = %s, want 50.0", cfg.MonthlyCap)
	}
	if len(cfg.WeekendDays) != 1 || !cfg.WeekendDays[time.Sunday] {
		t.Errorf("WeekendDays = %+v, want only Sunday", cfg.WeekendDays)
	}
	// TotalCap untouched, still default.
	if !cfg.TotalCap.Equal(decimal.RequireFromString("120.0")) {
		t.Errorf("TotalCap = %s, want default 120.0", cfg.TotalCap)
	}
}

func TestSet_RejectsMalformedValue(t *testing.T) {
	store := config.NewStore(docstore.NewMemory())
	ctx := context.Background()

	if err := store.Set(ctx, config.MonthlyCap, "not-a-number"); err == nil {
		t.Fatal("expected error for malformed MonthlyCap value")
	}
	if err := store.Set(ctx, config.WeekendDays, "7"); err == nil {
		t.Fatal("expected error for out-of-range WeekendDays value")
	}
	if err := store.Set(ctx, "NotAKey", "x"); err == nil {
		t.Fatal("expected error for unrecognized key")
	}
}
