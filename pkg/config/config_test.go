package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Shopify.PageSize != 250 {
		t.Fatalf("expected default page size 250, got %d", cfg.Shopify.PageSize)
	}
	if cfg.Shopify.MaxOrders != 1000 {
		t.Fatalf("expected default order cap 1000, got %d", cfg.Shopify.MaxOrders)
	}
	if got := cfg.Shopify.BaseURL(); got != "https://demo-store.myshopify.com/admin/api/2024-01" {
		t.Fatalf("unexpected base url %q", got)
	}
	if cfg.Stats.Timezone != "Europe/Paris" {
		t.Fatalf("unexpected default timezone %q", cfg.Stats.Timezone)
	}
	if got := cfg.Stats.RepeatWindow(); got != 180*24*time.Hour {
		t.Fatalf("expected 180d repeat window, got %v", got)
	}
	if cfg.Airtable.ClientsTable != "Clients" || cfg.Airtable.TargetsTable != "Objectifs" {
		t.Fatalf("unexpected airtable table defaults: %+v", cfg.Airtable)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("FIRN_SHOPIFY_STORE"); err != nil {
		t.Fatalf("failed to unset store: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("FIRN_STATS_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid timezone to return an error")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	dev := AppConfig{Env: "DEV"}
	if !dev.IsDev() || dev.IsProd() {
		t.Fatalf("env helpers mis-classified dev")
	}
	prod := AppConfig{Env: "prod"}
	if !prod.IsProd() || prod.IsDev() {
		t.Fatalf("env helpers mis-classified prod")
	}
}

func TestAirtableEnabled(t *testing.T) {
	if (AirtableConfig{}).Enabled() {
		t.Fatalf("missing credentials must disable airtable")
	}
	if !(AirtableConfig{APIKey: "key", BaseID: "app123"}).Enabled() {
		t.Fatalf("credentials should enable airtable")
	}
}

func TestStatsLocationDefaultsToUTCWhenEmpty(t *testing.T) {
	loc, err := (StatsConfig{}).Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("FIRN_APP_ENV", "prod")
	t.Setenv("FIRN_APP_PORT", "8081")
	t.Setenv("FIRN_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("FIRN_SHOPIFY_STORE", "demo-store")
	t.Setenv("FIRN_SHOPIFY_ACCESS_TOKEN", "shpat_test")
}
