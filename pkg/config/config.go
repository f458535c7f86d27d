package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "firn"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	Redis    RedisConfig
	Shopify  ShopifyConfig
	Airtable AirtableConfig
	Stats    StatsConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Stats.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FIRN_APP_ENV" required:"true"`
	Port         string `envconfig:"FIRN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FIRN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FIRN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"FIRN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FIRN_REDIS_ADDR"`
	Password     string        `envconfig:"FIRN_REDIS_PASSWORD"`
	DB           int           `envconfig:"FIRN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FIRN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FIRN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FIRN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FIRN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FIRN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ShopifyConfig struct {
	Store       string        `envconfig:"FIRN_SHOPIFY_STORE" required:"true"`
	AccessToken string        `envconfig:"FIRN_SHOPIFY_ACCESS_TOKEN" required:"true"`
	APIVersion  string        `envconfig:"FIRN_SHOPIFY_API_VERSION" default:"2024-01"`
	PageSize    int           `envconfig:"FIRN_SHOPIFY_PAGE_SIZE" default:"250"`
	MaxOrders   int           `envconfig:"FIRN_SHOPIFY_MAX_ORDERS" default:"1000"`
	Timeout     time.Duration `envconfig:"FIRN_SHOPIFY_TIMEOUT" default:"15s"`
}

// BaseURL returns the Admin REST root for the configured store and version.
func (s ShopifyConfig) BaseURL() string {
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", s.Store, s.APIVersion)
}

type AirtableConfig struct {
	APIKey       string        `envconfig:"FIRN_AIRTABLE_API_KEY"`
	BaseID       string        `envconfig:"FIRN_AIRTABLE_BASE_ID"`
	ClientsTable string        `envconfig:"FIRN_AIRTABLE_CLIENTS_TABLE" default:"Clients"`
	ClientsView  string        `envconfig:"FIRN_AIRTABLE_CLIENTS_VIEW"`
	TargetsTable string        `envconfig:"FIRN_AIRTABLE_TARGETS_TABLE" default:"Objectifs"`
	Timeout      time.Duration `envconfig:"FIRN_AIRTABLE_TIMEOUT" default:"10s"`
}

// Enabled reports whether credentials are present; without them the
// dashboard degrades to empty client/target data instead of failing.
func (a AirtableConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != "" && strings.TrimSpace(a.BaseID) != ""
}

type StatsConfig struct {
	Timezone         string            `envconfig:"FIRN_STATS_TIMEZONE" default:"Europe/Paris"`
	RepeatWindowDays int               `envconfig:"FIRN_STATS_REPEAT_WINDOW_DAYS" default:"180"`
	StaffNames       map[string]string `envconfig:"FIRN_STAFF_NAMES"`
	CacheTTL         time.Duration     `envconfig:"FIRN_STATS_CACHE_TTL" default:"60s"`
}

// Location resolves the configured IANA timezone used for daily/monthly
// window boundaries.
func (s StatsConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(s.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid stats timezone %q: %w", name, err)
	}
	return loc, nil
}

// RepeatWindow returns the trailing window over which repeat customers
// are measured.
func (s StatsConfig) RepeatWindow() time.Duration {
	days := s.RepeatWindowDays
	if days <= 0 {
		days = 180
	}
	return time.Duration(days) * 24 * time.Hour
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"FIRN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
