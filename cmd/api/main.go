package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/firn-fr/dashboard-backend/api/routes"
	internaldashboard "github.com/firn-fr/dashboard-backend/internal/dashboard"
	"github.com/firn-fr/dashboard-backend/internal/staff"
	"github.com/firn-fr/dashboard-backend/pkg/airtable"
	"github.com/firn-fr/dashboard-backend/pkg/config"
	"github.com/firn-fr/dashboard-backend/pkg/logger"
	"github.com/firn-fr/dashboard-backend/pkg/metrics"
	"github.com/firn-fr/dashboard-backend/pkg/redis"
	"github.com/firn-fr/dashboard-backend/pkg/shopify"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	location, err := cfg.Stats.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to resolve stats timezone", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	fetchMetrics := metrics.NewFetchMetrics(registry)

	shopifyClient, err := shopify.NewClient(cfg.Shopify, logg, shopify.WithFetchMetrics(fetchMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to create shopify client", err)
		os.Exit(1)
	}

	airtableClient := airtable.NewClient(cfg.Airtable)
	if !airtableClient.Enabled() {
		logg.Warn(context.Background(), "airtable credentials missing, client list and targets disabled")
	}

	dashboardService := internaldashboard.NewService(internaldashboard.ServiceOptions{
		Orders:   shopifyClient,
		Contacts: airtableClient,
		Cache:    redisClient,
		Resolver: staff.NewResolver(cfg.Stats.StaffNames),
		Logger:   logg,
		Airtable: cfg.Airtable,
		Stats:    cfg.Stats,
		Location: location,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dashboardService,
			shopifyClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			redisClient,
			shopifyClient,
			airtable.TablePinger{Client: airtableClient, Table: cfg.Airtable.ClientsTable},
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
