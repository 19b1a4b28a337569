package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tillpoint/pos-backend/api/routes"
	"github.com/tillpoint/pos-backend/internal/auth"
	"github.com/tillpoint/pos-backend/internal/catalog"
	"github.com/tillpoint/pos-backend/internal/registers"
	"github.com/tillpoint/pos-backend/internal/sales"
	"github.com/tillpoint/pos-backend/internal/settings"
	"github.com/tillpoint/pos-backend/internal/shifts"
	"github.com/tillpoint/pos-backend/internal/telegram"
	"github.com/tillpoint/pos-backend/internal/users"
	"github.com/tillpoint/pos-backend/pkg/config"
	"github.com/tillpoint/pos-backend/pkg/db"
	"github.com/tillpoint/pos-backend/pkg/logger"
	"github.com/tillpoint/pos-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "pos-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "pos-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.AutoMigrate {
		if err := dbClient.AutoMigrate(context.Background(), logg); err != nil {
			logg.Error(context.Background(), "failed to migrate schema", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	terminalMetrics := metrics.NewTerminalMetrics(registry)

	userService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDefaultAdmin {
		if err := users.EnsureDefaultAdmin(context.Background(), userService, logg); err != nil {
			logg.Error(context.Background(), "failed to seed default admin", err)
			os.Exit(1)
		}
	}

	tokenManager, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration())
	if err != nil {
		logg.Error(context.Background(), "failed to create token manager", err)
		os.Exit(1)
	}
	authService, err := auth.NewService(userService, tokenManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(
		catalog.NewProductRepository(dbClient.DB()),
		catalog.NewCategoryRepository(dbClient.DB()),
		dbClient,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartManager := registers.NewManager()

	salesService, err := sales.NewService(
		sales.NewRepository(dbClient.DB()),
		cartManager,
		catalog.NewProductRepository(dbClient.DB()),
		dbClient,
		logg,
		terminalMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	settingsStore := settings.NewRepository(dbClient.DB())

	shiftService, err := shifts.NewService(
		shifts.NewWriteOffRepository(dbClient.DB()),
		sales.NewRepository(dbClient.DB()),
		settingsStore,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create shift service", err)
		os.Exit(1)
	}

	telegramClient, err := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.SendTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create telegram client", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"terminal": cfg.App.TerminalName,
	})
	logg.Info(ctx, "starting pos api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			registry,
			terminalMetrics,
			authService,
			userService,
			catalogService,
			cartManager,
			salesService,
			shiftService,
			settingsStore,
			telegramClient,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "pos api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
