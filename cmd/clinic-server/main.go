package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dentalos/clinic/internal/config"
	"github.com/dentalos/clinic/internal/domain/alert"
	"github.com/dentalos/clinic/internal/domain/chart"
	"github.com/dentalos/clinic/internal/domain/doctor"
	"github.com/dentalos/clinic/internal/domain/inventory"
	"github.com/dentalos/clinic/internal/domain/patient"
	"github.com/dentalos/clinic/internal/domain/settings"
	"github.com/dentalos/clinic/internal/domain/treatment"
	"github.com/dentalos/clinic/internal/platform/auth"
	"github.com/dentalos/clinic/internal/platform/db"
	"github.com/dentalos/clinic/internal/platform/docstore"
	"github.com/dentalos/clinic/internal/platform/imaging"
	"github.com/dentalos/clinic/internal/platform/mailer"
	"github.com/dentalos/clinic/internal/platform/middleware"
	"github.com/dentalos/clinic/internal/platform/report"
)

// settingsAdapter exposes the settings service under the narrow interfaces
// the treatment and patient packages depend on, avoiding circular imports.
type settingsAdapter struct {
	svc *settings.Service
}

// Prices implements treatment.PriceSource.
func (a settingsAdapter) Prices(ctx context.Context, doctorEmail string) (map[string]float64, error) {
	s, err := a.svc.Get(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	return s.PriceEstimates, nil
}

// CurrencySymbol implements patient.SettingsSource.
func (a settingsAdapter) CurrencySymbol(ctx context.Context, doctorEmail string) (string, error) {
	s, err := a.svc.Get(ctx, doctorEmail)
	if err != nil {
		return "", err
	}
	return s.Symbol(), nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Dental clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the document store schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == memoryStoreURL {
				return fmt.Errorf("the in-memory store has no schema to migrate")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}

// memoryStoreURL selects the in-memory document store for local development
// without Postgres.
const memoryStoreURL = "memory"

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()

	// Document store
	var store docstore.Store
	if cfg.DatabaseURL == memoryStoreURL {
		if !cfg.IsDev() {
			logger.Fatal().Msg("the in-memory store is only available in development")
		}
		logger.Warn().Msg("using in-memory document store, data will not survive restarts")
		store = docstore.NewMemory()
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := db.Health(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("database health check failed")
		}
		logger.Info().Msg("connected to database")
		store = docstore.NewPG(pool)
	}

	// Token issuer
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "dev-insecure-signing-key"
	}
	issuer := auth.NewTokenIssuer(secret, 24*time.Hour)

	// Outbound email
	var sender mailer.EmailSender = mailer.Disabled{}
	if cfg.MailEnabled() {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		logger.Info().Str("host", cfg.SMTPHost).Msg("email alerts enabled")
	} else {
		logger.Warn().Msg("SMTP credentials missing, email alerts disabled")
	}

	// Image hosting
	var images imaging.Host = imaging.NewMemory()
	if cfg.MediaAPIKey != "" {
		images = imaging.NewCloudHost(cfg.MediaCloudName, cfg.MediaAPIKey, cfg.MediaAPISecret)
		logger.Info().Str("cloud", cfg.MediaCloudName).Msg("image hosting enabled")
	} else {
		logger.Warn().Msg("media credentials missing, storing images in memory")
	}

	// Services
	doctorSvc := doctor.NewService(doctor.NewDocRepository(store), issuer, doctor.NewMailResetSender(sender))
	settingsSvc := settings.NewService(settings.NewDocRepository(store))
	adapter := settingsAdapter{svc: settingsSvc}
	treatmentSvc := treatment.NewService(treatment.NewDocPlanRepository(store), adapter)
	patientSvc := patient.NewService(patient.NewDocRepository(store), images, report.NewGenerator(images), adapter)
	inventorySvc := inventory.NewService(inventory.NewDocRepository(store))
	alertSvc := alert.NewService(inventorySvc, alert.NewDocEmailStore(store), alert.NewNotifier(sender))
	inventorySvc.SetChangeListener(alertSvc)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Public authentication endpoints
	public := e.Group("/api/v1")
	doctor.NewHandler(doctorSvc).RegisterRoutes(public)

	// Authenticated API
	api := e.Group("/api/v1", auth.Middleware(issuer))
	chart.NewHandler().RegisterRoutes(api)
	settings.NewHandler(settingsSvc).RegisterRoutes(api)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(api)
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	inventory.NewHandler(inventorySvc).RegisterRoutes(api)
	alert.NewHandler(alertSvc).RegisterRoutes(api)

	// Start and wait for shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
