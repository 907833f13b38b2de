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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/config"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/allocation"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/coverage"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/emergency"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/event"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/leave"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/notification"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/patient"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/pharmacy"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/prescription"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/resource"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/staff"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/auth"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/cache"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/db"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-server",
		Short: "Hospital operations API server",
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
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default from config)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default from config)")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("migrate down is destructive and not supported by the built-in runner.")
			return nil
		},
	})

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Cache: redis when configured, in-process otherwise
	var c cache.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		c = rc
		logger.Info().Msg("connected to redis")
	} else {
		c = cache.NewMemoryCache()
		logger.Warn().Msg("REDIS_URL not set; using in-process cache")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSigningKey),
			Issuer:     cfg.JWTIssuer,
		}))
	}

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeout) * time.Second))

	// Health and metrics
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// -- Register domain handlers --

	// Coverage
	covRepo := coverage.NewRepoPG(pool)
	covSvc := coverage.NewService(covRepo)
	coverage.NewHandler(covSvc).RegisterRoutes(apiV1)

	// Staff directory
	staffRepo := staff.NewRepoPG(pool)
	staffSvc := staff.NewService(staffRepo, c, logger)
	staff.NewHandler(staffSvc).RegisterRoutes(apiV1)

	// Patients
	patRepo := patient.NewRepoPG(pool)
	patSvc := patient.NewService(patRepo, covSvc)
	patient.NewHandler(patSvc).RegisterRoutes(apiV1)

	// Resource pool
	resRepo := resource.NewRepoPG(pool)
	resSvc := resource.NewService(resRepo)
	resource.NewHandler(resSvc).RegisterRoutes(apiV1)

	// Notifications
	notifRepo := notification.NewRepoPG(pool)
	notifSvc := notification.NewService(notifRepo)
	notification.NewHandler(notifSvc).RegisterRoutes(apiV1)

	// Assignment and discharge workflows. The staff service, not the repo,
	// supplies the nurse roster so the fan-out reads through the role cache.
	allocSvc := allocation.NewService(pool, resRepo, patRepo, staffSvc, notifRepo, logger)
	allocation.NewHandler(allocSvc).RegisterRoutes(apiV1)

	// Prescriptions
	rxRepo := prescription.NewRepoPG(pool)
	rxSvc := prescription.NewService(rxRepo, patRepo, covSvc)
	prescription.NewHandler(rxSvc).RegisterRoutes(apiV1)

	// Pharmacy stock
	stockRepo := pharmacy.NewRepoPG(pool)
	stockSvc := pharmacy.NewService(stockRepo)
	pharmacy.NewHandler(stockSvc).RegisterRoutes(apiV1)

	// Events
	eventRepo := event.NewRepoPG(pool)
	eventSvc := event.NewService(eventRepo)
	event.NewHandler(eventSvc).RegisterRoutes(apiV1)

	// Leave requests
	leaveRepo := leave.NewRepoPG(pool)
	leaveSvc := leave.NewService(leaveRepo)
	leave.NewHandler(leaveSvc).RegisterRoutes(apiV1)

	// Emergencies
	emRepo := emergency.NewRepoPG(pool)
	emSvc := emergency.NewService(emRepo)
	emergency.NewHandler(emSvc).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
