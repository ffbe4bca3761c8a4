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

	"github.com/hoslink/hoslink/internal/config"
	"github.com/hoslink/hoslink/internal/domain/analytics"
	"github.com/hoslink/hoslink/internal/domain/comms"
	"github.com/hoslink/hoslink/internal/domain/dispatch"
	"github.com/hoslink/hoslink/internal/domain/fleet"
	"github.com/hoslink/hoslink/internal/domain/handover"
	"github.com/hoslink/hoslink/internal/domain/hospital"
	"github.com/hoslink/hoslink/internal/domain/patient"
	"github.com/hoslink/hoslink/internal/domain/referral"
	"github.com/hoslink/hoslink/internal/platform/auth"
	"github.com/hoslink/hoslink/internal/platform/db"
	"github.com/hoslink/hoslink/internal/platform/export"
	"github.com/hoslink/hoslink/internal/platform/keylock"
	"github.com/hoslink/hoslink/internal/platform/metrics"
	"github.com/hoslink/hoslink/internal/platform/middleware"
	"github.com/hoslink/hoslink/internal/platform/notification"
	"github.com/hoslink/hoslink/internal/platform/websocket"
)

const version = "0.1.0"

// referralDirectory adapts the patient service to the comms.Referrals
// interface. It is bound after construction because the patient service
// itself writes to the communications log, closing a dependency loop.
type referralDirectory struct {
	svc *patient.Service
}

func (d *referralDirectory) Get(ctx context.Context, patientID string) (*patient.Patient, error) {
	return d.svc.Get(ctx, patientID)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "hoslink-server",
		Short: "Hospital referral and ambulance dispatch API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the referral network API server",
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
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

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the facility and fleet registries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := hospital.Seed(ctx, hospital.NewRepoPG(pool)); err != nil {
				return fmt.Errorf("seed facilities: %w", err)
			}
			if err := fleet.Seed(ctx, fleet.NewRepoPG(pool)); err != nil {
				return fmt.Errorf("seed fleet: %w", err)
			}

			fmt.Println("Seeded facility and fleet registries.")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("hoslink-server " + version)
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	metrics.Register()

	// Shared infrastructure. One keyed lock set serializes writes for
	// patients and ambulances alike; the hub fans events out to tracking
	// clients.
	locks := keylock.New()
	hub := websocket.NewHub()
	sender := notification.NewLogSender(logger.With().Str("component", "notification").Logger())
	notifier := notification.NewNotifier(sender, notification.NewTemplateEngine())

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize export archive")
	}
	exporter := export.NewExporter(archive)

	// Repositories
	patientRepo := patient.NewRepoPG(pool)
	fleetRepo := fleet.NewRepoPG(pool)
	locationRepo := fleet.NewLocationRepoPG(pool)
	hospitalRepo := hospital.NewRepoPG(pool)
	auditRepo := referral.NewRepoPG(pool)
	commsRepo := comms.NewRepoPG(pool)
	handoverRepo := handover.NewRepoPG(pool)

	if err := seedIfEmpty(ctx, hospitalRepo, fleetRepo); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed registries")
	}

	// Services
	hospitalSvc := hospital.NewService(hospitalRepo)
	auditSvc := referral.NewService(auditRepo)
	handoverSvc := handover.NewService(handoverRepo)
	fleetSvc := fleet.NewService(fleetRepo, locationRepo, locks, hub,
		logger.With().Str("component", "fleet").Logger())

	directory := &referralDirectory{}
	commsSvc := comms.NewService(commsRepo, directory, notifier,
		logger.With().Str("component", "comms").Logger())
	patientSvc := patient.NewService(patientRepo, hospitalSvc, auditSvc, commsSvc,
		handoverRepo, notifier, locks, hub,
		logger.With().Str("component", "patient").Logger())
	directory.svc = patientSvc

	analyticsSvc := analytics.NewService(patientSvc, fleetSvc)

	coord := dispatch.NewCoordinator(patientSvc, fleetSvc, commsSvc, auditSvc, notifier, hub, dispatch.Options{
		Steps:      cfg.SimSteps,
		Tick:       cfg.SimTick(),
		AutoStatus: cfg.DispatchAutoStatus,
	}, logger.With().Str("component", "dispatch").Logger())

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout()))

	api := e.Group("/api/v1")
	api.Use(middleware.RateLimit(rateLimit(cfg)))
	api.Use(middleware.Metrics())

	// Routes registered before the session guard stay public; login must
	// come first so credentials can be exchanged for a token.
	auth.NewHandler(auth.NewStaticProvider(), jwtConfig(cfg)).RegisterRoutes(api)

	if cfg.ResolvedAuthMode() == "dev" {
		api.Use(auth.DevAuthMiddleware())
	} else {
		api.Use(auth.JWTMiddleware(jwtConfig(cfg)))
	}

	patient.NewHandler(patientSvc).RegisterRoutes(api)
	fleet.NewHandler(fleetSvc).RegisterRoutes(api)
	hospital.NewHandler(hospitalSvc).RegisterRoutes(api)
	referral.NewHandler(auditSvc).RegisterRoutes(api)
	comms.NewHandler(commsSvc).RegisterRoutes(api)
	handover.NewHandler(handoverSvc).RegisterRoutes(api)
	analytics.NewHandler(analyticsSvc, exporter).RegisterRoutes(api)
	dispatch.NewHandler(coord).RegisterRoutes(api)
	notification.NewHandler(notifier).RegisterRoutes(api.Group("", auth.RequireRole(auth.RoleAdmin)))

	// Unauthenticated surface
	e.GET("/healthz", db.HealthHandler(pool))
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}
	websocket.NewWebSocketHandler(hub).RegisterRoutes(e.Group(""))

	// Graceful shutdown
	go func() {
		addr := cfg.Host + ":" + cfg.Port
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
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	coord.Shutdown()
	logger.Info().Msg("server stopped")
	return nil
}

// newLogger builds the root logger. Development gets the console writer,
// everything else emits JSON lines; the level comes from LOG_LEVEL.
func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}
	return logger
}

func jwtConfig(cfg *config.Config) auth.JWTConfig {
	return auth.JWTConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.JWTIssuer,
		Expiry: time.Duration(cfg.JWTExpiryHours) * time.Hour,
	}
}

// rateLimit applies the configured per-minute override to the limiter,
// keeping the default burst.
func rateLimit(cfg *config.Config) middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitPerMin > 0 {
		rl.RequestsPerMinute = cfg.RateLimitPerMin
	}
	return rl
}

// seedIfEmpty creates the fixed registries on first boot against an empty
// database. Later boots leave them alone; the seed command refreshes static
// attributes on demand.
func seedIfEmpty(ctx context.Context, hospitals hospital.Repository, ambulances fleet.Repository) error {
	if _, total, err := hospitals.List(ctx, 1, 0); err != nil {
		return err
	} else if total == 0 {
		if err := hospital.Seed(ctx, hospitals); err != nil {
			return fmt.Errorf("seed facilities: %w", err)
		}
	}
	if _, total, err := ambulances.List(ctx, 1, 0); err != nil {
		return err
	} else if total == 0 {
		if err := fleet.Seed(ctx, ambulances); err != nil {
			return fmt.Errorf("seed fleet: %w", err)
		}
	}
	return nil
}

// newArchive selects the export archive backend. A configured bucket routes
// snapshots to S3 (or any S3-compatible endpoint); otherwise they land under
// a local directory.
func newArchive(ctx context.Context, cfg *config.Config) (export.Archive, error) {
	if cfg.ExportS3Bucket != "" {
		return export.NewS3Archive(ctx, export.S3Config{
			Region:          cfg.ExportS3Region,
			Bucket:          cfg.ExportS3Bucket,
			Endpoint:        cfg.ExportS3Endpoint,
			AccessKeyID:     cfg.ExportS3AccessKey,
			SecretAccessKey: cfg.ExportS3SecretKey,
			PathStyle:       cfg.ExportS3PathStyle,
		})
	}
	return export.NewFilesystemArchive(cfg.ExportDir)
}
