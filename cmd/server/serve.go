package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patient-care-portal/internal/agent"
	"patient-care-portal/internal/assist"
	"patient-care-portal/internal/config"
	"patient-care-portal/internal/consultation"
	"patient-care-portal/internal/dashboard"
	"patient-care-portal/internal/identity"
	"patient-care-portal/internal/patient"
	"patient-care-portal/internal/platform/database"
	apperrors "patient-care-portal/internal/platform/errors"
	"patient-care-portal/internal/platform/metrics"
	"patient-care-portal/internal/platform/middleware"
	"patient-care-portal/internal/platform/telegram"
	"patient-care-portal/internal/report"
	"patient-care-portal/internal/triage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

type repositories struct {
	profiles      identity.Repository
	patients      patient.Repository
	consultations consultation.Repository
	reports       report.Repository
}

// openRepositories returns Postgres-backed stores when DATABASE_URL is set
// and in-memory stores otherwise.
func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, *sql.DB, error) {
	if !cfg.HasDatabase() {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory stores")
		return &repositories{
			profiles:      identity.NewMemoryRepository(),
			patients:      patient.NewMemoryRepository(),
			consultations: consultation.NewMemoryRepository(),
			reports:       report.NewMemoryRepository(),
		}, nil, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info().Msg("database connected and migrated")

	return &repositories{
		profiles:      identity.NewRepository(db),
		patients:      patient.NewRepository(db),
		consultations: consultation.NewRepository(db),
		reports:       report.NewRepository(db),
	}, db, nil
}

func newCompleter(cfg *config.Config, logger zerolog.Logger) agent.Completer {
	if cfg.GeminiAPIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, using canned responses")
		return agent.NewMockClient()
	}
	return agent.NewGeminiClient(agent.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.CompletionTimeout,
	})
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)

	repos, db, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	if inserted, err := patient.Seed(ctx, repos.patients); err != nil {
		return err
	} else if inserted {
		logger.Info().Str("patient_id", patient.DemoPatientID.String()).Msg("seeded demo patient")
	}

	completer := newCompleter(cfg, logger)
	tgClient := telegram.NewClient(cfg.TelegramToken)
	if cfg.CareTeamChatID == 0 {
		logger.Warn().Msg("CARE_TEAM_CHAT_ID not set, emergency alerts and report delivery are disabled")
	}

	patientSvc := patient.NewService(repos.patients)
	triageSvc := triage.NewService(completer, tgClient, cfg.CareTeamChatID)
	assistSvc := assist.NewService(completer)
	consultationSvc := consultation.NewService(repos.consultations, completer)
	dashboardSvc := dashboard.NewService(patientSvc, patient.DemoPatientID)
	reportSvc := report.NewService(repos.reports, completer, tgClient, report.Options{
		FontPath:       cfg.ReportFontPath,
		CareTeamChatID: cfg.CareTeamChatID,
	})

	auth := identity.NewAuthenticator(cfg.JWTSecret, cfg.DemoMode, repos.profiles)
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{"status": "ok", "demo_mode": cfg.DemoMode}
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				apperrors.WriteError(w, apperrors.Unavailable("database unreachable", err))
				return
			}
		}
		apperrors.WriteJSON(w, http.StatusOK, status)
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware)

		identity.RegisterRoutes(r, identity.NewHandler())
		dashboard.RegisterRoutes(r, dashboard.NewHandler(dashboardSvc))
		patient.RegisterRoutes(r, patient.NewHandler(patientSvc))

		// Everything below calls the completion backend.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			triage.RegisterRoutes(r, triage.NewHandler(triageSvc))
			assist.RegisterRoutes(r, assist.NewHandler(assistSvc))
			consultation.RegisterRoutes(r, consultation.NewHandler(consultationSvc))
			report.RegisterRoutes(r, report.NewHandler(reportSvc))
		})
	})

	// No server WriteTimeout: triage streams over SSE.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Bool("demo_mode", cfg.DemoMode).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
