package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/http/router"
	"leadportal_backend/internal/leads"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule, err := leads.NewModule(ctx, pool, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	if !cfg.IsAIEnabled() {
		log.Warn("GEMINI_API_KEY not configured; lead analysis endpoint disabled")
	}

	// With Redis configured, human edits also schedule a re-analysis from
	// this process. The task ID dedup in the scheduler keeps this from
	// double-running alongside the worker's change listener.
	if cfg.RedisURL != "" {
		analysisClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize analysis scheduler client", "error", err)
			panic("failed to initialize analysis scheduler client: " + err.Error())
		}
		defer analysisClient.Close()

		eventBus.Subscribe(events.LeadUpdated{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			e, ok := event.(events.LeadUpdated)
			if !ok || e.Source != events.SourceHuman {
				return nil
			}
			return analysisClient.ScheduleLeadAnalysis(ctx, scheduler.LeadAnalyzePayload{
				LeadID: e.LeadID.String(),
				Source: e.Source,
			})
		}))
	} else {
		log.Warn("REDIS_URL not configured; automatic re-analysis scheduling disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			leadsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
