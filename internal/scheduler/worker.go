package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"
)

// Analyzer runs the AI analysis for one lead. The lead service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, id uuid.UUID) (transport.AnalyzeLeadResponse, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	analyzer Analyzer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, analyzer Analyzer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		analyzer: analyzer,
		log:      log,
	}

	mux.HandleFunc(TaskLeadAnalyze, w.handleLeadAnalyze)

	return w, nil
}

// handleLeadAnalyze runs the analysis pipeline for one lead. Upstream
// failures are returned as-is so asynq retries with backoff; a missing lead
// or unparseable model output will not improve on retry and skips it.
func (w *Worker) handleLeadAnalyze(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadAnalyzePayload(task)
	if err != nil {
		return fmt.Errorf("bad payload: %v: %w", err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("bad lead id %q: %w", payload.LeadID, asynq.SkipRetry)
	}

	result, err := w.analyzer.Analyze(ctx, leadID)
	if err != nil {
		switch apperr.GetKind(err) {
		case apperr.KindNotFound, apperr.KindUnprocessable:
			w.log.Warn("lead analysis skipped", "lead_id", payload.LeadID, "error", err.Error())
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		default:
			return err
		}
	}

	w.log.Info("lead analysis stored", "lead_id", payload.LeadID, "processed", result.AIProcessed)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("analysis worker stopped", "error", err)
	}
}
