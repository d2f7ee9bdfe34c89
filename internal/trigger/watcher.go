// Package trigger listens for lead change notifications emitted by the
// database trigger and schedules analysis runs for human edits.
package trigger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/scheduler"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"
)

// ChangeNotification is the JSON payload the lead change trigger sends on
// the notification channel.
type ChangeNotification struct {
	LeadID       string `json:"lead_id"`
	ChangeSource string `json:"change_source"`
	AIProcessed  bool   `json:"ai_processed"`
}

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// Watcher holds a dedicated LISTEN connection and forwards qualifying
// change notifications to the analysis scheduler. Writes made by the
// analysis pipeline itself carry the system source and are ignored, which
// breaks the edit/analyze feedback loop.
type Watcher struct {
	cfg       config.WatcherConfig
	scheduler scheduler.AnalysisScheduler
	log       *logger.Logger
}

// New creates a watcher using a dedicated pgx connection.
func New(cfg config.WatcherConfig, sched scheduler.AnalysisScheduler, log *logger.Logger) *Watcher {
	return &Watcher{cfg: cfg, scheduler: sched, log: log}
}

// Run listens until the context is cancelled, reconnecting with capped
// exponential backoff when the connection drops.
func (w *Watcher) Run(ctx context.Context) error {
	delay := reconnectBaseDelay
	for {
		listening, err := w.listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay = nextRetryDelay(delay, listening)
			w.log.Error("lead change listener disconnected", "error", err, "retry_in", delay.String())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// nextRetryDelay doubles the reconnect backoff up to the cap. A session that
// got as far as a working LISTEN starts the progression over, so a healthy
// watcher that drops its connection does not retry at the cap forever.
func nextRetryDelay(current time.Duration, wasListening bool) time.Duration {
	if wasListening {
		return reconnectBaseDelay
	}
	current *= 2
	if current > reconnectMaxDelay {
		current = reconnectMaxDelay
	}
	return current
}

// listen reports whether the LISTEN command was established before the
// session ended.
func (w *Watcher) listen(ctx context.Context) (bool, error) {
	conn, err := pgx.Connect(ctx, w.cfg.GetDatabaseURL())
	if err != nil {
		return false, err
	}
	defer conn.Close(context.Background())

	channel := w.cfg.GetChangeChannel()
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		return false, err
	}
	w.log.Info("listening for lead changes", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, err
		}
		w.handle(ctx, notification.Payload)
	}
}

// handle decides whether one notification warrants an analysis run.
func (w *Watcher) handle(ctx context.Context, payload string) {
	var change ChangeNotification
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		w.log.Warn("dropping malformed change notification", "payload", payload, "error", err.Error())
		return
	}

	if change.ChangeSource == events.SourceSystem {
		w.log.Debug("ignoring system-sourced change", "lead_id", change.LeadID)
		return
	}
	if change.AIProcessed {
		w.log.Debug("ignoring already processed lead", "lead_id", change.LeadID)
		return
	}

	err := w.scheduler.ScheduleLeadAnalysis(ctx, scheduler.LeadAnalyzePayload{
		LeadID: change.LeadID,
		Source: change.ChangeSource,
	})
	if err != nil {
		w.log.Error("failed to schedule lead analysis", "lead_id", change.LeadID, "error", err)
		return
	}
	w.log.Info("scheduled lead analysis", "lead_id", change.LeadID)
}
