// The update-leads binary applies random edits to every stored lead: a new
// status and stage pairing and fresh notes. Each edit goes through the lead
// service, so old values are snapshotted and the change watcher schedules a
// re-analysis for every modified row.
package main

import (
	"context"
	"math/rand"
	"time"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/db"
	"leadportal_backend/platform/logger"
)

var noteSamples = []string{
	"Contacted client, awaiting response.",
	"Sent proposal, pending approval.",
	"Negotiations ongoing, positive signs.",
	"Lost contact, follow-up needed.",
	"Client requested revised pricing.",
}

const pageSize = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	svc := service.New(repository.New(pool), nil, events.NewInMemoryBus(log), log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	processed, updated := 0, 0
	for page := 1; ; page++ {
		batch, err := svc.List(ctx, transport.ListLeadsRequest{Page: page, PageSize: pageSize})
		if err != nil {
			log.Error("failed to list leads", "error", err)
			panic("failed to list leads: " + err.Error())
		}
		if len(batch.Items) == 0 {
			break
		}

		for _, lead := range batch.Items {
			processed++

			status, stage := randomStatusAndStage(rng)
			notes := noteSamples[rng.Intn(len(noteSamples))]
			req := transport.UpdateLeadRequest{
				LeadStatus:    &status,
				PipelineStage: &stage,
				Notes:         &notes,
			}

			result, err := svc.Update(ctx, lead.ID, req)
			if err != nil {
				log.Error("failed to update lead", "lead_id", lead.ID.String(), "error", err)
				continue
			}
			if result.UpdatedAt.After(lead.UpdatedAt) {
				updated++
			}
		}

		if page >= batch.TotalPages {
			break
		}
	}

	log.Info("update pass completed", "processed", processed, "updated", updated)
}

func randomStatusAndStage(rng *rand.Rand) (string, string) {
	type pair struct{ status, stage string }
	var choices []pair
	for _, status := range domain.Statuses {
		for _, stage := range domain.StatusStages[status] {
			choices = append(choices, pair{status, stage})
		}
	}
	picked := choices[rng.Intn(len(choices))]
	return picked.status, picked.stage
}
