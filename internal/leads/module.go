// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadportal_backend/internal/events"
	apphttp "leadportal_backend/internal/http"
	"leadportal_backend/internal/leads/agent"
	"leadportal_backend/internal/leads/handler"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/platform/config"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// When no generation API key is configured, the analyze endpoint reports the
// service as unavailable; everything else works unchanged.
func NewModule(ctx context.Context, pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg config.AIConfig, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	var generator agent.Generator
	if cfg.IsAIEnabled() {
		client, err := agent.NewGeminiClient(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
		if err != nil {
			return nil, err
		}
		generator = client
	}

	svc := service.New(repo, generator, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts lead endpoints under /api/v1/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/leads")
	m.handler.RegisterRoutes(group, ctx.AnalyzeRateLimiter.Middleware())
}

// Service exposes the lead service for out-of-process consumers, the
// analysis worker in particular.
func (m *Module) Service() *service.Service {
	return m.svc
}
