// Package service implements the lead business logic: scoring, profile
// edits with audit snapshots, and the AI analysis pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/agent"
	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
)

// HighPriorityPrefix is prepended to summaries of high-priority leads so
// the flag is visible wherever the summary is displayed.
const HighPriorityPrefix = "[ High-priority lead ] "

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// Service coordinates lead persistence, scoring and AI analysis.
type Service struct {
	repo      repository.Repository
	generator agent.Generator
	bus       events.Bus
	log       *logger.Logger
}

// New creates a lead service. generator may be nil when AI analysis is
// disabled; Analyze then reports the generation service as unavailable.
func New(repo repository.Repository, generator agent.Generator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, generator: generator, bus: bus, log: log}
}

// Create validates and stores a new lead. The score is computed from the
// weighted model; a sampled baseline may be supplied for seeded data.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if !domain.ValidStageForStatus(req.LeadStatus, req.PipelineStage) {
		return transport.LeadResponse{}, apperr.Validation(
			fmt.Sprintf("pipeline stage %q is not valid for status %q", req.PipelineStage, req.LeadStatus))
	}

	base := domain.DefaultScoreBase
	if req.ScoreBase != nil {
		base = *req.ScoreBase
	}
	score := domain.ScoreWeighted(base, req.LastDealSizeUSD, req.LeadStatus, req.PipelineStage, req.CRMActivityFlag)

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		CompanyName:         req.CompanyName,
		Quarter:             req.Quarter,
		MarketCapUSD:        req.MarketCapUSD,
		AnnualSalesUSD:      req.AnnualSalesUSD,
		NumberOfCustomers:   req.NumberOfCustomers,
		PrimaryMarketRegion: req.PrimaryMarketRegion,
		SalesContactName:    req.SalesContactName,
		SalesContactEmail:   req.SalesContactEmail,
		DateOfLastContact:   req.DateOfLastContact,
		LeadStatus:          req.LeadStatus,
		PipelineStage:       req.PipelineStage,
		LastDealSizeUSD:     req.LastDealSizeUSD,
		LeadSource:          req.LeadSource,
		Notes:               req.Notes,
		CRMActivityFlag:     req.CRMActivityFlag,
		LeadScore:           score,
		HighPriorityFlag:    domain.HighPriority(score),
	})
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		CompanyName: lead.CompanyName,
		LeadStatus:  lead.LeadStatus,
		LeadScore:   lead.LeadScore,
	})

	return transport.ToLeadResponse(lead), nil
}

// GetByID returns a single lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to fetch lead", err)
	}
	return transport.ToLeadResponse(lead), nil
}

// List returns a filtered, paginated page of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	leads, total, err := s.repo.List(ctx, repository.ListParams{
		Search:     req.Search,
		LeadStatus: req.Status,
		Priority:   req.Priority,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	return transport.ToLeadListResponse(leads, total, page, pageSize), nil
}

// Update applies a human edit. Every changed field gets an old_data
// snapshot of its previous value, the score is recomputed, and the row's
// processed marker is cleared so the watcher schedules a re-analysis. The
// snapshot merge and the new values land in one atomic statement.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to fetch lead", err)
	}

	profile, delta := applyEdit(current, req)

	if !domain.ValidStageForStatus(profile.LeadStatus, profile.PipelineStage) {
		return transport.LeadResponse{}, apperr.Validation(
			fmt.Sprintf("pipeline stage %q is not valid for status %q", profile.PipelineStage, profile.LeadStatus))
	}

	if len(delta) == 0 {
		return transport.ToLeadResponse(current), nil
	}

	score := domain.ScoreWeighted(domain.DefaultScoreBase, profile.LastDealSizeUSD,
		profile.LeadStatus, profile.PipelineStage, profile.CRMActivityFlag)
	profile.LeadScore = score
	profile.HighPriorityFlag = domain.HighPriority(score)

	lead, err := s.repo.UpdateProfile(ctx, repository.UpdateProfileParams{
		ID:           id,
		Profile:      profile,
		OldDataDelta: delta,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err)
	}

	changed := make([]string, 0, len(delta))
	for field := range delta {
		changed = append(changed, field)
	}
	s.bus.Publish(ctx, events.LeadUpdated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		ChangedFields: changed,
		Source:        events.SourceHuman,
	})

	return transport.ToLeadResponse(lead), nil
}

// UpdateStatus moves a lead to a new status and stage pair.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	return s.Update(ctx, id, transport.UpdateLeadRequest{
		LeadStatus:    &req.LeadStatus,
		PipelineStage: &req.PipelineStage,
	})
}

// Analyze runs the AI pipeline for one lead: build the prompt, call the
// generation service, parse the labeled output, and store the result. A
// failed generation or unparseable output stores nothing and leaves any
// previously stored analysis in place.
func (s *Service) Analyze(ctx context.Context, id uuid.UUID) (transport.AnalyzeLeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.AnalyzeLeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.AnalyzeLeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to fetch lead", err)
	}

	if s.generator == nil {
		return transport.AnalyzeLeadResponse{}, apperr.Unavailable("lead analysis is not configured")
	}

	prompt := agent.BuildAnalysisPrompt(lead)

	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.log.ExternalServiceError("gemini", "generate_content", err)
		s.bus.Publish(ctx, events.LeadAnalysisFailed{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       id,
			ErrorCode:    "generation_failed",
			ErrorMessage: err.Error(),
		})
		return transport.AnalyzeLeadResponse{}, apperr.Unavailable("lead analysis generation failed")
	}

	analysis, ok := agent.ParseAnalysis(generated)
	if !ok {
		s.log.Warn("analysis output had no recognizable sections", "lead_id", id.String())
		s.bus.Publish(ctx, events.LeadAnalysisFailed{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       id,
			ErrorCode:    "unparseable_output",
			ErrorMessage: "generated text contains no summary or recommendation section",
		})
		return transport.AnalyzeLeadResponse{}, apperr.Unprocessable("generated analysis could not be parsed")
	}

	summary := analysis.Summary
	if lead.HighPriorityFlag {
		summary = HighPriorityPrefix + summary
	}
	recommendation := analysis.Recommendation()

	updated, err := s.repo.SaveAnalysis(ctx, id, summary, recommendation)
	if err != nil {
		return transport.AnalyzeLeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store analysis", err)
	}

	s.bus.Publish(ctx, events.LeadAnalysisCompleted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		Summary:   summary,
	})

	return transport.AnalyzeLeadResponse{
		ID:             updated.ID,
		Summary:        updated.Summary,
		Recommendation: updated.Recommendation,
		AIProcessed:    updated.AIProcessed,
	}, nil
}

// applyEdit merges the request's set fields into the current profile and
// returns the old_data delta for each field whose value actually changed.
// Audit dates use UTC RFC 3339 timestamps.
func applyEdit(current repository.Lead, req transport.UpdateLeadRequest) (repository.CreateParams, repository.OldData) {
	profile := repository.CreateParams{
		CompanyName:         current.CompanyName,
		Quarter:             current.Quarter,
		MarketCapUSD:        current.MarketCapUSD,
		AnnualSalesUSD:      current.AnnualSalesUSD,
		NumberOfCustomers:   current.NumberOfCustomers,
		PrimaryMarketRegion: current.PrimaryMarketRegion,
		SalesContactName:    current.SalesContactName,
		SalesContactEmail:   current.SalesContactEmail,
		DateOfLastContact:   current.DateOfLastContact,
		LeadStatus:          current.LeadStatus,
		PipelineStage:       current.PipelineStage,
		LastDealSizeUSD:     current.LastDealSizeUSD,
		LeadSource:          current.LeadSource,
		Notes:               current.Notes,
		CRMActivityFlag:     current.CRMActivityFlag,
		LeadScore:           current.LeadScore,
		HighPriorityFlag:    current.HighPriorityFlag,
	}

	delta := repository.OldData{}
	auditDate := time.Now().UTC().Format(time.RFC3339)
	snapshot := func(field string, oldValue interface{}) {
		delta[field] = repository.FieldChange{OldValue: oldValue, AuditDate: auditDate}
	}

	if req.CompanyName != nil && *req.CompanyName != current.CompanyName {
		snapshot("company_name", current.CompanyName)
		profile.CompanyName = *req.CompanyName
	}
	if req.Quarter != nil && *req.Quarter != current.Quarter {
		snapshot("quarter", current.Quarter)
		profile.Quarter = *req.Quarter
	}
	if req.MarketCapUSD != nil && *req.MarketCapUSD != current.MarketCapUSD {
		snapshot("market_cap_usd", current.MarketCapUSD)
		profile.MarketCapUSD = *req.MarketCapUSD
	}
	if req.AnnualSalesUSD != nil && *req.AnnualSalesUSD != current.AnnualSalesUSD {
		snapshot("annual_sales_usd", current.AnnualSalesUSD)
		profile.AnnualSalesUSD = *req.AnnualSalesUSD
	}
	if req.NumberOfCustomers != nil && *req.NumberOfCustomers != current.NumberOfCustomers {
		snapshot("number_of_customers", current.NumberOfCustomers)
		profile.NumberOfCustomers = *req.NumberOfCustomers
	}
	if req.PrimaryMarketRegion != nil && *req.PrimaryMarketRegion != current.PrimaryMarketRegion {
		snapshot("primary_market_region", current.PrimaryMarketRegion)
		profile.PrimaryMarketRegion = *req.PrimaryMarketRegion
	}
	if req.SalesContactName != nil && *req.SalesContactName != current.SalesContactName {
		snapshot("sales_contact_name", current.SalesContactName)
		profile.SalesContactName = *req.SalesContactName
	}
	if req.SalesContactEmail != nil && *req.SalesContactEmail != current.SalesContactEmail {
		snapshot("sales_contact_email", current.SalesContactEmail)
		profile.SalesContactEmail = *req.SalesContactEmail
	}
	if req.DateOfLastContact != nil && *req.DateOfLastContact != current.DateOfLastContact {
		snapshot("date_of_last_contact", current.DateOfLastContact)
		profile.DateOfLastContact = *req.DateOfLastContact
	}
	if req.LeadStatus != nil && *req.LeadStatus != current.LeadStatus {
		snapshot("lead_status", current.LeadStatus)
		profile.LeadStatus = *req.LeadStatus
	}
	if req.PipelineStage != nil && *req.PipelineStage != current.PipelineStage {
		snapshot("pipeline_stage", current.PipelineStage)
		profile.PipelineStage = *req.PipelineStage
	}
	if req.LastDealSizeUSD != nil && *req.LastDealSizeUSD != current.LastDealSizeUSD {
		snapshot("last_deal_size_usd", current.LastDealSizeUSD)
		profile.LastDealSizeUSD = *req.LastDealSizeUSD
	}
	if req.LeadSource != nil && *req.LeadSource != current.LeadSource {
		snapshot("lead_source", current.LeadSource)
		profile.LeadSource = *req.LeadSource
	}
	if req.Notes != nil && *req.Notes != current.Notes {
		snapshot("notes", current.Notes)
		profile.Notes = *req.Notes
	}
	if req.CRMActivityFlag != nil && *req.CRMActivityFlag != current.CRMActivityFlag {
		snapshot("crm_activity_flag", current.CRMActivityFlag)
		profile.CRMActivityFlag = *req.CRMActivityFlag
	}

	return profile, delta
}
