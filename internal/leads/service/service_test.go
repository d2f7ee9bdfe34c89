package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/logger"
)

type fakeRepo struct {
	leads        map[uuid.UUID]repository.Lead
	analysisSave int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: map[uuid.UUID]repository.Lead{}}
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Lead, error) {
	now := time.Now()
	lead := repository.Lead{
		ID:                  uuid.New(),
		CompanyName:         params.CompanyName,
		Quarter:             params.Quarter,
		MarketCapUSD:        params.MarketCapUSD,
		AnnualSalesUSD:      params.AnnualSalesUSD,
		NumberOfCustomers:   params.NumberOfCustomers,
		PrimaryMarketRegion: params.PrimaryMarketRegion,
		SalesContactName:    params.SalesContactName,
		SalesContactEmail:   params.SalesContactEmail,
		DateOfLastContact:   params.DateOfLastContact,
		LeadStatus:          params.LeadStatus,
		PipelineStage:       params.PipelineStage,
		LastDealSizeUSD:     params.LastDealSizeUSD,
		LeadSource:          params.LeadSource,
		Notes:               params.Notes,
		CRMActivityFlag:     params.CRMActivityFlag,
		LeadScore:           params.LeadScore,
		HighPriorityFlag:    params.HighPriorityFlag,
		OldData:             repository.OldData{},
		AIProcessed:         false,
		ChangeSource:        "human",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]repository.Lead, int, error) {
	var out []repository.Lead
	for _, lead := range f.leads {
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, params repository.UpdateProfileParams) (repository.Lead, error) {
	lead, ok := f.leads[params.ID]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	p := params.Profile
	lead.CompanyName = p.CompanyName
	lead.Quarter = p.Quarter
	lead.MarketCapUSD = p.MarketCapUSD
	lead.AnnualSalesUSD = p.AnnualSalesUSD
	lead.NumberOfCustomers = p.NumberOfCustomers
	lead.PrimaryMarketRegion = p.PrimaryMarketRegion
	lead.SalesContactName = p.SalesContactName
	lead.SalesContactEmail = p.SalesContactEmail
	lead.DateOfLastContact = p.DateOfLastContact
	lead.LeadStatus = p.LeadStatus
	lead.PipelineStage = p.PipelineStage
	lead.LastDealSizeUSD = p.LastDealSizeUSD
	lead.LeadSource = p.LeadSource
	lead.Notes = p.Notes
	lead.CRMActivityFlag = p.CRMActivityFlag
	lead.LeadScore = p.LeadScore
	lead.HighPriorityFlag = p.HighPriorityFlag
	for field, change := range params.OldDataDelta {
		lead.OldData[field] = change
	}
	lead.AIProcessed = false
	lead.ChangeSource = "human"
	lead.UpdatedAt = time.Now()
	f.leads[params.ID] = lead
	return lead, nil
}

func (f *fakeRepo) SaveAnalysis(_ context.Context, id uuid.UUID, summary, recommendation string) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Summary = summary
	lead.Recommendation = recommendation
	lead.AIProcessed = true
	lead.ChangeSource = "system"
	lead.UpdatedAt = time.Now()
	f.leads[id] = lead
	f.analysisSave++
	return lead, nil
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	var names []string
	for _, e := range b.published {
		names = append(names, e.EventName())
	}
	return names
}

func newTestService(repo repository.Repository, gen *fakeGenerator) (*Service, *recordingBus) {
	bus := &recordingBus{}
	svc := New(repo, gen, bus, logger.New("development"))
	return svc, bus
}

func baseCreateRequest() transport.CreateLeadRequest {
	return transport.CreateLeadRequest{
		CompanyName:         "Acme Analytics",
		Quarter:             "Q3 2026",
		MarketCapUSD:        4500000000,
		AnnualSalesUSD:      750000000,
		NumberOfCustomers:   1200,
		PrimaryMarketRegion: "North America",
		SalesContactName:    "Jordan Lee",
		SalesContactEmail:   "jordan.lee@acme.example",
		DateOfLastContact:   "2026-08-12",
		LeadStatus:          "Negotiation",
		PipelineStage:       "Contract Sent",
		LastDealSizeUSD:     5000000,
		LeadSource:          "Partner Referral",
		CRMActivityFlag:     true,
	}
}

func TestCreateComputesScore(t *testing.T) {
	svc, bus := newTestService(newFakeRepo(), &fakeGenerator{})

	base := 30
	req := baseCreateRequest()
	req.ScoreBase = &base

	lead, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// base 30 + deal cap 30 + status 15 + stage 15 + crm 10
	if lead.LeadScore != 100 {
		t.Errorf("LeadScore = %d, want 100", lead.LeadScore)
	}
	if !lead.HighPriorityFlag {
		t.Error("HighPriorityFlag = false, want true")
	}
	if lead.AIProcessed {
		t.Error("AIProcessed = true on a fresh lead, want false")
	}
	if lead.ChangeSource != events.SourceHuman {
		t.Errorf("ChangeSource = %q, want %q", lead.ChangeSource, events.SourceHuman)
	}
	if got := bus.names(); len(got) != 1 || got[0] != "leads.lead.created" {
		t.Errorf("published events = %v", got)
	}
}

func TestCreateRejectsStageStatusMismatch(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeGenerator{})

	req := baseCreateRequest()
	req.LeadStatus = "Won"
	req.PipelineStage = "Discovery"

	_, err := svc.Create(context.Background(), req)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Create() error = %v, want validation kind", err)
	}
}

func TestUpdateSnapshotsChangedFields(t *testing.T) {
	repo := newFakeRepo()
	svc, bus := newTestService(repo, &fakeGenerator{})

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newDeal := int64(2000000)
	newNotes := "Asked for revised terms."
	updated, err := svc.Update(context.Background(), created.ID, transport.UpdateLeadRequest{
		LastDealSizeUSD: &newDeal,
		Notes:           &newNotes,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.LastDealSizeUSD != newDeal {
		t.Errorf("LastDealSizeUSD = %d, want %d", updated.LastDealSizeUSD, newDeal)
	}
	change, ok := updated.OldData["last_deal_size_usd"]
	if !ok {
		t.Fatalf("old_data missing last_deal_size_usd: %v", updated.OldData)
	}
	if change.OldValue != int64(5000000) {
		t.Errorf("old value = %v, want 5000000", change.OldValue)
	}
	if change.AuditDate == "" {
		t.Error("audit date is empty")
	}
	if _, ok := updated.OldData["notes"]; !ok {
		t.Error("old_data missing notes snapshot")
	}
	if _, ok := updated.OldData["company_name"]; ok {
		t.Error("old_data has snapshot for unchanged company_name")
	}

	if updated.AIProcessed {
		t.Error("AIProcessed not cleared by human edit")
	}
	if updated.ChangeSource != events.SourceHuman {
		t.Errorf("ChangeSource = %q, want human", updated.ChangeSource)
	}

	// base 35 + deal 12 + status 15 + stage 15 + crm 10
	if updated.LeadScore != 87 {
		t.Errorf("LeadScore = %d, want 87", updated.LeadScore)
	}

	names := bus.names()
	if len(names) != 2 || names[1] != "leads.lead.updated" {
		t.Fatalf("published events = %v", names)
	}
	ev := bus.published[1].(events.LeadUpdated)
	if ev.Source != events.SourceHuman {
		t.Errorf("event source = %q, want human", ev.Source)
	}
	if len(ev.ChangedFields) != 2 {
		t.Errorf("ChangedFields = %v, want 2 entries", ev.ChangedFields)
	}
}

func TestUpdateNoChangesIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	svc, bus := newTestService(repo, &fakeGenerator{})

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sameNotes := created.Notes
	updated, err := svc.Update(context.Background(), created.ID, transport.UpdateLeadRequest{Notes: &sameNotes})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated.OldData) != 0 {
		t.Errorf("old_data = %v, want empty", updated.OldData)
	}
	if got := bus.names(); len(got) != 1 {
		t.Errorf("published events = %v, want only the create event", got)
	}
}

func TestUpdateStatusValidatesPair(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeGenerator{})

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), created.ID, transport.UpdateLeadStatusRequest{
		LeadStatus:    "Won",
		PipelineStage: "Discovery",
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("UpdateStatus() error = %v, want validation kind", err)
	}

	won, err := svc.UpdateStatus(context.Background(), created.ID, transport.UpdateLeadStatusRequest{
		LeadStatus:    "Won",
		PipelineStage: "Closed Won",
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if won.LeadScore != 0 {
		t.Errorf("closed lead score = %d, want 0", won.LeadScore)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeGenerator{})

	notes := "x"
	_, err := svc.Update(context.Background(), uuid.New(), transport.UpdateLeadRequest{Notes: &notes})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Update() error = %v, want not found kind", err)
	}
}

func TestAnalyzeStoresParsedResult(t *testing.T) {
	repo := newFakeRepo()
	gen := &fakeGenerator{response: `Summary: Strong lead with closing momentum.

Recommendation:
1. Schedule a contract review call.
2. Confirm the executive sponsor.`}
	svc, bus := newTestService(repo, gen)

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	result, err := svc.Analyze(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !strings.HasPrefix(result.Summary, HighPriorityPrefix) {
		t.Errorf("Summary = %q, want high-priority prefix", result.Summary)
	}
	if !strings.Contains(result.Summary, "Strong lead with closing momentum.") {
		t.Errorf("Summary = %q", result.Summary)
	}
	if result.Recommendation != "- Schedule a contract review call.\n- Confirm the executive sponsor." {
		t.Errorf("Recommendation = %q", result.Recommendation)
	}
	if !result.AIProcessed {
		t.Error("AIProcessed = false after analysis")
	}

	stored := repo.leads[created.ID]
	if stored.ChangeSource != events.SourceSystem {
		t.Errorf("ChangeSource = %q, want system", stored.ChangeSource)
	}
	if repo.analysisSave != 1 {
		t.Errorf("analysis saves = %d, want 1", repo.analysisSave)
	}

	names := bus.names()
	if names[len(names)-1] != "ai.lead_analysis.completed" {
		t.Errorf("published events = %v", names)
	}
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	repo := newFakeRepo()
	gen := &fakeGenerator{err: errors.New("upstream timeout")}
	svc, bus := newTestService(repo, gen)

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Analyze(context.Background(), created.ID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("Analyze() error = %v, want unavailable kind", err)
	}
	if repo.analysisSave != 0 {
		t.Errorf("analysis saves = %d, want 0", repo.analysisSave)
	}

	names := bus.names()
	last := bus.published[len(bus.published)-1].(events.LeadAnalysisFailed)
	if names[len(names)-1] != "ai.lead_analysis.failed" || last.ErrorCode != "generation_failed" {
		t.Errorf("last event = %v code = %q", names[len(names)-1], last.ErrorCode)
	}
}

func TestAnalyzeUnparseableOutputIsSoftFailure(t *testing.T) {
	repo := newFakeRepo()
	gen := &fakeGenerator{response: "rambling text with no labeled sections"}
	svc, bus := newTestService(repo, gen)

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Analyze(context.Background(), created.ID)
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("Analyze() error = %v, want unprocessable kind", err)
	}
	if repo.analysisSave != 0 {
		t.Errorf("analysis saves = %d, want 0", repo.analysisSave)
	}
	stored := repo.leads[created.ID]
	if stored.AIProcessed {
		t.Error("AIProcessed raised despite parse failure")
	}

	last := bus.published[len(bus.published)-1].(events.LeadAnalysisFailed)
	if last.ErrorCode != "unparseable_output" {
		t.Errorf("ErrorCode = %q, want unparseable_output", last.ErrorCode)
	}
}

// TestEditThenAnalyzeLifecycle walks the full loop: a human edit clears the
// processed marker and snapshots old values, one analysis then stores a
// single result, raises the marker and records the system source so the
// watcher will not schedule it again.
func TestEditThenAnalyzeLifecycle(t *testing.T) {
	repo := newFakeRepo()
	gen := &fakeGenerator{response: "Summary: Updated lead.\nRecommendation: 1. Follow up."}
	svc, _ := newTestService(repo, gen)

	created, err := svc.Create(context.Background(), baseCreateRequest())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newDeal := int64(1000000)
	if _, err := svc.Update(context.Background(), created.ID, transport.UpdateLeadRequest{LastDealSizeUSD: &newDeal}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	before := repo.leads[created.ID]
	if before.AIProcessed || before.ChangeSource != events.SourceHuman {
		t.Fatalf("after edit: processed=%v source=%q, want false/human", before.AIProcessed, before.ChangeSource)
	}

	if _, err := svc.Analyze(context.Background(), created.ID); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	after := repo.leads[created.ID]
	if !after.AIProcessed || after.ChangeSource != events.SourceSystem {
		t.Fatalf("after analysis: processed=%v source=%q, want true/system", after.AIProcessed, after.ChangeSource)
	}
	if gen.calls != 1 || repo.analysisSave != 1 {
		t.Errorf("generator calls = %d saves = %d, want 1 and 1", gen.calls, repo.analysisSave)
	}
	if after.Summary == "" || after.Recommendation == "" {
		t.Error("analysis fields not stored")
	}
	if len(after.OldData) != 1 {
		t.Errorf("old_data = %v, want single snapshot", after.OldData)
	}
}
