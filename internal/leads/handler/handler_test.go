package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadportal_backend/internal/events"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/internal/leads/service"
	"leadportal_backend/internal/leads/transport"
	"leadportal_backend/platform/logger"
	"leadportal_backend/platform/validator"
)

type stubRepo struct {
	leads map[uuid.UUID]repository.Lead
}

func (s *stubRepo) Create(_ context.Context, p repository.CreateParams) (repository.Lead, error) {
	lead := repository.Lead{
		ID:            uuid.New(),
		CompanyName:   p.CompanyName,
		LeadStatus:    p.LeadStatus,
		PipelineStage: p.PipelineStage,
		LeadScore:     p.LeadScore,
		OldData:       repository.OldData{},
		ChangeSource:  "human",
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.leads[lead.ID] = lead
	return lead, nil
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := s.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (s *stubRepo) List(_ context.Context, _ repository.ListParams) ([]repository.Lead, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) UpdateProfile(_ context.Context, p repository.UpdateProfileParams) (repository.Lead, error) {
	return s.GetByID(context.Background(), p.ID)
}

func (s *stubRepo) SaveAnalysis(_ context.Context, id uuid.UUID, _, _ string) (repository.Lead, error) {
	return s.GetByID(context.Background(), id)
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New("development")
	repo := &stubRepo{leads: map[uuid.UUID]repository.Lead{}}
	svc := service.New(repo, nil, events.NewInMemoryBus(log), log)
	h := New(svc, validator.New())

	engine := gin.New()
	noLimit := func(c *gin.Context) { c.Next() }
	h.RegisterRoutes(engine.Group("/api/v1/leads"), noLimit)
	return engine, repo
}

func validCreateBody() string {
	return `{
		"companyName": "Acme Analytics",
		"quarter": "Q3 2026",
		"marketCapUsd": 4500000000,
		"annualSalesUsd": 750000000,
		"numberOfCustomers": 1200,
		"primaryMarketRegion": "North America",
		"salesContactName": "Jordan Lee",
		"salesContactEmail": "jordan.lee@acme.example",
		"dateOfLastContact": "2026-08-12",
		"leadStatus": "Negotiation",
		"pipelineStage": "Contract Sent",
		"lastDealSizeUsd": 1234567,
		"leadSource": "Partner Referral",
		"crmActivityFlag": true
	}`
}

func TestCreateLeadEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(validCreateBody()))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp transport.LeadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.CompanyName != "Acme Analytics" {
		t.Errorf("CompanyName = %q", resp.CompanyName)
	}
	if resp.ID == uuid.Nil {
		t.Error("response has zero lead id")
	}
}

func TestCreateLeadValidation(t *testing.T) {
	engine, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"unknown status", strings.Replace(validCreateBody(), "Negotiation", "Maybe", 1)},
		{"bad email", strings.Replace(validCreateBody(), "jordan.lee@acme.example", "not-an-email", 1)},
		{"missing company", strings.Replace(validCreateBody(), "Acme Analytics", "", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetLeadNotFound(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads/"+uuid.NewString(), nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeWithoutGenerator(t *testing.T) {
	engine, repo := newTestRouter(t)

	lead := repository.Lead{ID: uuid.New(), CompanyName: "Bare Co", OldData: repository.OldData{}}
	repo.leads[lead.ID] = lead

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/"+lead.ID.String()+"/analyze", nil)
	engine.ServeHTTP(rec, req)

	// No generation client configured, so analysis is unavailable.
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502: %s", rec.Code, rec.Body.String())
	}
}
