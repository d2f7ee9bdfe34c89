package agent

import (
	"strings"
	"testing"

	"leadportal_backend/internal/leads/repository"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	lead := repository.Lead{
		CompanyName:         "Acme Analytics",
		PrimaryMarketRegion: "North America",
		MarketCapUSD:        4500000000,
		AnnualSalesUSD:      750000000,
		LeadStatus:          "Negotiation",
		PipelineStage:       "Contract Sent",
		LastDealSizeUSD:     1234567,
		SalesContactName:    "Jordan Lee",
		SalesContactEmail:   "jordan.lee@acme.example",
		LeadSource:          "Partner Referral",
		DateOfLastContact:   "2026-08-12",
		CRMActivityFlag:     true,
		LeadScore:           85,
		HighPriorityFlag:    true,
		Notes:               "Wants multi-year pricing.",
		OldData: repository.OldData{
			"lead_status": {OldValue: "Qualified", AuditDate: "2026-08-01T10:00:00Z"},
		},
	}

	prompt := BuildAnalysisPrompt(lead)

	for _, want := range []string{
		"Summary:",
		"Recommendation:",
		"Company: Acme Analytics",
		"Deal Size: $1,234,567",
		"Market Cap: $4,500,000,000",
		"CRM Activity: Active",
		"Lead Score: 85/100",
		"Priority Level: HIGH PRIORITY",
		"Notes: Wants multi-year pricing.",
		"lead_status: was 'Qualified' (as of 2026-08-01T10:00:00Z)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPromptDefaults(t *testing.T) {
	prompt := BuildAnalysisPrompt(repository.Lead{CompanyName: "Bare Co"})

	for _, want := range []string{
		"No prior changes recorded - this is the initial lead record.",
		"CRM Activity: Inactive",
		"Priority Level: Standard",
		"Notes: None",
		"Contact: N/A (N/A)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFormatOldData(t *testing.T) {
	oldData := repository.OldData{
		"last_deal_size_usd": {OldValue: float64(500000), AuditDate: "2026-07-15T09:30:00Z"},
		"pipeline_stage":     {OldValue: "Discovery", AuditDate: "2026-07-20T14:00:00Z"},
		"notes":              {OldValue: nil, AuditDate: "2026-07-01T08:00:00Z"},
	}

	got := FormatOldData(oldData)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), got)
	}

	// Sorted by field name, usd fields formatted as currency, nil as N/A.
	if !strings.Contains(lines[0], "last_deal_size_usd: was '$500,000'") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "notes: was 'N/A'") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "pipeline_stage: was 'Discovery' (as of 2026-07-20T14:00:00Z)") {
		t.Errorf("line 2 = %q", lines[2])
	}
}
