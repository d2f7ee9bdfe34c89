package agent

import (
	"fmt"
	"sort"
	"strings"

	"leadportal_backend/internal/leads/repository"
)

// BuildAnalysisPrompt renders the full instruction for the generation
// service: strategist framing, output format contract, the change history
// narrative, and the current lead profile.
func BuildAnalysisPrompt(lead repository.Lead) string {
	var b strings.Builder

	b.WriteString(`You are an expert enterprise sales strategist with 15+ years of experience in B2B sales and account management. Your expertise includes lead qualification, pipeline management, and strategic account development.

TASK: Analyze the following sales lead data and provide a concise executive summary followed by actionable recommendations.

FORMAT REQUIREMENTS:
- Use plain text only (no markdown, bold, or italic formatting)
- Format all currency values as USD with dollar signs and commas (e.g., $1,234,567)
- Follow this exact structure:

Summary: [2-3 sentences describing the current lead state and key changes since last update]

Recommendation: [4-5 specific, actionable next steps as a numbered list]

LEAD CHANGE HISTORY:
`)
	b.WriteString(FormatOldData(lead.OldData))
	b.WriteString("\n\nCURRENT LEAD PROFILE:\n")

	crmActivity := "Inactive"
	if lead.CRMActivityFlag {
		crmActivity = "Active"
	}
	priority := "Standard"
	if lead.HighPriorityFlag {
		priority = "HIGH PRIORITY"
	}
	notes := lead.Notes
	if notes == "" {
		notes = "None"
	}

	fmt.Fprintf(&b, "Company: %s\n", orNA(lead.CompanyName))
	fmt.Fprintf(&b, "Market Region: %s\n", orNA(lead.PrimaryMarketRegion))
	fmt.Fprintf(&b, "Market Cap: %s\n", FormatUSD(lead.MarketCapUSD))
	fmt.Fprintf(&b, "Annual Revenue: %s\n", FormatUSD(lead.AnnualSalesUSD))
	fmt.Fprintf(&b, "Lead Status: %s\n", orNA(lead.LeadStatus))
	fmt.Fprintf(&b, "Pipeline Stage: %s\n", orNA(lead.PipelineStage))
	fmt.Fprintf(&b, "Deal Size: %s\n", FormatUSD(lead.LastDealSizeUSD))
	fmt.Fprintf(&b, "Contact: %s (%s)\n", orNA(lead.SalesContactName), orNA(lead.SalesContactEmail))
	fmt.Fprintf(&b, "Lead Source: %s\n", orNA(lead.LeadSource))
	fmt.Fprintf(&b, "Last Contact Date: %s\n", orNA(lead.DateOfLastContact))
	fmt.Fprintf(&b, "CRM Activity: %s\n", crmActivity)
	fmt.Fprintf(&b, "Lead Score: %d/100\n", lead.LeadScore)
	fmt.Fprintf(&b, "Priority Level: %s\n", priority)
	fmt.Fprintf(&b, "Notes: %s\n", notes)

	b.WriteString(`
ANALYSIS INSTRUCTIONS:
1. In the summary, focus on the lead's current position in the sales cycle and any significant changes
2. For recommendations, prioritize immediate actions that will advance this lead through the pipeline
3. Consider the lead's market position, deal size potential, current engagement level and notes
4. Make recommendations specific and time-bound where possible

Generate your response now:
`)

	return b.String()
}

// FormatOldData renders the audit trail as a human-readable change
// narrative for the prompt. Fields are sorted for stable output.
func FormatOldData(oldData repository.OldData) string {
	if len(oldData) == 0 {
		return "No prior changes recorded - this is the initial lead record."
	}

	fields := make([]string, 0, len(oldData))
	for field := range oldData {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		change := oldData[field]
		oldValue := change.OldValue
		if oldValue == nil || oldValue == "" {
			oldValue = "N/A"
		}
		if strings.HasSuffix(field, "_usd") {
			oldValue = FormatUSD(oldValue)
		}
		lines = append(lines, fmt.Sprintf("- %s: was '%v' (as of %s)", field, oldValue, change.AuditDate))
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
