// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadportal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Change sources recorded on every lead mutation. The watcher uses the
// source to tell human edits apart from the analysis pipeline's own writes.
const (
	SourceHuman  = "human"
	SourceSystem = "system"
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created via the form API.
type LeadCreated struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	CompanyName string    `json:"companyName"`
	LeadStatus  string    `json:"leadStatus"`
	LeadScore   int       `json:"leadScore"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadUpdated is published when a human edit changes one or more lead fields.
// ChangedFields lists the fields that received an old_data snapshot entry.
type LeadUpdated struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	ChangedFields []string  `json:"changedFields"`
	Source        string    `json:"source"`
}

func (e LeadUpdated) EventName() string { return "leads.lead.updated" }

// =============================================================================
// AI Analysis Domain Events
// =============================================================================

// LeadAnalysisCompleted is published when the analysis pipeline stores a new
// summary and recommendation for a lead.
type LeadAnalysisCompleted struct {
	BaseEvent
	LeadID  uuid.UUID `json:"leadId"`
	Summary string    `json:"summary"`
}

func (e LeadAnalysisCompleted) EventName() string { return "ai.lead_analysis.completed" }

// LeadAnalysisFailed is published when analysis cannot be completed.
type LeadAnalysisFailed struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	ErrorCode    string    `json:"errorCode"` // "generation_failed", "unparseable_output"
	ErrorMessage string    `json:"errorMessage"`
}

func (e LeadAnalysisFailed) EventName() string { return "ai.lead_analysis.failed" }
