package transport

import (
	"time"

	"github.com/google/uuid"

	"leadportal_backend/internal/leads/repository"
)

// Request DTOs
type CreateLeadRequest struct {
	CompanyName         string `json:"companyName" validate:"required,min=1,max=200"`
	Quarter             string `json:"quarter" validate:"required,min=1,max=10"`
	MarketCapUSD        int64  `json:"marketCapUsd" validate:"min=0"`
	AnnualSalesUSD      int64  `json:"annualSalesUsd" validate:"min=0"`
	NumberOfCustomers   int    `json:"numberOfCustomers" validate:"min=0"`
	PrimaryMarketRegion string `json:"primaryMarketRegion" validate:"required,oneof='North America' Europe 'Southeast Asia' 'South America' 'Middle East' Africa"`
	SalesContactName    string `json:"salesContactName" validate:"required,min=1,max=100"`
	SalesContactEmail   string `json:"salesContactEmail" validate:"required,email"`
	DateOfLastContact   string `json:"dateOfLastContact" validate:"required,datetime=2006-01-02"`
	LeadStatus          string `json:"leadStatus" validate:"required,oneof=Prospect Qualified Negotiation Won Lost"`
	PipelineStage       string `json:"pipelineStage" validate:"required,oneof=Discovery 'Proposal Sent' 'Contract Sent' Negotiation 'Closed Won' 'Closed Lost'"`
	LastDealSizeUSD     int64  `json:"lastDealSizeUsd" validate:"min=0"`
	LeadSource          string `json:"leadSource" validate:"required,oneof=Referral 'Cold Call' 'Inbound Web Lead' 'Trade Show' 'Partner Referral' 'Ad Campaign'"`
	Notes               string `json:"notes,omitempty" validate:"max=2000"`
	CRMActivityFlag     bool   `json:"crmActivityFlag"`
	ScoreBase           *int   `json:"scoreBase,omitempty" validate:"omitempty,min=20,max=50"`
}

type UpdateLeadRequest struct {
	CompanyName         *string `json:"companyName,omitempty" validate:"omitempty,min=1,max=200"`
	Quarter             *string `json:"quarter,omitempty" validate:"omitempty,min=1,max=10"`
	MarketCapUSD        *int64  `json:"marketCapUsd,omitempty" validate:"omitempty,min=0"`
	AnnualSalesUSD      *int64  `json:"annualSalesUsd,omitempty" validate:"omitempty,min=0"`
	NumberOfCustomers   *int    `json:"numberOfCustomers,omitempty" validate:"omitempty,min=0"`
	PrimaryMarketRegion *string `json:"primaryMarketRegion,omitempty" validate:"omitempty,oneof='North America' Europe 'Southeast Asia' 'South America' 'Middle East' Africa"`
	SalesContactName    *string `json:"salesContactName,omitempty" validate:"omitempty,min=1,max=100"`
	SalesContactEmail   *string `json:"salesContactEmail,omitempty" validate:"omitempty,email"`
	DateOfLastContact   *string `json:"dateOfLastContact,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LeadStatus          *string `json:"leadStatus,omitempty" validate:"omitempty,oneof=Prospect Qualified Negotiation Won Lost"`
	PipelineStage       *string `json:"pipelineStage,omitempty" validate:"omitempty,oneof=Discovery 'Proposal Sent' 'Contract Sent' Negotiation 'Closed Won' 'Closed Lost'"`
	LastDealSizeUSD     *int64  `json:"lastDealSizeUsd,omitempty" validate:"omitempty,min=0"`
	LeadSource          *string `json:"leadSource,omitempty" validate:"omitempty,oneof=Referral 'Cold Call' 'Inbound Web Lead' 'Trade Show' 'Partner Referral' 'Ad Campaign'"`
	Notes               *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CRMActivityFlag     *bool   `json:"crmActivityFlag,omitempty"`
}

type UpdateLeadStatusRequest struct {
	LeadStatus    string `json:"leadStatus" validate:"required,oneof=Prospect Qualified Negotiation Won Lost"`
	PipelineStage string `json:"pipelineStage" validate:"required,oneof=Discovery 'Proposal Sent' 'Contract Sent' Negotiation 'Closed Won' 'Closed Lost'"`
}

type ListLeadsRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Status   string `form:"status" validate:"omitempty,oneof=Prospect Qualified Negotiation Won Lost"`
	Priority string `form:"priority" validate:"omitempty,oneof=High Medium Low Closed"`
	Page     int    `form:"page" validate:"min=1"`
	PageSize int    `form:"pageSize" validate:"min=1,max=100"`
}

// Response DTOs
type FieldChangeResponse struct {
	OldValue  interface{} `json:"oldValue"`
	AuditDate string      `json:"auditDate"`
}

type LeadResponse struct {
	ID                  uuid.UUID                      `json:"id"`
	CompanyName         string                         `json:"companyName"`
	Quarter             string                         `json:"quarter"`
	MarketCapUSD        int64                          `json:"marketCapUsd"`
	AnnualSalesUSD      int64                          `json:"annualSalesUsd"`
	NumberOfCustomers   int                            `json:"numberOfCustomers"`
	PrimaryMarketRegion string                         `json:"primaryMarketRegion"`
	SalesContactName    string                         `json:"salesContactName"`
	SalesContactEmail   string                         `json:"salesContactEmail"`
	DateOfLastContact   string                         `json:"dateOfLastContact"`
	LeadStatus          string                         `json:"leadStatus"`
	PipelineStage       string                         `json:"pipelineStage"`
	LastDealSizeUSD     int64                          `json:"lastDealSizeUsd"`
	LeadSource          string                         `json:"leadSource"`
	Notes               string                         `json:"notes,omitempty"`
	CRMActivityFlag     bool                           `json:"crmActivityFlag"`
	LeadScore           int                            `json:"leadScore"`
	HighPriorityFlag    bool                           `json:"highPriorityFlag"`
	OldData             map[string]FieldChangeResponse `json:"oldData"`
	Summary             string                         `json:"summary,omitempty"`
	Recommendation      string                         `json:"recommendation,omitempty"`
	AIProcessed         bool                           `json:"aiProcessed"`
	ChangeSource        string                         `json:"changeSource"`
	CreatedAt           time.Time                      `json:"createdAt"`
	UpdatedAt           time.Time                      `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type AnalyzeLeadResponse struct {
	ID             uuid.UUID `json:"id"`
	Summary        string    `json:"summary"`
	Recommendation string    `json:"recommendation"`
	AIProcessed    bool      `json:"aiProcessed"`
}

// ToLeadResponse maps a stored lead to its API representation.
func ToLeadResponse(lead repository.Lead) LeadResponse {
	oldData := make(map[string]FieldChangeResponse, len(lead.OldData))
	for field, change := range lead.OldData {
		oldData[field] = FieldChangeResponse{
			OldValue:  change.OldValue,
			AuditDate: change.AuditDate,
		}
	}

	return LeadResponse{
		ID:                  lead.ID,
		CompanyName:         lead.CompanyName,
		Quarter:             lead.Quarter,
		MarketCapUSD:        lead.MarketCapUSD,
		AnnualSalesUSD:      lead.AnnualSalesUSD,
		NumberOfCustomers:   lead.NumberOfCustomers,
		PrimaryMarketRegion: lead.PrimaryMarketRegion,
		SalesContactName:    lead.SalesContactName,
		SalesContactEmail:   lead.SalesContactEmail,
		DateOfLastContact:   lead.DateOfLastContact,
		LeadStatus:          lead.LeadStatus,
		PipelineStage:       lead.PipelineStage,
		LastDealSizeUSD:     lead.LastDealSizeUSD,
		LeadSource:          lead.LeadSource,
		Notes:               lead.Notes,
		CRMActivityFlag:     lead.CRMActivityFlag,
		LeadScore:           lead.LeadScore,
		HighPriorityFlag:    lead.HighPriorityFlag,
		OldData:             oldData,
		Summary:             lead.Summary,
		Recommendation:      lead.Recommendation,
		AIProcessed:         lead.AIProcessed,
		ChangeSource:        lead.ChangeSource,
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
}

// ToLeadListResponse maps a page of leads plus the total match count.
func ToLeadListResponse(leads []repository.Lead, total, page, pageSize int) LeadListResponse {
	items := make([]LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, ToLeadResponse(lead))
	}
	totalPages := (total + pageSize - 1) / pageSize
	return LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
