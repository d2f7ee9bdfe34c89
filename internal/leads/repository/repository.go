// Package repository provides pgx-based persistence for lead documents.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadportal_backend/internal/leads/domain"
)

// FieldChange is one old_data audit entry: the value a field held before a
// human edit and when the edit happened.
type FieldChange struct {
	OldValue  interface{} `json:"old_value"`
	AuditDate string      `json:"audit_date"`
}

// OldData maps field names to their pre-edit snapshots.
type OldData map[string]FieldChange

// Lead is a stored lead document.
type Lead struct {
	ID                  uuid.UUID
	CompanyName         string
	Quarter             string
	MarketCapUSD        int64
	AnnualSalesUSD      int64
	NumberOfCustomers   int
	PrimaryMarketRegion string
	SalesContactName    string
	SalesContactEmail   string
	DateOfLastContact   string
	LeadStatus          string
	PipelineStage       string
	LastDealSizeUSD     int64
	LeadSource          string
	Notes               string
	CRMActivityFlag     bool
	LeadScore           int
	HighPriorityFlag    bool
	OldData             OldData
	Summary             string
	Recommendation      string
	AIProcessed         bool
	ChangeSource        string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateParams contains the profile fields for a new lead.
type CreateParams struct {
	CompanyName         string
	Quarter             string
	MarketCapUSD        int64
	AnnualSalesUSD      int64
	NumberOfCustomers   int
	PrimaryMarketRegion string
	SalesContactName    string
	SalesContactEmail   string
	DateOfLastContact   string
	LeadStatus          string
	PipelineStage       string
	LastDealSizeUSD     int64
	LeadSource          string
	Notes               string
	CRMActivityFlag     bool
	LeadScore           int
	HighPriorityFlag    bool
}

// UpdateProfileParams carries a full replacement profile plus the old_data
// delta computed by the service from the previously stored values.
type UpdateProfileParams struct {
	ID           uuid.UUID
	Profile      CreateParams
	OldDataDelta OldData
}

// ListParams filters and paginates lead listings.
type ListParams struct {
	Search     string // case-insensitive company name substring
	LeadStatus string
	Priority   string // High, Medium, Low (score bands) or Closed
	Offset     int
	Limit      int
}

type repo struct {
	pool *pgxpool.Pool
}

// New creates a pgx-backed lead repository.
func New(pool *pgxpool.Pool) Repository {
	return &repo{pool: pool}
}

const leadColumns = `
	id, company_name, quarter, market_cap_usd, annual_sales_usd,
	number_of_customers, primary_market_region, sales_contact_name,
	sales_contact_email, date_of_last_contact, lead_status, pipeline_stage,
	last_deal_size_usd, lead_source, notes, crm_activity_flag, lead_score,
	high_priority_flag, old_data, summary, recommendation, ai_processed,
	change_source, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var oldData []byte
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.Quarter, &l.MarketCapUSD, &l.AnnualSalesUSD,
		&l.NumberOfCustomers, &l.PrimaryMarketRegion, &l.SalesContactName,
		&l.SalesContactEmail, &l.DateOfLastContact, &l.LeadStatus, &l.PipelineStage,
		&l.LastDealSizeUSD, &l.LeadSource, &l.Notes, &l.CRMActivityFlag, &l.LeadScore,
		&l.HighPriorityFlag, &oldData, &l.Summary, &l.Recommendation, &l.AIProcessed,
		&l.ChangeSource, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	if len(oldData) > 0 {
		if err := json.Unmarshal(oldData, &l.OldData); err != nil {
			return Lead{}, fmt.Errorf("decoding old_data for lead %s: %w", l.ID, err)
		}
	}
	return l, nil
}

func (r *repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			company_name, quarter, market_cap_usd, annual_sales_usd,
			number_of_customers, primary_market_region, sales_contact_name,
			sales_contact_email, date_of_last_contact, lead_status, pipeline_stage,
			last_deal_size_usd, lead_source, notes, crm_activity_flag, lead_score,
			high_priority_flag, old_data, ai_processed, change_source
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, '{}'::jsonb, FALSE, 'human')
		RETURNING `+leadColumns,
		params.CompanyName, params.Quarter, params.MarketCapUSD, params.AnnualSalesUSD,
		params.NumberOfCustomers, params.PrimaryMarketRegion, params.SalesContactName,
		params.SalesContactEmail, params.DateOfLastContact, params.LeadStatus, params.PipelineStage,
		params.LastDealSizeUSD, params.LeadSource, params.Notes, params.CRMActivityFlag, params.LeadScore,
		params.HighPriorityFlag,
	)
	return scanLead(row)
}

func (r *repo) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *repo) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	where, args := buildListFilter(params)

	var total int
	countQuery := `SELECT COUNT(*) FROM leads` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit < 1 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		leadColumns, where, limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, l)
	}
	return leads, total, rows.Err()
}

func buildListFilter(params ListParams) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		clauses = append(clauses, fmt.Sprintf("company_name ILIKE $%d", len(args)))
	}
	if params.LeadStatus != "" {
		args = append(args, params.LeadStatus)
		clauses = append(clauses, fmt.Sprintf("lead_status = $%d", len(args)))
	}
	openStatuses := fmt.Sprintf("lead_status NOT IN ('%s', '%s')", domain.StatusWon, domain.StatusLost)
	switch params.Priority {
	case domain.PriorityHigh:
		clauses = append(clauses, fmt.Sprintf("lead_score >= %d AND %s", domain.HighPriorityThreshold, openStatuses))
	case domain.PriorityMedium:
		clauses = append(clauses, fmt.Sprintf("lead_score >= %d AND lead_score < %d AND %s",
			domain.MediumPriorityThreshold, domain.HighPriorityThreshold, openStatuses))
	case domain.PriorityLow:
		clauses = append(clauses, fmt.Sprintf("lead_score < %d AND %s", domain.MediumPriorityThreshold, openStatuses))
	case "Closed":
		clauses = append(clauses, fmt.Sprintf("lead_status IN ('%s', '%s')", domain.StatusWon, domain.StatusLost))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *repo) UpdateProfile(ctx context.Context, params UpdateProfileParams) (Lead, error) {
	delta, err := json.Marshal(params.OldDataDelta)
	if err != nil {
		return Lead{}, err
	}

	p := params.Profile
	// Snapshot merge and value replacement happen in one statement so a
	// concurrent reader never sees new values without their audit entries.
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			company_name = $2, quarter = $3, market_cap_usd = $4, annual_sales_usd = $5,
			number_of_customers = $6, primary_market_region = $7, sales_contact_name = $8,
			sales_contact_email = $9, date_of_last_contact = $10, lead_status = $11,
			pipeline_stage = $12, last_deal_size_usd = $13, lead_source = $14, notes = $15,
			crm_activity_flag = $16, lead_score = $17, high_priority_flag = $18,
			old_data = old_data || $19::jsonb,
			ai_processed = FALSE,
			change_source = 'human',
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+leadColumns,
		params.ID,
		p.CompanyName, p.Quarter, p.MarketCapUSD, p.AnnualSalesUSD,
		p.NumberOfCustomers, p.PrimaryMarketRegion, p.SalesContactName,
		p.SalesContactEmail, p.DateOfLastContact, p.LeadStatus,
		p.PipelineStage, p.LastDealSizeUSD, p.LeadSource, p.Notes,
		p.CRMActivityFlag, p.LeadScore, p.HighPriorityFlag,
		delta,
	)
	return scanLead(row)
}

func (r *repo) SaveAnalysis(ctx context.Context, id uuid.UUID, summary, recommendation string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			summary = $2,
			recommendation = $3,
			ai_processed = TRUE,
			change_source = 'system',
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, summary, recommendation,
	)
	return scanLead(row)
}
