package repository

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"leadportal_backend/internal/leads/domain"
)

type stubRow struct {
	id      uuid.UUID
	oldData []byte
}

func (r stubRow) Scan(dest ...any) error {
	for _, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.id
		case *[]byte:
			*p = r.oldData
		}
	}
	return nil
}

func TestScanLeadOldData(t *testing.T) {
	id := uuid.New()

	t.Run("valid document decodes", func(t *testing.T) {
		row := stubRow{id: id, oldData: []byte(`{"notes":{"old_value":"met at expo","audit_date":"2026-08-01T09:00:00Z"}}`)}
		lead, err := scanLead(row)
		if err != nil {
			t.Fatalf("scanLead() error = %v", err)
		}
		change, ok := lead.OldData["notes"]
		if !ok {
			t.Fatal("old_data missing notes entry")
		}
		if change.OldValue != "met at expo" {
			t.Errorf("OldValue = %v", change.OldValue)
		}
	})

	t.Run("corrupt document surfaces an error", func(t *testing.T) {
		row := stubRow{id: id, oldData: []byte(`{not json`)}
		if _, err := scanLead(row); err == nil {
			t.Fatal("scanLead() error = nil, want decode error")
		}
	})
}

func TestBuildListFilterPriorityBands(t *testing.T) {
	tests := []struct {
		priority string
		want     []string
	}{
		{domain.PriorityHigh, []string{"lead_score >= 80", "NOT IN ('Won', 'Lost')"}},
		{domain.PriorityMedium, []string{"lead_score >= 50", "lead_score < 80", "NOT IN ('Won', 'Lost')"}},
		{domain.PriorityLow, []string{"lead_score < 50", "NOT IN ('Won', 'Lost')"}},
		{"Closed", []string{"lead_status IN ('Won', 'Lost')"}},
	}

	for _, tt := range tests {
		t.Run(tt.priority, func(t *testing.T) {
			where, args := buildListFilter(ListParams{Priority: tt.priority})
			if len(args) != 0 {
				t.Errorf("args = %v, want none", args)
			}
			for _, fragment := range tt.want {
				if !strings.Contains(where, fragment) {
					t.Errorf("filter %q missing %q", where, fragment)
				}
			}
		})
	}
}

func TestBuildListFilterSearchAndStatus(t *testing.T) {
	where, args := buildListFilter(ListParams{Search: "acme", LeadStatus: domain.StatusQualified})

	if !strings.Contains(where, "company_name ILIKE $1") {
		t.Errorf("filter %q missing search clause", where)
	}
	if !strings.Contains(where, "lead_status = $2") {
		t.Errorf("filter %q missing status clause", where)
	}
	if len(args) != 2 || args[0] != "%acme%" || args[1] != domain.StatusQualified {
		t.Errorf("args = %v", args)
	}
}
