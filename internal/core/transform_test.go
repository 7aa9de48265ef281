package core_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmimport/internal/core"
	"github.com/JonMunkholm/crmimport/internal/core/schemas"
)

func TestTransformAll_CopiesMappedColumns(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	owner := uuid.New()
	header, rows := parse(t, csvFile(
		"Name,Email,Phone",
		"John Smith,john@example.com,(555) 123-4567",
		"Jane Doe,jane@example.com,(555) 987-6543",
	))
	m := core.AutoMap(header, leads)
	d := core.Defaults{"status": "New", "lead_source": "Website"}

	records := leadsOf(t, core.TransformAll(leads, owner, rows, m, d))
	require.Len(t, records, 2)

	assert.Equal(t, owner, records[0].UserID)
	assert.Equal(t, "John Smith", records[0].Name.String)
	assert.Equal(t, "john@example.com", records[0].Email.String)
	assert.Equal(t, "(555) 123-4567", records[0].Phone.String)
	assert.Equal(t, "Jane Doe", records[1].Name.String)

	for _, r := range records {
		assert.Equal(t, "New", r.Status)
		assert.Equal(t, "Website", r.LeadSource)
		assert.Equal(t, "medium", r.Priority)
		assert.Zero(t, r.ProjectedValue)
		assert.False(t, r.Address.Valid, "unmapped text fields stay NULL")
	}
}

func TestTransformAll_SkippedColumn(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	header, rows := parse(t, csvFile(
		"Name,Email,Phone",
		"John Smith,john@example.com,(555) 123-4567",
		"Jane Doe,jane@example.com,(555) 987-6543",
	))
	m, err := core.ApplyOverrides(leads, core.AutoMap(header, leads), map[int]string{1: core.SkipTarget})
	require.NoError(t, err)
	d := core.Defaults{"status": "New", "lead_source": "Website"}

	records := leadsOf(t, core.TransformAll(leads, uuid.New(), rows, m, d))
	require.Len(t, records, 2)

	for _, r := range records {
		assert.False(t, r.Email.Valid, "skipped column must not populate email")
		assert.True(t, r.Name.Valid)
		assert.True(t, r.Phone.Valid)
		assert.Equal(t, "New", r.Status)
	}
}

func TestTransform_NumericCoercion(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	header := core.Header{"Projected Value"}
	m := core.AutoMap(header, leads)
	d := core.Defaults{"status": "New", "lead_source": "Website"}

	tests := []struct {
		cell string
		want float64
	}{
		{"500", 500},
		{"1,200", 0},
		{"", 0},
		{"abc", 0},
		{"2500.75", 2500.75},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			row := core.SourceRow{Line: 2, Cells: []string{tt.cell}}
			lead := core.Transform(leads, uuid.New(), row, m, d).(*core.LeadRecord)
			assert.Equal(t, tt.want, lead.ProjectedValue)
		})
	}
}

func TestTransform_CriticalFields(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	header := core.Header{"Name", "Status", "Priority"}
	m := core.AutoMap(header, leads)
	d := core.Defaults{"status": "New", "lead_source": "Website", "priority": "low"}

	tests := []struct {
		name         string
		cells        []string
		wantStatus   string
		wantPriority string
	}{
		{"mapped cells win", []string{"A", "Contacted", "High"}, "Contacted", "high"},
		{"empty cells fall back", []string{"B", "", ""}, "New", "low"},
		{"short row falls back", []string{"C"}, "New", "low"},
		{"enumerated only lower-cased", []string{"D", "QUALIFIED", "MEDIUM"}, "QUALIFIED", "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := core.SourceRow{Cells: tt.cells}
			lead := core.Transform(leads, uuid.New(), row, m, d).(*core.LeadRecord)
			assert.Equal(t, tt.wantStatus, lead.Status)
			assert.Equal(t, tt.wantPriority, lead.Priority)
			assert.Equal(t, "Website", lead.LeadSource)
		})
	}
}

func TestTransform_PriorityFallback(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	m := core.AutoMap(core.Header{"Name"}, leads)

	// A blank batch default falls through to the fixed fallback
	d := core.Defaults{"status": "New", "lead_source": "Website", "priority": "  "}
	lead := core.Transform(leads, uuid.New(), core.SourceRow{Cells: []string{"A"}}, m, d).(*core.LeadRecord)
	assert.Equal(t, "medium", lead.Priority)
}

func TestTransform_LaterColumnOverwrites(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	header := core.Header{"Email", "Email"}
	m := core.AutoMap(header, leads)
	d := core.Defaults{"status": "New", "lead_source": "Website"}

	row := core.SourceRow{Cells: []string{"first@example.com", "second@example.com"}}
	lead := core.Transform(leads, uuid.New(), row, m, d).(*core.LeadRecord)
	assert.Equal(t, "second@example.com", lead.Email.String)
}

func TestTransform_TextFieldEmptyCell(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	m := core.AutoMap(core.Header{"Name", "Notes"}, leads)
	d := core.Defaults{"status": "New", "lead_source": "Website"}

	lead := core.Transform(leads, uuid.New(), core.SourceRow{Cells: []string{"A", ""}}, m, d).(*core.LeadRecord)
	assert.True(t, lead.Notes.Valid)
	assert.Equal(t, "", lead.Notes.String)
}

func TestTransform_Customers(t *testing.T) {
	customers := schemaFor(t, core.SchemaCustomers)
	owner := uuid.New()
	header := core.Header{"First Name", "Company Name", "Sale Value", "Status"}
	m := core.AutoMap(header, customers)
	d := core.Defaults{"source": "Referral", "service_type": "Lawn", "service_frequency": "Weekly"}

	row := core.SourceRow{Cells: []string{"Alice", "", "$1,250", "inactive"}}
	rec := core.Transform(customers, owner, row, m, d)

	c, ok := rec.(*core.CustomerRecord)
	require.True(t, ok)
	assert.Equal(t, core.SchemaCustomers, c.SchemaID())
	assert.Equal(t, owner, c.OwnerID())
	assert.Equal(t, "Alice", c.FirstName.String)
	assert.False(t, c.CompanyName.Valid, "absent raw cells stay NULL")
	assert.Equal(t, "$1,250", c.SaleValue.String, "sale value is carried raw")
	assert.Equal(t, schemas.CustomerStatus, c.Status, "status is always active")
	assert.Equal(t, "Referral", c.Source)
	assert.Equal(t, "Lawn", c.ServiceType)
	assert.Equal(t, "Weekly", c.ServiceFrequency)
	assert.False(t, c.Email.Valid)
}

func TestTransform_Deterministic(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	owner := uuid.New()
	m := core.AutoMap(core.Header{"Name", "Projected Value"}, leads)
	d := core.Defaults{"status": "New", "lead_source": "Website"}
	row := core.SourceRow{Cells: []string{"A", "12"}}

	first := core.Transform(leads, owner, row, m, d)
	assert.Equal(t, first, core.Transform(leads, owner, row, m, d))
}

func TestTransformAll_DuplicateTargetsLaterColumnWins(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	header, rows := parse(t, csvFile(
		"Name,Status,Status,Notes,Notes",
		"A,New,Won,first,second",
	))
	m := core.AutoMap(header, leads)
	require.Equal(t, 2, m.LastIndexOf("status"))

	records := leadsOf(t, core.TransformAll(leads, uuid.New(), rows, m, core.Defaults{"lead_source": "Website"}))
	require.Len(t, records, 1)

	assert.Equal(t, "Won", records[0].Status)
	assert.Equal(t, "second", records[0].Notes.String)
}
