package schemas

import (
	"github.com/google/uuid"

	"github.com/JonMunkholm/crmimport/internal/core"
)

func init() {
	registerLeads()
}

func registerLeads() {
	core.Register(core.Schema{
		Info: core.SchemaInfo{
			ID:    core.SchemaLeads,
			Label: "Leads",
			Noun:  "lead",
		},
		Fields: []core.FieldDescriptor{
			{ID: "name", Label: "Name", Kind: core.FieldText},
			{ID: "email", Label: "Email", Kind: core.FieldText},
			{ID: "phone", Label: "Phone", Kind: core.FieldText},
			{ID: "lead_source", Label: "Lead Source", Critical: true, OptionsKey: core.OptionLeadSources},
			{ID: "status", Label: "Status", Critical: true, OptionsKey: core.OptionLeadStages},
			{ID: "priority", Label: "Priority", Critical: true, Enumerated: true, Fallback: "medium", Choices: []string{"low", "medium", "high"}},
			{ID: "projected_value", Label: "Projected Value", Kind: core.FieldNumber},
			{ID: "address", Label: "Address", Kind: core.FieldText},
			{ID: "notes", Label: "Notes", Kind: core.FieldText},
		},
		Examples: [][]string{
			{"John Smith", "john@example.com", "(555) 123-4567", "Website", "New", "High", "5000", "123 Main St, Phoenix, AZ 85001", "Interested in full service"},
			{"Jane Doe", "jane@example.com", "(555) 987-6543", "Referral", "Contacted", "Medium", "2500", "456 Oak Ave, Phoenix, AZ 85002", "Prefers monthly service"},
		},
		Build: buildLead,
	})
}

func buildLead(owner uuid.UUID, v core.FieldValues) core.Record {
	return &core.LeadRecord{
		UserID:         owner,
		Name:           v.Text("name"),
		Email:          v.Text("email"),
		Phone:          v.Text("phone"),
		Address:        v.Text("address"),
		Notes:          v.Text("notes"),
		LeadSource:     v.String("lead_source"),
		Status:         v.String("status"),
		Priority:       v.String("priority"),
		ProjectedValue: v.Number("projected_value"),
	}
}
