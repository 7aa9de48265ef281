package schemas

import (
	"github.com/google/uuid"

	"github.com/JonMunkholm/crmimport/internal/core"
)

// CustomerStatus is the status every imported customer starts with.
const CustomerStatus = "active"

func init() {
	registerCustomers()
}

func registerCustomers() {
	core.Register(core.Schema{
		Info: core.SchemaInfo{
			ID:    core.SchemaCustomers,
			Label: "Customers",
			Noun:  "customer",
		},
		Fields: []core.FieldDescriptor{
			{ID: "first_name", Label: "First Name"},
			{ID: "last_name", Label: "Last Name"},
			{ID: "company_name", Label: "Company Name"},
			{ID: "email", Label: "Email", Kind: core.FieldText},
			{ID: "phone", Label: "Phone", Kind: core.FieldText},
			{ID: "source", Label: "Source", Critical: true, OptionsKey: core.OptionLeadSources},
			{ID: "service_type", Label: "Service Type", Critical: true, OptionsKey: core.OptionServiceTypes},
			{ID: "service_frequency", Label: "Service Frequency", Critical: true, OptionsKey: core.OptionServiceFrequencies},
			{ID: "property_street1", Label: "Street Address"},
			{ID: "property_city", Label: "City"},
			{ID: "property_state", Label: "State"},
			{ID: "property_zip", Label: "ZIP Code"},
			{ID: "sale_value", Label: "Sale Value"},
			{ID: "notes", Label: "Notes", Kind: core.FieldText},
		},
		Examples: [][]string{
			{"John", "Smith", "ABC Company", "john@example.com", "(555) 123-4567", "Website", "Full Service", "Weekly", "123 Main St", "Phoenix", "AZ", "85001", "10000", "Key under mat"},
			{"Jane", "Doe", "XYZ Corp", "jane@example.com", "(555) 987-6543", "Referral", "Basic Service", "Monthly", "456 Oak Ave", "Phoenix", "AZ", "85002", "5000", "Dog in backyard"},
		},
		Build: buildCustomer,
	})
}

// buildCustomer ignores any mapped or default status: imported customers
// always start active.
func buildCustomer(owner uuid.UUID, v core.FieldValues) core.Record {
	return &core.CustomerRecord{
		UserID:           owner,
		FirstName:        v.Text("first_name"),
		LastName:         v.Text("last_name"),
		CompanyName:      v.Text("company_name"),
		Email:            v.Text("email"),
		Phone:            v.Text("phone"),
		PropertyStreet1:  v.Text("property_street1"),
		PropertyCity:     v.Text("property_city"),
		PropertyState:    v.Text("property_state"),
		PropertyZip:      v.Text("property_zip"),
		SaleValue:        v.Text("sale_value"),
		Notes:            v.Text("notes"),
		Source:           v.String("source"),
		ServiceType:      v.String("service_type"),
		ServiceFrequency: v.String("service_frequency"),
		Status:           CustomerStatus,
	}
}
