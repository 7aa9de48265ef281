package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crmimport/internal/core"
)

func TestValidateConfiguration_Leads(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)

	tests := []struct {
		name        string
		header      core.Header
		defaults    core.Defaults
		wantMissing []string
		wantNoCols  bool
	}{
		{
			name:     "defaults satisfy every critical field",
			header:   core.Header{"Name"},
			defaults: core.Defaults{"lead_source": "Website", "status": "New"},
		},
		{
			name:   "mapped columns satisfy critical fields",
			header: core.Header{"Name", "Lead Source", "Status"},
		},
		{
			name:        "missing status default",
			header:      core.Header{"Name"},
			defaults:    core.Defaults{"lead_source": "Website"},
			wantMissing: []string{"status"},
		},
		{
			name:        "whitespace default does not count",
			header:      core.Header{"Name", "Status"},
			defaults:    core.Defaults{"lead_source": "   "},
			wantMissing: []string{"lead_source"},
		},
		{
			name:        "nothing configured",
			header:      core.Header{"Name"},
			wantMissing: []string{"lead_source", "status"},
		},
		{
			name:       "no mapped columns",
			header:     core.Header{"Favorite Color"},
			defaults:   core.Defaults{"lead_source": "Website", "status": "New"},
			wantNoCols: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := core.AutoMap(tt.header, leads)
			err := core.ValidateConfiguration(leads, m, tt.defaults)

			switch {
			case tt.wantNoCols:
				require.ErrorIs(t, err, core.ErrNoMappedColumns)
			case len(tt.wantMissing) > 0:
				var missing *core.MissingRequiredFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, tt.wantMissing, missing.FieldIDs())
				assert.Equal(t, core.SchemaLeads, missing.Schema)
				assert.Equal(t, "VAL003", core.MapError(err).Code)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateConfiguration_SkippedCriticalColumn(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)
	m := core.Mapping{
		{Source: "Name", Target: "name"},
		{Source: "Status", Target: core.SkipTarget},
	}

	err := core.ValidateConfiguration(leads, m, core.Defaults{"lead_source": "Website"})
	var missing *core.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"status"}, missing.FieldIDs())
}

func TestValidateConfiguration_Customers(t *testing.T) {
	customers := schemaFor(t, core.SchemaCustomers)
	m := core.AutoMap(core.Header{"First Name", "Service Type"}, customers)

	err := core.ValidateConfiguration(customers, m, core.Defaults{"source": "Website"})
	var missing *core.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"service_frequency"}, missing.FieldIDs())

	require.NoError(t, core.ValidateConfiguration(customers, m, core.Defaults{
		"source":            "Website",
		"service_frequency": "Weekly",
	}))
}

func TestInitialDefaults(t *testing.T) {
	leads := schemaFor(t, core.SchemaLeads)

	d := core.InitialDefaults(leads, core.DefaultOptions{
		core.OptionLeadStages:  {"New", "Contacted"},
		core.OptionLeadSources: {},
	})
	assert.Equal(t, core.Defaults{"status": "New", "priority": "medium"}, d)

	empty := core.InitialDefaults(leads, nil)
	assert.Equal(t, core.Defaults{"priority": "medium"}, empty)
}
