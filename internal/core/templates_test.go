package core_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/crmimport/internal/core"
)

func TestGenerateTemplate_RoundTrip(t *testing.T) {
	for _, s := range core.All() {
		t.Run(string(s.Info.ID), func(t *testing.T) {
			data, err := core.GenerateTemplate(s.Info.ID)
			require.NoError(t, err)

			header, rows := parse(t, data)
			assert.Equal(t, core.Header(s.Labels()), header)
			require.Len(t, rows, len(s.Examples))

			m := core.AutoMap(header, s)
			for i, fm := range m {
				assert.Equal(t, s.Fields[i].ID, fm.Target, "template column %q must auto-map", fm.Source)
			}

			// Every critical field is mapped, so the template commits with no defaults
			require.NoError(t, core.ValidateConfiguration(s, m, nil))

			records := core.TransformAll(s, uuid.New(), rows, m, nil)
			assert.Len(t, records, len(s.Examples))
			for _, r := range records {
				assert.Equal(t, s.Info.ID, r.SchemaID())
			}
		})
	}
}

func TestGenerateTemplate_Workbook(t *testing.T) {
	data, err := core.GenerateTemplate(core.SchemaLeads)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{core.TemplateSheet}, f.GetSheetList())

	v, err := f.GetCellValue(core.TemplateSheet, "D1")
	require.NoError(t, err)
	assert.Equal(t, "Lead Source", v)

	v, err = f.GetCellValue(core.TemplateSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", v)
}

func TestGenerateTemplate_UnknownSchema(t *testing.T) {
	_, err := core.GenerateTemplate("invoices")
	require.ErrorIs(t, err, core.ErrUnknownSchema)
}

func TestTemplateFileName(t *testing.T) {
	assert.Equal(t, "leads_import_template.xlsx", core.TemplateFileName(core.SchemaLeads))
	assert.Equal(t, "customers_import_template.xlsx", core.TemplateFileName(core.SchemaCustomers))
}
