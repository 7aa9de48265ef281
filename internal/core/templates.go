package core

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the name of the only sheet in a generated template.
const TemplateSheet = "Template"

// TemplateFileName returns the download name of a schema's template.
func TemplateFileName(id SchemaID) string {
	return fmt.Sprintf("%s_import_template.xlsx", id)
}

// GenerateTemplate builds the exemplar workbook for a schema. The header row
// holds the field labels in declaration order, followed by the schema's
// example rows.
func GenerateTemplate(id SchemaID) ([]byte, error) {
	s, err := Lookup(id)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"
	if err := f.SetSheetName(f.GetSheetName(0), TemplateSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := make([][]string, 0, len(s.Examples)+1)
	rows = append(rows, s.Labels())
	rows = append(rows, s.Examples...)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(TemplateSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(TemplateSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
