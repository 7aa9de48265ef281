package core_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/crmimport/internal/core"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseFile_CSV(t *testing.T) {
	header, rows := parse(t, csvFile(
		"Name,Email,Phone",
		"John Smith,john@example.com,555-1234",
		",,",
		"Jane Doe,jane@example.com,555-9876",
	))

	assert.Equal(t, core.Header{"Name", "Email", "Phone"}, header)
	require.Len(t, rows, 2, "blank rows are dropped")
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 4, rows[1].Line, "line numbers refer to the source file")

	v, ok := rows[1].Get("Email")
	assert.True(t, ok)
	assert.Equal(t, "jane@example.com", v)
}

func TestParseFile_QuotedCSV(t *testing.T) {
	_, rows := parse(t, csvFile(
		`Name,Address,Notes`,
		`"Smith, John","123 Main St, Phoenix","said ""call me"""`,
		`"Doe, Jane","456 Oak Ave, Phoenix",""`,
	))

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Smith, John", "123 Main St, Phoenix", `said "call me"`}, rows[0].Cells)
}

func TestParseFile_BOMAndFormulaHeaders(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, csvFile(
		`="Name",Email`,
		`John,john@example.com`,
		`Jane,jane@example.com`,
	)...)

	header, rows := parse(t, data)
	assert.Equal(t, core.Header{"Name", "Email"}, header)
	assert.Len(t, rows, 2)
}

func TestParseFile_TSV(t *testing.T) {
	header, rows := parse(t, []byte("Name\tEmail\tNotes\nJohn\tjohn@example.com\ta, b\nJane\tjane@example.com\tc\n"))

	assert.Equal(t, core.Header{"Name", "Email", "Notes"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "a, b", rows[0].Cells[2])
}

func TestParseFile_TSVUnevenRows(t *testing.T) {
	header, rows := parse(t, []byte("Name\tEmail\tPhone\nA\ta@x.com\nB\tb@x.com\t555\n"))

	assert.Equal(t, core.Header{"Name", "Email", "Phone"}, header)
	require.Len(t, rows, 2)
	_, ok := rows[0].Cell(2)
	assert.False(t, ok, "dropped trailing cell is absent")
	assert.Equal(t, "555", rows[1].Cells[2])
}

func TestParseFile_Workbook(t *testing.T) {
	data := workbook(t, [][]any{
		{"Name", "Projected Value", "Notes"},
		{"John Smith", 5000, "first"},
		{},
		{"Jane Doe", 2500.5, nil},
	})

	header, rows := parse(t, data)
	assert.Equal(t, core.Header{"Name", "Projected Value", "Notes"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "5000", rows[0].Cells[1])
	assert.Equal(t, "2500.5", rows[1].Cells[1])
	assert.Equal(t, 4, rows[1].Line)

	_, ok := rows[1].Cell(2)
	assert.False(t, ok, "missing trailing cell reads as absent")
}

func TestParseFile_HeaderOnly(t *testing.T) {
	header, rows := parse(t, []byte("Name,Email\n"))
	assert.Equal(t, core.Header{"Name", "Email"}, header)
	assert.Empty(t, rows)
}

func TestParseFile_Empty(t *testing.T) {
	for name, data := range map[string][]byte{
		"no bytes":    {},
		"blank lines": []byte("\n\n\n"),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := core.ParseFile(data)
			var emptyErr *core.EmptyFileError
			require.ErrorAs(t, err, &emptyErr)
			assert.Equal(t, "FILE005", core.MapError(err).Code)
		})
	}
}

func TestParseFile_Unsupported(t *testing.T) {
	tests := map[string][]byte{
		"binary":  {0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0x00, 0x00, 0x10, 0x20},
		"pdf":     []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"),
		"png":     {0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D},
		"bad zip": append([]byte("PK\x03\x04"), make([]byte, 32)...),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := core.ParseFile(data)
			var parseErr *core.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "FILE002", core.MapError(err).Code)
		})
	}
}

func TestParseFile_InvalidUTF8(t *testing.T) {
	header, rows := parse(t, []byte("Name,Notes\nJos\xe9,ok\nAna,fine\n"))
	assert.Equal(t, core.Header{"Name", "Notes"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, "Jos\uFFFD", rows[0].Cells[0])
}
