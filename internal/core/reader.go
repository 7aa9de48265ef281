package core

// reader.go turns uploaded bytes into rows.
//
// The container format is sniffed from the content, never from the file
// name. Workbooks are read with excelize (first sheet, raw cell values so
// number formats do not leak into the data); delimited text is read with
// encoding/csv after BOM removal and UTF-8 sanitization.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// Sheet is the parsed content of the first sheet of a file.
type Sheet struct {
	Format string     // Detected MIME type
	Rows   [][]string // Non-blank rows in sheet order
	Lines  []int      // 1-indexed source line of each row
}

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeCSV  = "text/csv"
	mimeTSV  = "text/tab-separated-values"
	mimeText = "text/plain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSheet parses raw file bytes into the rows of the first sheet.
// Fails with *ParseError when the bytes are not a supported tabular format
// or the workbook has no sheets.
func ReadSheet(data []byte) (*Sheet, error) {
	mtype := mimetype.Detect(data)

	switch {
	case isMime(mtype, mimeXLSX):
		return readWorkbook(data, mtype.String())
	case isMime(mtype, mimeXLS):
		return nil, &ParseError{Format: mtype.String(), Err: errors.New("legacy .xls workbooks are not supported, save as .xlsx")}
	case isMime(mtype, mimeTSV):
		return readDelimited(data, mtype.String(), '\t')
	case isMime(mtype, mimeCSV):
		return readDelimited(data, mtype.String(), ',')
	case isMime(mtype, mimeText):
		return readDelimited(data, mtype.String(), sniffDelimiter(data))
	}

	return nil, &ParseError{Format: mtype.String(), Err: errors.New("unsupported file type")}
}

// isMime reports whether m or any of its parents is the given type.
// Zip-based workbooks detected without their content types fall back to
// application/zip and are rejected.
func isMime(m *mimetype.MIME, want string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(want) {
			return true
		}
	}
	return false
}

// sniffDelimiter picks tab or comma from the first line. Tab-separated
// files with ragged rows are not recognized as TSV by content sniffing.
func sniffDelimiter(data []byte) rune {
	line := bytes.TrimPrefix(data, utf8BOM)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}

func readWorkbook(data []byte, format string) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: format, Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Format: format, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}

	return newSheet(format, rows), nil
}

func readDelimited(data []byte, format string, comma rune) (*Sheet, error) {
	data = sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}

	return newSheet(format, rows), nil
}

// newSheet drops blank rows and remembers the source line of each kept row.
func newSheet(format string, rows [][]string) *Sheet {
	sheet := &Sheet{Format: format}
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
		sheet.Lines = append(sheet.Lines, i+1)
	}
	return sheet
}

// ExtractHeader returns the first row of the sheet as the header.
// Fails with *EmptyFileError when the sheet has no rows.
func ExtractHeader(sheet *Sheet) (Header, error) {
	if sheet == nil || len(sheet.Rows) == 0 {
		return nil, &EmptyFileError{}
	}
	first := sheet.Rows[0]
	header := make(Header, len(first))
	for i, label := range first {
		header[i] = CleanHeader(label)
	}
	return header, nil
}

// DataRows returns every row after the header, bound to the header labels.
func (s *Sheet) DataRows(header Header) []SourceRow {
	if len(s.Rows) <= 1 {
		return nil
	}
	out := make([]SourceRow, 0, len(s.Rows)-1)
	for i, cells := range s.Rows[1:] {
		out = append(out, SourceRow{Line: s.Lines[i+1], Cells: cells, header: header})
	}
	return out
}

// ParseFile runs the reader and header extractor in sequence.
func ParseFile(data []byte) (Header, []SourceRow, error) {
	sheet, err := ReadSheet(data)
	if err != nil {
		return nil, nil, err
	}
	header, err := ExtractHeader(sheet)
	if err != nil {
		return nil, nil, err
	}
	return header, sheet.DataRows(header), nil
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	return []byte(strings.ToValidUTF8(string(data), "\uFFFD"))
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
