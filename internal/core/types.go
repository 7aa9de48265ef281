package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// SchemaID identifies one of the fixed target record schemas.
type SchemaID string

const (
	SchemaLeads     SchemaID = "leads"
	SchemaCustomers SchemaID = "customers"
)

// FieldKind controls how the generic mapping pass copies a cell into a record.
type FieldKind int

const (
	FieldRaw    FieldKind = iota // Cell copied unchanged, absent cells stay NULL
	FieldText                    // Cell copied as a string, absent cells become ""
	FieldNumber                  // Cell parsed with ParseNumber, failures become 0
)

var fieldKindNames = [...]string{
	FieldRaw:    "raw",
	FieldText:   "text",
	FieldNumber: "number",
}

func (k FieldKind) String() string {
	if k < 0 || int(k) >= len(fieldKindNames) {
		return "unknown"
	}
	return fieldKindNames[k]
}

// MarshalText encodes the kind by name in JSON responses.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FieldDescriptor describes a single target field of a schema.
type FieldDescriptor struct {
	ID         string    `json:"id"`                   // Stable identifier: "lead_source"
	Label      string    `json:"label"`                // Human label and template header: "Lead Source"
	Kind       FieldKind `json:"kind"`                 // Copy rule for the generic pass
	Critical   bool      `json:"critical"`             // Must be satisfied by a mapping or default before commit
	Enumerated bool      `json:"enumerated,omitempty"` // Mapped cells are lower-cased during derivation
	Fallback   string    `json:"fallback,omitempty"`   // Used when the batch default is empty
	OptionsKey string    `json:"optionsKey,omitempty"` // Profile option list that populates the default
	Choices    []string  `json:"choices,omitempty"`    // Fixed allowed values, when the field has them
}

// SchemaInfo contains display information about a schema.
type SchemaInfo struct {
	ID    SchemaID `json:"id"`    // "leads"
	Label string   `json:"label"` // "Leads"
	Noun  string   `json:"noun"`  // Singular record name: "lead"
}

// BuildRecordFunc assembles the typed record for a schema from derived field values.
type BuildRecordFunc func(owner uuid.UUID, values FieldValues) Record

// Schema contains everything needed to map and transform rows into one record type.
type Schema struct {
	Info   SchemaInfo
	Fields []FieldDescriptor

	// Examples are the exemplar data rows written to the generated template,
	// one value per field in declaration order.
	Examples [][]string

	Build BuildRecordFunc
}

// Field returns the descriptor with the given identifier.
func (s *Schema) Field(id string) (FieldDescriptor, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// CriticalFields returns the schema-critical descriptors in declaration order.
func (s *Schema) CriticalFields() []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range s.Fields {
		if f.Critical {
			out = append(out, f)
		}
	}
	return out
}

// Labels returns the field labels in declaration order.
func (s *Schema) Labels() []string {
	labels := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		labels[i] = f.Label
	}
	return labels
}

// Header is the ordered list of column labels from the first row of a file.
// Labels may repeat.
type Header []string

// SourceRow is one data row of a parsed file. Cells are addressed by column
// position so duplicate header labels stay distinguishable.
type SourceRow struct {
	Line   int // 1-indexed line in the source sheet
	Cells  []string
	header Header
}

// Cell returns the value in column i. Empty and missing cells report false.
func (r SourceRow) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r.Cells) || r.Cells[i] == "" {
		return "", false
	}
	return r.Cells[i], true
}

// Get returns the value under the first column labelled label.
func (r SourceRow) Get(label string) (string, bool) {
	for i, h := range r.header {
		if h == label {
			return r.Cell(i)
		}
	}
	return "", false
}

// Value is a single derived field value.
type Value struct {
	Str string
	Num float64
	Set bool // false means the field was never populated and is stored as NULL
}

// FieldValues holds the values produced for one row, keyed by field identifier.
type FieldValues map[string]Value

// Text returns the value as a nullable text column.
func (v FieldValues) Text(id string) pgtype.Text {
	val, ok := v[id]
	if !ok || !val.Set {
		return pgtype.Text{}
	}
	return pgtype.Text{String: val.Str, Valid: true}
}

// String returns the value as a plain string, empty when unset.
func (v FieldValues) String(id string) string {
	return v[id].Str
}

// Number returns the numeric value, zero when unset.
func (v FieldValues) Number(id string) float64 {
	return v[id].Num
}

// Record is a transformed row ready for persistence. The concrete type is
// fixed per schema: *LeadRecord or *CustomerRecord.
type Record interface {
	SchemaID() SchemaID
	OwnerID() uuid.UUID
}

// LeadRecord is a transformed row of the leads schema.
type LeadRecord struct {
	UserID         uuid.UUID
	Name           pgtype.Text
	Email          pgtype.Text
	Phone          pgtype.Text
	Address        pgtype.Text
	Notes          pgtype.Text
	LeadSource     string
	Status         string
	Priority       string
	ProjectedValue float64
}

func (r *LeadRecord) SchemaID() SchemaID { return SchemaLeads }
func (r *LeadRecord) OwnerID() uuid.UUID { return r.UserID }

// CustomerRecord is a transformed row of the customers schema.
type CustomerRecord struct {
	UserID           uuid.UUID
	FirstName        pgtype.Text
	LastName         pgtype.Text
	CompanyName      pgtype.Text
	Email            pgtype.Text
	Phone            pgtype.Text
	PropertyStreet1  pgtype.Text
	PropertyCity     pgtype.Text
	PropertyState    pgtype.Text
	PropertyZip      pgtype.Text
	SaleValue        pgtype.Text // Raw cell; stores convert it to their numeric type
	Notes            pgtype.Text
	Source           string
	ServiceType      string
	ServiceFrequency string
	Status           string
}

func (r *CustomerRecord) SchemaID() SchemaID { return SchemaCustomers }
func (r *CustomerRecord) OwnerID() uuid.UUID { return r.UserID }

// ImportResult contains the final result of an import run.
type ImportResult struct {
	RunID     string        `json:"runId"`
	Schema    SchemaID      `json:"schema"`
	FileName  string        `json:"fileName,omitempty"`
	TotalRows int           `json:"totalRows"`
	Inserted  int           `json:"inserted"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"` // Non-empty if the run failed
	Code      string        `json:"code,omitempty"`  // Support code for Error
}

// Failed reports whether the run ended without persisting the batch.
func (r ImportResult) Failed() bool {
	return r.Error != ""
}
