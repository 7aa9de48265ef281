package core

// transform.go converts source rows into typed records.
//
// Each row goes through the same fixed steps:
//  1. The record is seeded with the batch owner.
//  2. Critical fields are derived from their mapped cell, or the effective
//     default when the cell is empty or no column targets them.
//  3. Every other active mapping is copied according to the field kind.
//  4. The schema builder fills the typed record and applies any fixed literals.
//
// Cell anomalies never fail a row: absent text becomes "", bad numbers become 0.

import (
	"strings"

	"github.com/google/uuid"
)

// plan is the per-run view of a mapping resolved against a schema.
type plan struct {
	schema   *Schema
	critical []criticalRule
	copies   []copyRule
	numbers  []string
}

type criticalRule struct {
	field    FieldDescriptor
	col      int // last column targeting the field, -1 when unmapped
	fallback string
}

type copyRule struct {
	col   int
	field FieldDescriptor
}

func newPlan(s *Schema, m Mapping, d Defaults) *plan {
	p := &plan{schema: s}
	for _, f := range s.Fields {
		if f.Critical {
			p.critical = append(p.critical, criticalRule{field: f, col: m.LastIndexOf(f.ID), fallback: d.Effective(f)})
			continue
		}
		if f.Kind == FieldNumber {
			p.numbers = append(p.numbers, f.ID)
		}
	}
	for i, fm := range m {
		if !fm.Active() {
			continue
		}
		f, ok := s.Field(fm.Target)
		if !ok || f.Critical {
			continue
		}
		p.copies = append(p.copies, copyRule{col: i, field: f})
	}
	return p
}

func (p *plan) apply(owner uuid.UUID, row SourceRow) Record {
	values := make(FieldValues, len(p.schema.Fields))

	for _, rule := range p.critical {
		v := rule.fallback
		if cell, ok := row.Cell(rule.col); ok {
			if rule.field.Enumerated {
				cell = strings.ToLower(cell)
			}
			v = cell
		}
		values[rule.field.ID] = Value{Str: v, Set: true}
	}

	for _, id := range p.numbers {
		values[id] = Value{Set: true}
	}

	// Later columns overwrite earlier ones targeting the same field.
	for _, rule := range p.copies {
		cell, present := row.Cell(rule.col)
		switch rule.field.Kind {
		case FieldText:
			values[rule.field.ID] = Value{Str: cell, Set: true}
		case FieldNumber:
			values[rule.field.ID] = Value{Num: ParseNumber(cell), Set: true}
		default:
			values[rule.field.ID] = Value{Str: cell, Set: present}
		}
	}

	return p.schema.Build(owner, values)
}

// Transform converts one row. Identical inputs always yield identical records.
func Transform(s *Schema, owner uuid.UUID, row SourceRow, m Mapping, d Defaults) Record {
	return newPlan(s, m, d).apply(owner, row)
}

// TransformAll converts every row in order. The mapping is resolved once.
func TransformAll(s *Schema, owner uuid.UUID, rows []SourceRow, m Mapping, d Defaults) []Record {
	p := newPlan(s, m, d)
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = p.apply(owner, row)
	}
	return out
}
