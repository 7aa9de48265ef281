// Package core provides the business logic for spreadsheet import operations.
//
// This package is the heart of the importer, containing all domain logic
// independent of any transport. It is used by the HTTP server, the importctl
// CLI and tests without modification.
//
// # Pipeline
//
// An import moves through fixed stages, each a plain function:
//
//  1. [ParseFile] sniffs the bytes, reads the first sheet and takes its first
//     row as the [Header].
//  2. [AutoMap] proposes a [Mapping] by comparing normalized header labels
//     with field identifiers and labels.
//  3. [ApplyOverrides] returns a copy of the mapping with caller edits.
//  4. [ValidateConfiguration] refuses a mapping and [Defaults] pair that
//     leaves a critical field unsatisfied.
//  5. [TransformAll] turns every row into a typed [Record].
//  6. [Committer.Commit] writes the batch with one atomic store call.
//
// [Session] threads the state of one attempt through these stages and
// enforces the dialog's state machine. [Service] adds option loading,
// concurrency limits, logging and metrics.
//
// # Schema Registry
//
// Schemas are registered at init time using [Register]. Each [Schema]
// contains everything needed to map rows into one record type:
//
//	core.Register(core.Schema{
//	    Info: core.SchemaInfo{ID: "leads", Label: "Leads", Noun: "lead"},
//	    Fields: []core.FieldDescriptor{
//	        {ID: "name", Label: "Name", Kind: core.FieldText},
//	        {ID: "status", Label: "Status", Critical: true, OptionsKey: core.OptionLeadStages},
//	    },
//	    Build: buildLead,
//	})
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB000-DB009: Database errors (rejected batch, constraints, connections)
//   - VAL003-VAL007: Configuration errors (required fields, unknown fields)
//   - FILE001-FILE005: File errors (size, format, empty)
//   - IMP001-IMP005: Import errors (cancelled, busy, wrong step)
package core
