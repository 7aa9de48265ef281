package core

// session.go models one import dialog as an explicit value.
//
// A Session carries the file, header, mapping and defaults of a single
// import attempt through its states:
//
//	Idle → FileSelected → Mapped → Validating → Committing → Done
//	                        ↑                        │
//	                        └──────── Failed ←───────┘
//
// Cancel is accepted in every state except Committing. Done and Cancelled
// are terminal. A Session is not safe for concurrent use.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionState is a step of the import dialog.
type SessionState int

const (
	StateIdle SessionState = iota
	StateFileSelected
	StateMapped
	StateValidating
	StateCommitting
	StateDone
	StateFailed
	StateCancelled
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateFileSelected: "file_selected",
	StateMapped:       "mapped",
	StateValidating:   "validating",
	StateCommitting:   "committing",
	StateDone:         "done",
	StateFailed:       "failed",
	StateCancelled:    "cancelled",
}

func (s SessionState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further action is accepted.
func (s SessionState) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// TransitionError reports an action attempted in a state that does not allow it.
type TransitionError struct {
	From   SessionState
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s while %s", e.Action, e.From)
}

// Session is the state of one import attempt.
type Session struct {
	Owner  uuid.UUID
	Schema *Schema
	State  SessionState

	FileName string
	Header   Header
	Rows     []SourceRow
	Mapping  Mapping

	Options  DefaultOptions
	Defaults Defaults

	// LastError is the most recent validation or commit failure.
	LastError error

	history []SessionState
}

// NewSession starts an Idle session for owner against schema.
func NewSession(owner uuid.UUID, schema *Schema) *Session {
	return &Session{
		Owner:    owner,
		Schema:   schema,
		State:    StateIdle,
		Defaults: make(Defaults),
		history:  []SessionState{StateIdle},
	}
}

// History returns every state the session has entered, in order.
func (s *Session) History() []SessionState {
	return append([]SessionState(nil), s.history...)
}

func (s *Session) enter(state SessionState) {
	s.State = state
	s.history = append(s.history, state)
}

func (s *Session) require(action string, allowed ...SessionState) error {
	for _, st := range allowed {
		if s.State == st {
			return nil
		}
	}
	return &TransitionError{From: s.State, Action: action}
}

// reopen moves a failed session back to Mapped before an edit or retry.
func (s *Session) reopen() {
	if s.State == StateFailed {
		s.enter(StateMapped)
	}
}

// SetOptions installs the owner's option lists and seeds any batch default
// that is still empty with the first option of its list.
func (s *Session) SetOptions(opts DefaultOptions) error {
	if s.State == StateCommitting || s.State.Terminal() {
		return &TransitionError{From: s.State, Action: "load options"}
	}
	s.Options = opts
	s.seedDefaults()
	return nil
}

func (s *Session) seedDefaults() {
	if s.Defaults == nil {
		s.Defaults = make(Defaults)
	}
	for id, v := range InitialDefaults(s.Schema, s.Options) {
		if s.Defaults[id] == "" {
			s.Defaults[id] = v
		}
	}
}

// LoadFile parses data and auto-maps its header, leaving the session Mapped.
// On a read failure nothing from the file is retained and the session stays Idle.
func (s *Session) LoadFile(name string, data []byte) error {
	if err := s.require("select a file", StateIdle); err != nil {
		return err
	}

	header, rows, err := ParseFile(data)
	if err != nil {
		return err
	}
	s.Accept(name, header, rows)
	return nil
}

// Accept installs an already parsed file and auto-maps its header.
func (s *Session) Accept(name string, header Header, rows []SourceRow) {
	s.FileName = name
	s.Header = header
	s.Rows = rows
	s.enter(StateFileSelected)

	s.Mapping = AutoMap(header, s.Schema)
	s.enter(StateMapped)
}

// SwitchSchema changes the target schema. A mapped file is re-matched
// against the new schema and defaults are re-seeded from the option lists.
func (s *Session) SwitchSchema(schema *Schema) error {
	if err := s.require("switch schema", StateIdle, StateMapped, StateFailed); err != nil {
		return err
	}
	s.reopen()
	s.Schema = schema
	s.seedDefaults()
	if s.State == StateMapped {
		s.Mapping = AutoMap(s.Header, schema)
	}
	s.LastError = nil
	return nil
}

// UpdateMapping sets the target of column i. Other columns are unaffected.
func (s *Session) UpdateMapping(i int, target string) error {
	if err := s.require("edit the mapping", StateMapped, StateFailed); err != nil {
		return err
	}
	s.reopen()
	return s.Mapping.Update(s.Schema, i, target)
}

// ApplyOverrides replaces the mapping with a copy carrying the caller's edits.
// The mapping is unchanged if any override is rejected.
func (s *Session) ApplyOverrides(overrides map[int]string) error {
	if err := s.require("edit the mapping", StateMapped, StateFailed); err != nil {
		return err
	}
	s.reopen()
	m, err := ApplyOverrides(s.Schema, s.Mapping, overrides)
	if err != nil {
		return err
	}
	s.Mapping = m
	return nil
}

// SetDefault sets the batch default of a critical field.
func (s *Session) SetDefault(field, value string) error {
	if s.State == StateCommitting || s.State == StateValidating || s.State.Terminal() {
		return &TransitionError{From: s.State, Action: "edit defaults"}
	}
	f, ok := s.Schema.Field(field)
	if !ok || !f.Critical {
		return fmt.Errorf("unknown field %q: defaults apply to required %s fields only", field, s.Schema.Info.ID)
	}
	s.reopen()
	s.Defaults[field] = value
	return nil
}

// Validate checks the mapping and defaults configuration without committing.
// The session is Mapped afterwards either way.
func (s *Session) Validate() error {
	if err := s.validate(); err != nil {
		return err
	}
	s.enter(StateMapped)
	return nil
}

// validate enters Validating and stays there on success. On failure the
// session returns to Mapped with its configuration untouched.
func (s *Session) validate() error {
	if err := s.require("validate", StateMapped, StateFailed); err != nil {
		return err
	}
	s.reopen()
	s.enter(StateValidating)

	if err := ValidateConfiguration(s.Schema, s.Mapping, s.Defaults); err != nil {
		s.LastError = err
		s.enter(StateMapped)
		return err
	}
	s.LastError = nil
	return nil
}

// Commit validates, transforms every row and writes the batch in one call.
//
// Success moves the session to Done, notifies the inserted count and closes
// the dialog. A validation failure leaves it Mapped. A commit failure leaves
// it Failed with file, mapping and defaults preserved for a retry.
func (s *Session) Commit(ctx context.Context, c *Committer, n Notifier) (ImportResult, error) {
	if n == nil {
		n = NopNotifier{}
	}
	start := time.Now()
	result := ImportResult{
		RunID:     uuid.New().String(),
		Schema:    s.Schema.Info.ID,
		FileName:  s.FileName,
		TotalRows: len(s.Rows),
	}

	if err := s.validate(); err != nil {
		var te *TransitionError
		if !errors.As(err, &te) {
			n.Notify(FailureNotification(err))
		}
		return s.fail(result, start, err), err
	}

	s.enter(StateCommitting)
	records := TransformAll(s.Schema, s.Owner, s.Rows, s.Mapping, s.Defaults)

	inserted, err := c.Commit(ctx, s.Schema.Info.ID, s.Owner, records)
	if err != nil {
		s.LastError = err
		s.enter(StateFailed)
		n.Notify(FailureNotification(err))
		return s.fail(result, start, err), err
	}

	result.Inserted = inserted
	result.Duration = time.Since(start)
	s.enter(StateDone)
	s.Rows = nil

	n.Notify(SuccessNotification(inserted))
	n.Close()
	return result, nil
}

func (s *Session) fail(result ImportResult, start time.Time, err error) ImportResult {
	msg := MapError(err)
	result.Inserted = 0
	result.Duration = time.Since(start)
	result.Error = msg.Message
	result.Code = msg.Code
	return result
}

// Cancel abandons the session. Accepted in any state except Committing.
func (s *Session) Cancel() error {
	if s.State == StateCancelled {
		return nil
	}
	if s.State == StateCommitting || s.State == StateDone {
		return &TransitionError{From: s.State, Action: "cancel"}
	}
	s.dropFile()
	s.enter(StateCancelled)
	return nil
}

// Reset drops the current file and returns to Idle so another file can be
// selected. Options and defaults are kept.
func (s *Session) Reset() error {
	if err := s.require("change file", StateIdle, StateFileSelected, StateMapped, StateFailed); err != nil {
		return err
	}
	s.dropFile()
	s.LastError = nil
	if s.State != StateIdle {
		s.enter(StateIdle)
	}
	return nil
}

func (s *Session) dropFile() {
	s.FileName = ""
	s.Header = nil
	s.Rows = nil
	s.Mapping = nil
}
