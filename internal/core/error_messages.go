package core

// error_messages.go defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Database Errors (DB000-DB099)
//
//	DB000 - Commit rejected: The record store rejected the import
//	DB001 - Duplicate key                 Patterns: "duplicate key"
//	DB002 - Unique constraint             Patterns: "unique constraint", "violates unique"
//	DB003 - Foreign key                   Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused            Patterns: "connection refused"
//	DB005 - Connection reset              Patterns: "connection reset"
//	DB006 - Timeout                       Patterns: "timeout"
//	DB007 - Deadlock                      Patterns: "deadlock"
//	DB008 - Check constraint              Patterns: "check constraint"
//	DB009 - Not null                      Patterns: "not null constraint", "violates not-null"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid request              Patterns: "invalid request"
//	VAL003 - Required field: a schema-critical field has no column and no default
//	VAL005 - Unknown field: a mapping targets a field outside the schema
//	VAL006 - Bad column                   Patterns: "mapping column"
//	VAL007 - Nothing mapped: no column targets a field
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large              Patterns: "file too large", "request body too large"
//	FILE002 - Invalid spreadsheet         Typed: *ParseError
//	FILE003 - Encoding error              Patterns: "encoding error"
//	FILE004 - No file                     Patterns: "no file provided"
//	FILE005 - Empty file                  Typed: *EmptyFileError
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Import cancelled             Patterns: "import cancelled"
//	IMP002 - System busy                  Patterns: "too many imports"
//	IMP003 - Wrong step                   Patterns: "invalid transition"
//	IMP004 - Request cancelled            Patterns: "context canceled"
//	IMP005 - Request timeout              Patterns: "context deadline exceeded"
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Unknown schema               Patterns: "unknown schema"
//
// # Caller Errors (AUTH001-AUTH099)
//
//	AUTH001 - Missing owner               Patterns: "missing owner"
//	AUTH002 - Invalid owner               Patterns: "invalid owner"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited                Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the original technical error.
//
// Typed errors are resolved with errors.As before any pattern is tried.
// Patterns are matched case-insensitively using strings.Contains and the
// first matching pattern wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`          // What happened (user-friendly)
	Action  string `json:"action,omitempty"` // What to do about it
	Code    string `json:"code"`             // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// More specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	// Database constraint errors
	{"duplicate key", UserMessage{"A record with this ID already exists", "Remove the duplicated rows and import again", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Check for duplicate entries in your file", "DB002"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Review your data for duplicate key values", "DB002"}},
	{"foreign key constraint", UserMessage{"Referenced record does not exist", "Check that the owner account exists", "DB003"}},
	{"violates foreign key", UserMessage{"Referenced record does not exist", "Check that the owner account exists", "DB003"}},
	{"check constraint", UserMessage{"A value is not allowed for its field", "Check enumerated columns such as Priority (low, medium, high)", "DB008"}},
	{"not null constraint", UserMessage{"A required value is missing", "Select a default for every assigned field", "DB009"}},
	{"violates not-null", UserMessage{"A required value is missing", "Select a default for every assigned field", "DB009"}},

	// Database connection errors
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"timeout", UserMessage{"Operation timed out", "Try importing a smaller file or try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// File errors
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller files", "FILE001"}},
	{"request body too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller files", "FILE001"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV or Excel file to import", "FILE004"}},

	// Import errors
	{"import cancelled", UserMessage{"Import was cancelled", "Start a new import when ready", "IMP001"}},
	{"too many imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP002"}},
	{"invalid transition", UserMessage{"This step is not available right now", "Finish or cancel the current import first", "IMP003"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "IMP004"}},
	{"context deadline exceeded", UserMessage{"Request timed out", "Try importing a smaller file or check your connection", "IMP005"}},

	// Schema errors
	{"unknown schema", UserMessage{"Unknown import type", "Choose leads or customers", "SCH001"}},
	{"unknown field", UserMessage{"A column is mapped to a field that does not exist", "Pick a field from the list or skip the column", "VAL005"}},
	{"mapping column", UserMessage{"A mapping names a column that is not in the file", "Check the column numbers of your overrides", "VAL006"}},
	{"invalid request", UserMessage{"The import request is malformed", "Check the overrides and defaults values", "VAL001"}},

	// Caller errors
	{"missing owner", UserMessage{"No user was given for this import", "Sign in again and retry", "AUTH001"}},
	{"invalid owner", UserMessage{"The user id is not valid", "Sign in again and retry", "AUTH002"}},

	// Rate limiting
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// commitMessage is used for rejected batches whose cause matches no pattern.
var commitMessage = UserMessage{
	Message: "Failed to import data",
	Action:  "Nothing was saved. Fix the file and import it again",
	Code:    "DB000",
}

// MapError converts a technical error to a user-friendly message.
// Typed import errors are resolved first, then known patterns are searched
// case-insensitively. If nothing matches, ERR000 is returned.
//
// Example:
//
//	err := &EmptyFileError{}
//	msg := MapError(err)
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		parseErr   *ParseError
		emptyErr   *EmptyFileError
		missingErr *MissingRequiredFieldError
		commitErr  *CommitError
	)
	switch {
	case errors.As(err, &missingErr):
		labels := make([]string, len(missingErr.Fields))
		for i, f := range missingErr.Fields {
			labels[i] = strings.ToLower(f.Label)
		}
		return UserMessage{
			Message: "A required field has no column and no default",
			Action:  fmt.Sprintf("Please select a default %s for %s without one", strings.Join(labels, " and "), missingErr.Schema),
			Code:    "VAL003",
		}
	case errors.Is(err, ErrNoMappedColumns):
		return UserMessage{
			Message: "No columns are mapped",
			Action:  "Map at least one column to a field",
			Code:    "VAL007",
		}
	case errors.As(err, &emptyErr):
		return UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a file with a header row",
			Code:    "FILE005",
		}
	case errors.As(err, &parseErr):
		return UserMessage{
			Message: "Failed to read file",
			Action:  "Upload a CSV or Excel (.xlsx) file",
			Code:    "FILE002",
		}
	case errors.As(err, &commitErr):
		if msg := matchPattern(commitErr.Err); msg.Code != defaultMessage.Code {
			return msg
		}
		return commitMessage
	}

	return matchPattern(err)
}

func matchPattern(err error) UserMessage {
	if err == nil {
		return defaultMessage
	}
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
