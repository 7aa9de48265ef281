package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is:
//   - Logged with full technical details and the request ID (server-side)
//   - Returned to clients as a coded user message with an action suggestion
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode), or statusFor(err) picks the code
//  3. Error is mapped via core.MapError to get the user-friendly message
//  4. The message is rendered as JSON with go-chi/render

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/crmimport/internal/core"
	"github.com/JonMunkholm/crmimport/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"` // Unsatisfied required fields, when known
}

// respondError logs the technical error and renders its user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var missing *core.MissingRequiredFieldError
	if errors.As(err, &missing) {
		resp.Fields = missing.FieldIDs()
	}

	render.Status(r, statusCode)
	render.JSON(w, r, resp)
}

// statusFor picks the HTTP status of an import pipeline error.
func statusFor(err error) int {
	var (
		missing    *core.MissingRequiredFieldError
		commitErr  *core.CommitError
		transition *core.TransitionError
		maxBytes   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &missing), errors.Is(err, core.ErrNoMappedColumns):
		return http.StatusUnprocessableEntity
	case errors.As(err, &commitErr):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrUnknownSchema):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &transition):
		return http.StatusConflict
	}

	switch core.MapError(err).Code {
	case "FILE001", "FILE002", "FILE003", "FILE004", "FILE005", "VAL001", "VAL005", "VAL006":
		return http.StatusBadRequest
	case "IMP004", "IMP005":
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
