package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/crmimport/internal/core"
	"github.com/JonMunkholm/crmimport/internal/logging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// previewRows is how many data rows an analyze response echoes back.
const previewRows = 5

type healthResponse struct {
	Status  string                   `json:"status"`
	Imports core.ImportLimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{Status: "ok", Imports: s.service.LimiterStatus()})
}

type schemaResponse struct {
	core.SchemaInfo
	Fields   []core.FieldDescriptor `json:"fields"`
	Template string                 `json:"template"`
}

// handleListSchemas returns every importable schema with its fields.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas := s.service.Schemas()
	out := make([]schemaResponse, len(schemas))
	for i, sc := range schemas {
		out[i] = schemaResponse{
			SchemaInfo: sc.Info,
			Fields:     sc.Fields,
			Template:   fmt.Sprintf("/api/schemas/%s/template", sc.Info.ID),
		}
	}
	render.JSON(w, r, out)
}

// handleDownloadTemplate serves the exemplar workbook of a schema.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	id := core.SchemaID(chi.URLParam(r, "schema"))

	data, name, err := s.service.Template(id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("template write failed", "schema", id, "error", err)
	}
}

// handleOptions returns the caller's default option lists.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())

	opts, err := s.service.Options(r.Context(), owner)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, opts)
}

type analyzeResponse struct {
	Schema   core.SchemaInfo     `json:"schema"`
	FileName string              `json:"fileName"`
	Header   core.Header         `json:"header"`
	Rows     int                 `json:"rows"`
	Preview  [][]string          `json:"preview"`
	Mapping  core.Mapping        `json:"mapping"`
	Defaults core.Defaults       `json:"defaults"`
	Options  core.DefaultOptions `json:"options"`
	Ready    bool                `json:"ready"`
	Problem  *ErrorResponse      `json:"problem,omitempty"`
}

// handleAnalyze parses a file and returns the proposed mapping and defaults
// without committing anything. Caller overrides and defaults are applied so
// the client can check a configuration before importing.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())
	id := core.SchemaID(chi.URLParam(r, "schema"))

	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.Prepare(r.Context(), owner, id, up.form.FileName, up.data)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if err := s.service.Configure(sess, up.overrides, defaultsOf(up.form)); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	resp := analyzeResponse{
		Schema:   sess.Schema.Info,
		FileName: sess.FileName,
		Header:   sess.Header,
		Rows:     len(sess.Rows),
		Preview:  make([][]string, 0, previewRows),
		Mapping:  sess.Mapping,
		Defaults: sess.Defaults,
		Options:  sess.Options,
		Ready:    true,
	}
	for i := 0; i < len(sess.Rows) && i < previewRows; i++ {
		resp.Preview = append(resp.Preview, sess.Rows[i].Cells)
	}

	if err := sess.Validate(); err != nil {
		msg := core.MapError(err)
		resp.Ready = false
		resp.Problem = &ErrorResponse{Error: msg.Message, Message: msg.Message, Action: msg.Action, Code: msg.Code}
		var missing *core.MissingRequiredFieldError
		if errors.As(err, &missing) {
			resp.Problem.Fields = missing.FieldIDs()
		}
	}

	render.JSON(w, r, resp)
}

type importResponse struct {
	Notification core.Notification `json:"notification"`
	Result       core.ImportResult `json:"result"`
	Missing      []string          `json:"missing,omitempty"`
}

// handleImport runs a complete import: parse, auto-map, apply the caller's
// overrides and defaults, validate and commit.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	owner, _ := OwnerFromContext(r.Context())
	id := core.SchemaID(chi.URLParam(r, "schema"))

	up, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	rec := &core.RecordingNotifier{}
	result, err := s.service.Import(r.Context(), core.ImportRequest{
		Owner:     owner,
		Schema:    id,
		FileName:  up.form.FileName,
		Data:      up.data,
		Overrides: up.overrides,
		Defaults:  defaultsOf(up.form),
	}, rec)

	resp := importResponse{Result: result}
	if n, ok := rec.Last(); ok {
		resp.Notification = n
	}

	if err != nil {
		if resp.Notification.Kind == "" {
			resp.Notification = core.FailureNotification(err)
		}
		var missing *core.MissingRequiredFieldError
		if errors.As(err, &missing) {
			resp.Missing = missing.FieldIDs()
		}
		render.Status(r, statusFor(err))
	}
	render.JSON(w, r, resp)
}
