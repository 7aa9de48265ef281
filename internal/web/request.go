package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/crmimport/internal/core"
)

var errNoFile = errors.New("no file provided")

// importForm is the non-file part of an analyze or import request.
// Overrides and Defaults arrive as JSON objects in multipart fields.
type importForm struct {
	FileName  string            `json:"fileName" validate:"required,max=255,filename"`
	Overrides map[string]string `json:"overrides" validate:"omitempty,max=500,dive,keys,numeric,endkeys,max=64"`
	Defaults  map[string]string `json:"defaults" validate:"omitempty,max=20,dive,keys,required,max=64,endkeys,max=255"`
}

// overrideMap converts the column keys to indexes.
func (f importForm) overrideMap() (map[int]string, error) {
	if len(f.Overrides) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(f.Overrides))
	for k, target := range f.Overrides {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid request: override column %q is not an integer", k)
		}
		out[i] = target
	}
	return out, nil
}

// upload is a parsed multipart import request.
type upload struct {
	data      []byte
	form      importForm
	overrides map[int]string
}

// readUpload reads the file and form fields of a multipart request, bounded
// by the configured maximum file size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("file too large: %w", err)
		}
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	form := importForm{FileName: header.Filename}
	if err := decodeField(r, "overrides", &form.Overrides); err != nil {
		return nil, err
	}
	if err := decodeField(r, "defaults", &form.Defaults); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(form); err != nil {
		return nil, err
	}

	overrides, err := form.overrideMap()
	if err != nil {
		return nil, err
	}
	return &upload{data: data, form: form, overrides: overrides}, nil
}

func decodeField(r *http.Request, name string, v any) error {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid request: %s must be a JSON object of strings", name)
	}
	return nil
}

// requestValidator validates request structs using struct tags.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterValidation("filename", isValidFilename)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &requestValidator{v: v}
}

// Struct validates x and folds every violation into one "invalid request" error.
func (rv *requestValidator) Struct(x any) error {
	err := rv.v.Struct(x)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid request: %w", err)
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = formatValidationError(fe)
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	case "numeric":
		return fmt.Sprintf("%s must be a column number", field)
	case "filename":
		return fmt.Sprintf("%s must be a plain file name", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isValidFilename rejects empty names and anything resembling a path.
func isValidFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	return !strings.Contains(name, "..") && !strings.ContainsAny(name, `/\`)
}

// defaultsOf converts the validated form defaults.
func defaultsOf(form importForm) core.Defaults {
	if len(form.Defaults) == 0 {
		return nil
	}
	d := make(core.Defaults, len(form.Defaults))
	for k, v := range form.Defaults {
		d[k] = v
	}
	return d
}
