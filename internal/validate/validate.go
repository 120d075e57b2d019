// Package validate checks request bodies against embedded JSON schemas.
package validate

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/and161185/taskhub/internal/errs"
)

const base = "https://taskhub.local/schemas/"

// Schema ids of the request bodies.
const (
	Register       = base + "register.json"
	Login          = base + "login.json"
	TaskCreate     = base + "task_create.json"
	TaskUpdate     = base + "task_update.json"
	CategoryCreate = base + "category_create.json"
	CategoryUpdate = base + "category_update.json"
	NoteCreate     = base + "note_create.json"
	NoteUpdate     = base + "note_update.json"
)

//go:embed schemas
var schemaFS embed.FS

// Error lists every violation found in a document. It matches errs.ErrValidation.
type Error struct {
	Details []string
}

func (e *Error) Error() string {
	return "invalid request: " + strings.Join(e.Details, "; ")
}

// Unwrap lets errors.Is match errs.ErrValidation.
func (e *Error) Unwrap() error { return errs.ErrValidation }

// Validator validates JSON documents against schemas keyed by $id.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidatorFromFS builds a Validator from the json files in the root of fsys,
// resolving $ref against the json files in refs/.
func NewValidatorFromFS(fsys fs.FS) (*Validator, error) {
	readDir := func(dir string) ([]string, error) {
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("cannot read dir %w", err)
		}
		var out []string
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
				continue
			}
			p := e.Name()
			if dir != "." {
				p = dir + "/" + e.Name()
			}
			b, err := fs.ReadFile(fsys, p)
			if err != nil {
				return nil, fmt.Errorf("cannot read file '%s' %w", p, err)
			}
			out = append(out, string(b))
		}
		return out, nil
	}

	top, err := readDir(".")
	if err != nil {
		return nil, err
	}
	refs, err := readDir("refs")
	if err != nil {
		return nil, err
	}
	return NewValidator(top, refs)
}

// NewValidator compiles the top level schemas. Each must carry an $id and may
// only reference schemas from refs.
func NewValidator(schemas, refs []string) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(schemas))}
	for _, str := range schemas {
		var head struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal([]byte(str), &head); err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, str)
		}
		if head.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", str)
		}
		sl := gojsonschema.NewSchemaLoader()
		for _, ref := range refs {
			if err := sl.AddSchemas(gojsonschema.NewStringLoader(ref)); err != nil {
				return nil, fmt.Errorf("cannot add ref: %w", err)
			}
		}
		s, err := sl.Compile(gojsonschema.NewStringLoader(str))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s: %w", head.ID, err)
		}
		v.schemas[head.ID] = s
	}
	return v, nil
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
	defaultErr  error
)

// Default returns the validator built from the embedded request schemas.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(schemaFS, "schemas")
		if err != nil {
			defaultErr = err
			return
		}
		defaultV, defaultErr = NewValidatorFromFS(sub)
	})
	return defaultV, defaultErr
}

// HasSchema reports whether schemaID is known.
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemas[schemaID]
	return ok
}

// ValidateBytes validates a raw JSON document against schemaID.
// A document that is not JSON or breaks the schema yields *Error.
func (v *Validator) ValidateBytes(doc []byte, schemaID string) error {
	s, ok := v.schemas[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}
	if !json.Valid(doc) {
		return &Error{Details: []string{"body is not valid JSON"}}
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &Error{Details: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	details := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		details = append(details, e.String())
	}
	return &Error{Details: details}
}
