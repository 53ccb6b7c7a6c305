package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	js "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/spec-kit/incident-service/internal/config"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// Schema names for incident registration bodies.
const (
	SchemaIncidentWeb    = "incident_web"
	SchemaIncidentMobile = "incident_mobile"
)

// ErrNotJSONObject is the message returned when a body is not a JSON object.
const ErrNotJSONObject = "Request body must be a JSON object."

// Field describes a single required string property.
type Field struct {
	Name      string
	Format    string
	MinLength int
	MaxLength int
}

// Schema is a named list of required string fields.
type Schema struct {
	Name   string
	Fields []Field
}

// IncidentSchemas builds the registration schemas from configured bounds.
func IncidentSchemas(cfg config.ValidationConfig) []Schema {
	return []Schema{
		{
			Name: SchemaIncidentWeb,
			Fields: []Field{
				{Name: "email", Format: "email", MinLength: 1, MaxLength: cfg.WebEmailMaxLength},
				{Name: "name", MinLength: 1, MaxLength: cfg.WebNameMaxLength},
				{Name: "description", MinLength: 1, MaxLength: cfg.WebDescriptionMaxLength},
			},
		},
		{
			Name: SchemaIncidentMobile,
			Fields: []Field{
				{Name: "name", MinLength: 1, MaxLength: cfg.MobileNameMaxLength},
				{Name: "description", MinLength: 1, MaxLength: cfg.MobileDescriptionMaxLength},
			},
		},
	}
}

func (s Schema) document() map[string]any {
	props := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		prop := map[string]any{"type": "string"}
		if f.MinLength > 0 {
			prop["minLength"] = f.MinLength
		}
		if f.MaxLength > 0 {
			prop["maxLength"] = f.MaxLength
		}
		if f.Format != "" {
			prop["format"] = f.Format
		}
		props[f.Name] = prop
		required = append(required, f.Name)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func (s Schema) field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type compiled struct {
	schema   Schema
	compiled *js.Schema
}

// Validator checks raw request bodies against named schemas.
type Validator struct {
	schemas map[string]compiled
}

// NewValidator compiles every schema up front.
func NewValidator(schemas ...Schema) (*Validator, error) {
	c := js.NewCompiler()
	c.Draft = js.Draft2020
	c.AssertFormat = true
	c.Formats["email"] = isEmail

	v := &Validator{schemas: make(map[string]compiled, len(schemas))}
	for _, s := range schemas {
		doc, err := json.Marshal(s.document())
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", s.Name, err)
		}
		resourceURL := fmt.Sprintf("mem://schema/%s.json", s.Name)
		if err := c.AddResource(resourceURL, bytes.NewReader(doc)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", s.Name, err)
		}
		sch, err := c.Compile(resourceURL)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
		}
		v.schemas[s.Name] = compiled{schema: s, compiled: sch}
	}
	return v, nil
}

// Decode validates raw against the named schema and unmarshals it into dst.
// It never performs I/O and never mutates raw.
func (v *Validator) Decode(name string, raw []byte, dst any) error {
	entry, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return apperrors.NewValidationError(ErrNotJSONObject, nil)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return apperrors.NewValidationError(ErrNotJSONObject, nil)
	}

	if err := entry.compiled.Validate(obj); err != nil {
		var ve *js.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		details := fieldErrors(entry.schema, obj, ve)
		return apperrors.NewValidationError(summary(details), details)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.NewValidationError(ErrNotJSONObject, nil)
	}
	return nil
}

// fieldErrors flattens the leaf causes of a validation error into field messages.
func fieldErrors(s Schema, obj map[string]any, root *js.ValidationError) map[string][]string {
	out := map[string][]string{}
	add := func(field, msg string) {
		for _, existing := range out[field] {
			if existing == msg {
				return
			}
		}
		out[field] = append(out[field], msg)
	}

	var walk func(ve *js.ValidationError)
	walk = func(ve *js.ValidationError) {
		if len(ve.Causes) > 0 {
			for _, cause := range ve.Causes {
				walk(cause)
			}
			return
		}
		keyword := ve.KeywordLocation[strings.LastIndex(ve.KeywordLocation, "/")+1:]
		field := strings.TrimPrefix(ve.InstanceLocation, "/")
		switch keyword {
		case "required":
			for _, f := range s.Fields {
				if _, ok := obj[f.Name]; !ok {
					add(f.Name, "Missing data for required field.")
				}
			}
		case "additionalProperties":
			for key := range obj {
				if _, known := s.field(key); !known {
					add(key, "Unknown field.")
				}
			}
		case "type":
			add(field, "Not a valid string.")
		case "format":
			add(field, "Not a valid email address.")
		case "minLength", "maxLength":
			f, _ := s.field(field)
			add(field, fmt.Sprintf("Length must be between %d and %d.", f.MinLength, f.MaxLength))
		default:
			if field == "" {
				field = "_schema"
			}
			add(field, ve.Message)
		}
	}
	walk(root)
	return out
}

// summary renders the first failing field (alphabetically) as a single message.
func summary(details map[string][]string) string {
	if len(details) == 0 {
		return "Invalid request body."
	}
	fields := make([]string, 0, len(details))
	for name := range details {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	first := fields[0]
	return fmt.Sprintf("Invalid value for %s: %s", first, details[first][0])
}
