package layerconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/compotron/compose/internal/domain"
)

// Validator checks a layer or interface's raw document against a JSON
// Schema before the resolver and planner ever see it, surfacing structural
// problems (wrong types for `includes`/`ignore`/`tactics`) as a single
// MalformedConfig with a JSON-pointer to the offending field, per
// SPEC_FULL.md §4.2.
type Validator struct {
	schema *jsonschema.Schema
}

// DefaultSchemaJSON is the built-in schema applied when no --schema flag
// overrides it: it only constrains the shape of the recognised keys,
// leaving every other key free-form since composer.yaml is otherwise an
// open document.
const DefaultSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "includes": {"anyOf": [{"type": "string"}, {"type": "array", "items": {"type": "string"}}]},
    "ignore": {"type": "array", "items": {"type": "string"}},
    "tactics": {"type": "array", "items": {"type": "string"}},
    "is": {"type": "string"},
    "name": {"type": "string"},
    "metadata": {
      "type": "object",
      "properties": {"deletes": {"type": "array", "items": {"type": "string"}}}
    },
    "config": {
      "type": "object",
      "properties": {"deletes": {"type": "array", "items": {"type": "string"}}}
    }
  }
}`

// NewValidator compiles schemaJSON (pass DefaultSchemaJSON for the
// built-in shape, or the contents of a --schema file).
func NewValidator(schemaJSON []byte) domain.Result[*Validator] {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return domain.Err[*Validator](fmt.Errorf("layerconfig: parse schema: %w", err))
	}
	const resourceName = "compose://layer-config-schema.json"
	if err := compiler.AddResource(resourceName, doc); err != nil {
		return domain.Err[*Validator](fmt.Errorf("layerconfig: add schema resource: %w", err))
	}
	schema, err := compiler.Compile(resourceName)
	if err != nil {
		return domain.Err[*Validator](fmt.Errorf("layerconfig: compile schema: %w", err))
	}
	return domain.Ok(&Validator{schema: schema})
}

// Validate checks doc against the schema, returning a MalformedConfig
// naming path and the offending field on failure.
func (v *Validator) Validate(path string, doc domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return domain.MalformedConfig{Path: path, Reason: err.Error()}
	}
	var instance interface{}
	if err := json.Unmarshal(raw, &instance); err != nil {
		return domain.MalformedConfig{Path: path, Reason: err.Error()}
	}
	if err := v.schema.Validate(instance); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			field := ""
			if len(ve.InstanceLocation) > 0 {
				field = ve.InstanceLocation[0]
			}
			return domain.MalformedConfig{Path: path, Field: field, Reason: ve.Error()}
		}
		return domain.MalformedConfig{Path: path, Reason: err.Error()}
	}
	return nil
}
