package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrFormat tags structurally invalid schema documents. These are rejected
// when the schema row is saved and never reach item validation.
var ErrFormat = errors.New("invalid schema document")

var slugRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func ValidateSlug(slug string) error {
	if !slugRe.MatchString(slug) {
		return fmt.Errorf("%w: slug %q must be lowercase snake_case", ErrFormat, slug)
	}
	return nil
}

// ValidateDocument checks that doc is a usable JSON Schema: an object with a
// top-level "type" that compiles under draft 2020-12.
func ValidateDocument(doc map[string]any) error {
	if doc == nil {
		return fmt.Errorf("%w: schema must be a JSON object", ErrFormat)
	}
	if _, ok := doc["type"]; !ok {
		return fmt.Errorf("%w: schema must declare a top-level \"type\"", ErrFormat)
	}
	if _, err := Compile(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return nil
}

// Compile builds an evaluator for a schema document, defaulting the dialect
// to draft 2020-12 when the document does not name one.
func Compile(doc map[string]any) (*jsonschema.Schema, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: schema must be a JSON object", ErrFormat)
	}
	if _, ok := doc["$schema"]; !ok {
		withDialect := make(map[string]any, len(doc)+1)
		for k, v := range doc {
			withDialect[k] = v
		}
		withDialect["$schema"] = Draft2020URL
		doc = withDialect
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("inline://schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile("inline://schema.json")
}
