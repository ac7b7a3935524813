package item

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bytecrate/itemgraph/internal/platform/dbctx"
	"github.com/bytecrate/itemgraph/internal/schema"
)

// validate runs the ordered pipeline: embed id assignment, presence checks,
// schema resolution, JSON Schema evaluation. All failures land in the item's
// error collection; nothing here raises, so a failed save leaves no partial
// state. Returns true when the item may be persisted.
func (e *Engine) validate(dbc dbctx.Context, it *Item) bool {
	it.errs = ValidationErrors{}

	it.assignEmbedIDs()

	if strings.TrimSpace(it.TypeSlug()) == "" {
		it.errs.Add("type_slug", "can't be blank")
	}
	if len(it.payload) == 0 {
		it.errs.Add("payload", "can't be blank")
	}

	if it.srcErr != nil {
		if errors.Is(it.srcErr, schema.ErrNotFound) {
			it.errs.Add("type_slug", it.srcErr.Error())
		} else {
			it.errs.Add("type_slug", "schema could not be resolved: "+it.srcErr.Error())
		}
		return false
	}

	// Skipped only when the payload is empty, which presence already rejects.
	if it.src != nil && len(it.payload) > 0 {
		e.validatePayload(it)
	}

	return !it.errs.Any()
}

// validatePayload evaluates the payload against the resolved JSON Schema.
// Every violated constraint becomes one "<instance-path>: <message>"
// fragment; an unexpected evaluator failure is downgraded to a generic
// schema-validation error instead of propagating.
func (e *Engine) validatePayload(it *Item) {
	defer func() {
		if r := recover(); r != nil {
			e.warn("schema evaluator panicked", "type_slug", it.TypeSlug(), "panic", r)
			it.errs.Add("payload", "schema validation failed")
		}
	}()

	compiled, err := schema.Compile(it.src.JSONSchema())
	if err != nil {
		e.warn("schema document failed to compile", "type_slug", it.TypeSlug(), "error", err)
		it.errs.Add("payload", "schema validation failed")
		return
	}

	// Round-trip through JSON so in-memory values (ints, Embed fragments)
	// are evaluated exactly as they will be stored.
	raw, err := json.Marshal(it.payload)
	if err != nil {
		it.errs.Add("payload", "payload is not JSON-serializable")
		return
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		it.errs.Add("payload", "payload is not JSON-serializable")
		return
	}

	if err := compiled.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			it.errs.Add("payload", strings.Join(flattenSchemaErrors(ve), "; "))
		} else {
			e.warn("schema evaluator returned unexpected error", "type_slug", it.TypeSlug(), "error", err)
			it.errs.Add("payload", "schema validation failed")
		}
	}
}

// flattenSchemaErrors collects the leaf causes of a validation failure,
// keeping the JSON-pointer instance path so callers can highlight the exact
// failing field.
func flattenSchemaErrors(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{loc + ": " + ve.Message}
	}
	var out []string
	for _, cause := range ve.Causes {
		out = append(out, flattenSchemaErrors(cause)...)
	}
	return out
}
