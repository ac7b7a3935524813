package schema

// Builtin record types. Tenants can define further types as item_schemas
// rows, but these always win resolution for their slugs.
func init() {
	Register(&Definition{
		TypeSlug: "contact",
		FieldDefs: map[string]FieldDef{
			"first_name": {Type: "string"},
			"last_name":  {Type: "string"},
			"email":      {Type: "string", Constraints: map[string]any{"format": "email"}},
		},
		EmbedDefs: map[string]EmbedDef{
			"phone_numbers":   {Cardinality: Many},
			"mailing_address": {Cardinality: One},
		},
		LinkDefs: map[string]LinkDef{
			"company": {Cardinality: One, Target: "company"},
			"notes":   {Cardinality: Many, Target: "note"},
		},
		Required: []string{"first_name"},
	})

	Register(&Definition{
		TypeSlug: "company",
		FieldDefs: map[string]FieldDef{
			"name":   {Type: "string", Constraints: map[string]any{"minLength": 1}},
			"domain": {Type: "string"},
		},
		LinkDefs: map[string]LinkDef{
			"contacts": {Cardinality: Many, Target: "contact"},
			"notes":    {Cardinality: Many, Target: "note"},
		},
		Required: []string{"name"},
	})

	Register(&Definition{
		TypeSlug: "note",
		FieldDefs: map[string]FieldDef{
			"body":   {Type: "string"},
			"pinned": {Type: "boolean"},
		},
		Required: []string{"body"},
	})
}
