package llm

// BuildRowsJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the model as a structured output constraint
// and also use it locally to validate what came back.
func BuildRowsJSONSchema() map[string]any {
	row := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"code":  map[string]any{"type": "string", "minLength": 1},
			"label": map[string]any{"type": "string"},
			"unit":  map[string]any{"type": "string"},
			"rate":  map[string]any{"type": "string", "pattern": `^-?\d+(\.\d{1,4})?$`},
			"notes": map[string]any{"type": "string"},
		},
		// either code or label may be missing on noisy rows; rows missing
		// both are dropped by the sanitizer before validation
		"required": []string{},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"rows": map[string]any{
				"type":  "array",
				"items": row,
			},
			"page_text": map[string]any{"type": "string"},
		},
		"required": []string{"rows"},
	}
}
