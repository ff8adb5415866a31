package generation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// itemSchemaJSON is the structured-output contract the model is asked to
// honor. Responses that parse as JSON but fail this schema are treated the
// same as unparseable ones: degraded, not fatal.
const itemSchemaJSON = `{
	"type": "object",
	"required": ["stimulus", "question_stem", "options", "correct_option"],
	"properties": {
		"stimulus": {"type": "string"},
		"question_stem": {"type": "string"},
		"options": {
			"type": "object",
			"required": ["A", "B", "C", "D"],
			"properties": {
				"A": {"type": "string"},
				"B": {"type": "string"},
				"C": {"type": "string"},
				"D": {"type": "string"}
			},
			"additionalProperties": false
		},
		"correct_option": {"type": "string", "enum": ["A", "B", "C", "D"]},
		"rationale": {"type": "string"},
		"distractor_rationales": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

var itemSchema = gojsonschema.NewStringLoader(itemSchemaJSON)

// validateItemJSON checks raw model output against the item schema.
func validateItemJSON(raw string) error {
	result, err := gojsonschema.Validate(itemSchema, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("validate item: %w", err)
	}
	if !result.Valid() {
		return fmt.Errorf("item does not match schema: %v", result.Errors())
	}
	return nil
}
