package recipe

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the shape every model reply must satisfy. Required-field
// presence is checked separately so that a structurally valid reply with a
// missing field classifies as IncompleteRecipe, not MalformedModelOutput.
const schemaJSON = `{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "description": {"type": "string"},
    "ingredients": {"type": "array", "items": {"type": "string"}},
    "instructions": {"type": "array", "items": {"type": "string"}},
    "servings": {"type": "string"},
    "prepTime": {"type": "string"},
    "cookTime": {"type": "string"}
  }
}`

var recipeSchema = jsonschema.MustCompileString("recipe.json", schemaJSON)

// PromptSchema is the schema description embedded in extraction prompts.
func PromptSchema() string {
	return `{
  "title": <string> (REQUIRED),
  "description": <string> (REQUIRED),
  "ingredients": <array of string> (REQUIRED),
  "instructions": <array of string, one step per entry> (REQUIRED),
  "servings": <string>,
  "prepTime": <string>,
  "cookTime": <string>
}`
}

// ParseModelOutput turns a raw model reply into a validated Recipe.
// Classification: not JSON or wrong shape -> MalformedModelOutput; valid
// JSON missing a required field -> IncompleteRecipe. The raw reply is
// carried on the failure for diagnostics.
func ParseModelOutput(raw string) (*Recipe, error) {
	content := stripFences(raw)

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, &Failure{
			Kind:      MalformedModelOutput,
			Message:   "model reply is not valid JSON",
			RawOutput: raw,
			Err:       err,
		}
	}

	if err := recipeSchema.Validate(v); err != nil {
		return nil, &Failure{
			Kind:      MalformedModelOutput,
			Message:   "model reply does not match the recipe schema",
			RawOutput: raw,
			Err:       err,
		}
	}

	var r Recipe
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, &Failure{
			Kind:      MalformedModelOutput,
			Message:   "model reply could not be decoded",
			RawOutput: raw,
			Err:       err,
		}
	}

	if missing := r.MissingFields(); len(missing) > 0 {
		return nil, &Failure{
			Kind:      IncompleteRecipe,
			Message:   "model reply is missing required fields: " + strings.Join(missing, ", "),
			RawOutput: raw,
		}
	}

	return &r, nil
}

// Models wrap JSON in markdown fences often enough that stripping them is
// part of parsing, not a retry.
func stripFences(s string) string {
	content := strings.TrimSpace(s)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
