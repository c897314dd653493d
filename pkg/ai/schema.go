package ai

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// gradeSchema is deliberately permissive: every field is optional and the
// client fills safe defaults, but a payload whose fields carry the wrong types
// is rejected the same way an unparseable one is.
const gradeSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "points_earned": {"type": "number"},
    "percentage": {"type": "number"},
    "feedback": {"type": "string"},
    "explanation": {"type": "string"},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "misconceptions": {"type": "array", "items": {"type": "string"}},
    "strengths": {"type": "array", "items": {"type": "string"}}
  }
}`

var gradeSchema = jsonschema.MustCompileString("grade.json", gradeSchemaJSON)

// validGradePayload expects keys already normalized to lower snake case.
func validGradePayload(payload map[string]interface{}) bool {
	return gradeSchema.Validate(payload) == nil
}
