package ai

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxPromptField caps interpolated user text so a pathological answer cannot
// blow up the request body or the provider's context window.
const maxPromptField = 8000

var promptSanitizer = bluemonday.StrictPolicy()

// sanitizeField strips markup and truncates text before it is interpolated
// into a grading prompt.
func sanitizeField(text string) string {
	clean := strings.TrimSpace(promptSanitizer.Sanitize(text))
	if len(clean) > maxPromptField {
		clean = clean[:maxPromptField]
	}
	return clean
}

func gradingSystemPrompt() string {
	return "You are a strict but fair grader for an educational platform. " +
		"Grade the student's answer against the question and reference material. " +
		"Respond with a single JSON object and nothing else."
}

func buildGradingPrompt(input GradeInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Question\n")
	builder.WriteString(sanitizeField(input.Question))
	builder.WriteString("\n\n## Question Type\n")
	builder.WriteString(input.QuestionType)
	builder.WriteString("\n\n## Student Answer\n")
	builder.WriteString(sanitizeField(input.Answer))
	if input.CorrectAnswer != "" {
		builder.WriteString("\n\n## Reference Answer\n")
		builder.WriteString(sanitizeField(input.CorrectAnswer))
	}
	if input.Rubric != "" {
		builder.WriteString("\n\n## Rubric\n")
		builder.WriteString(sanitizeField(input.Rubric))
	}
	builder.WriteString(fmt.Sprintf("\n\n## Maximum Points\n%g\n", input.MaxPoints))
	builder.WriteString("\nReturn JSON with fields: points_earned (0-")
	builder.WriteString(fmt.Sprintf("%g", input.MaxPoints))
	builder.WriteString("), percentage (0-100), feedback, explanation, ")
	builder.WriteString("improvements (array), misconceptions (array), strengths (array).")
	return builder.String()
}
