package ai

import (
	"encoding/json"
	"strings"
)

// Model output is expected, not trusted: prose around the JSON, a truncated
// tail, or Python-style literals are all common. Parse runs an ordered list of
// repair strategies and short-circuits on the first that yields an object.
// Callers supply their own default when every strategy misses.

type parseStrategy struct {
	name  string
	apply func(string) (map[string]interface{}, bool)
}

var parseStrategies = []parseStrategy{
	{name: "strict", apply: parseStrict},
	{name: "literals", apply: parseNormalizedLiterals},
	{name: "balance", apply: parseBalanced},
}

// Parse extracts a JSON object from free-form model output. The second return
// value is false when no strategy produced an object.
func Parse(raw string) (map[string]interface{}, bool) {
	candidate := extractCandidate(raw)
	if candidate == "" {
		return nil, false
	}

	for _, strategy := range parseStrategies {
		if result, ok := strategy.apply(candidate); ok {
			return result, true
		}
	}

	return nil, false
}

// extractCandidate narrows raw output to the most promising JSON span: a
// fenced code block containing braces wins, otherwise the substring from the
// first '{' to the last '}'. A fence without a closing marker still yields its
// tail, which the balancing strategy can often repair.
func extractCandidate(raw string) string {
	if block, ok := fencedBlock(raw); ok {
		return block
	}

	start := strings.Index(raw, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(raw, "}")
	if end < start {
		return strings.TrimSpace(raw[start:])
	}
	return strings.TrimSpace(raw[start : end+1])
}

func fencedBlock(raw string) (string, bool) {
	rest := raw
	for {
		open := strings.Index(rest, "```")
		if open < 0 {
			return "", false
		}
		rest = rest[open+3:]
		// Skip a language tag such as "json" on the opening fence line.
		if newline := strings.Index(rest, "\n"); newline >= 0 && newline < 20 {
			rest = rest[newline+1:]
		}

		body := rest
		if closing := strings.Index(rest, "```"); closing >= 0 {
			body = rest[:closing]
			rest = rest[closing+3:]
		} else {
			rest = ""
		}

		body = strings.TrimSpace(body)
		if strings.Contains(body, "{") && strings.Contains(body, "}") {
			return body, true
		}
		if rest == "" {
			return "", false
		}
	}
}

func parseStrict(candidate string) (map[string]interface{}, bool) {
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, false
	}
	return result, true
}

var literalReplacer = strings.NewReplacer(
	"None", "null",
	"NULL", "null",
	"Null", "null",
	"True", "true",
	"TRUE", "true",
	"False", "false",
	"FALSE", "false",
)

func parseNormalizedLiterals(candidate string) (map[string]interface{}, bool) {
	return parseStrict(literalReplacer.Replace(candidate))
}

// parseBalanced appends the closing braces/brackets a truncated response is
// missing, then retries a strict parse (with literal normalization, since a
// truncated response frequently has both defects).
func parseBalanced(candidate string) (map[string]interface{}, bool) {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(candidate); i++ {
		ch := candidate[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				stack = append(stack, ch)
			}
		case '}', ']':
			if !inString && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(stack) == 0 && !inString {
		return nil, false
	}

	repaired := strings.TrimRight(candidate, ", \n\t")
	if inString {
		repaired += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			repaired += "}"
		} else {
			repaired += "]"
		}
	}

	if result, ok := parseStrict(repaired); ok {
		return result, true
	}
	return parseNormalizedLiterals(repaired)
}
