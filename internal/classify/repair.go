package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// RepairPayload cleans, truncation-repairs and validates the classifier's
// textual JSON payload into typed candidates. The steps are idempotent and
// order matters: fence stripping, bracket repair, parse, balanced-substring
// extraction, single-object coercion, then per-element validation. A payload
// truncated mid-object yields the valid prefix rather than an error; elements
// that fail validation are dropped individually, never the whole batch.
func RepairPayload(raw string) ([]Candidate, error) {
	clean := stripMarkdown(raw)
	if clean == "" {
		return nil, fmt.Errorf("empty payload")
	}

	clean = repairBrackets(clean)

	elements, err := parseElements(clean)
	if err != nil {
		// Direct parse failed; try the first balanced JSON substring.
		extracted := extractBalanced(clean)
		if extracted == "" {
			return nil, fmt.Errorf("no JSON found in payload: %w", err)
		}
		elements, err = parseElements(extracted)
		if err != nil {
			return nil, fmt.Errorf("failed to parse extracted JSON: %w", err)
		}
	}

	candidates := make([]Candidate, 0, len(elements))
	for i, el := range elements {
		candidate, ok := coerceCandidate(el)
		if !ok {
			slog.Debug("dropping invalid classifier element", "index", i)
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// stripMarkdown removes code-fence markers and stray emphasis the model may
// wrap around its JSON despite instructions.
func stripMarkdown(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.ReplaceAll(s, "**", "")
	return strings.TrimSpace(s)
}

// repairBrackets attempts to close an unterminated JSON payload. An
// unterminated array is truncated to its last complete object; an
// unterminated object gets however many closing braces are missing.
func repairBrackets(s string) string {
	if s == "" {
		return s
	}

	switch {
	case strings.HasPrefix(s, "[") && !strings.HasSuffix(s, "]"):
		// Truncate to the last complete object, then close the array.
		if idx := strings.LastIndex(s, "}"); idx != -1 {
			return s[:idx+1] + "]"
		}
		return "[]"
	case strings.HasPrefix(s, "{") && !strings.HasSuffix(s, "}"):
		open := strings.Count(s, "{")
		closed := strings.Count(s, "}")
		if open > closed {
			return s + strings.Repeat("}", open-closed)
		}
	}
	return s
}

// parseElements parses a JSON payload into generic elements, coercing a
// single object result into a one-element list.
func parseElements(s string) ([]map[string]any, error) {
	var arr []map[string]any
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		return arr, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	return []map[string]any{obj}, nil
}

// extractBalanced finds the first balanced [...] or {...} substring.
func extractBalanced(s string) string {
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return ""
	}

	open := rune(s[start])
	var closeBracket rune
	if open == '[' {
		closeBracket = ']'
	} else {
		closeBracket = '}'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := rune(s[i])
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == closeBracket:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// coerceCandidate validates one untrusted element into a Candidate. The
// classifier output is schema-less, so required fields are checked against
// the closed category/type sets and anything else is rejected, not coerced.
func coerceCandidate(el map[string]any) (Candidate, bool) {
	isFinancial, _ := el["isFinancial"].(bool)
	if !isFinancial {
		return Candidate{}, false
	}

	category := stringField(el, "category")
	if category != "BANK" && category != "UPI" {
		return Candidate{}, false
	}

	txnType := stringField(el, "type")
	if txnType != "DEBIT" && txnType != "CREDIT" {
		return Candidate{}, false
	}

	amount := stringField(el, "amount")
	if amount == "" {
		return Candidate{}, false
	}

	original := stringField(el, "originalMessage")
	if original == "" {
		return Candidate{}, false
	}

	confidence := 0.5
	if v, ok := el["confidence"].(float64); ok && v >= 0 && v <= 1 {
		confidence = v
	}

	return Candidate{
		IsFinancial:     true,
		Category:        category,
		Type:            txnType,
		Amount:          amount,
		Description:     stringField(el, "description"),
		OriginalMessage: original,
		Confidence:      confidence,
	}, true
}

// stringField reads a field that the model may emit as a string or a number.
func stringField(el map[string]any, key string) string {
	switch v := el[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
