package extract

import (
	"fmt"
	"strings"
	"time"
)

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Extra safety: keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// rawCandidate is one transaction object as decoded from the model output,
// before field typing.
type rawCandidate struct {
	date        string
	amount      float64
	hasAmount   bool
	category    string
	description string
}

// decodeCandidates pulls the transactions array out of the decoded model
// output and types each element's fields, rejecting structural surprises.
func decodeCandidates(parsed map[string]interface{}, asOf time.Time) ([]rawCandidate, error) {
	txAny, ok := parsed["transactions"]
	if !ok {
		return nil, fmt.Errorf("missing 'transactions' key in model output")
	}

	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'transactions' is %T, want array", txAny)
	}

	out := make([]rawCandidate, 0, len(txSlice))
	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("transaction %d is %T, want object", i, item)
		}

		var c rawCandidate
		var err error
		if c.date, err = getStringField(obj, "date", false); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if c.date == "" {
			// Unstated date resolves to the request's as-of date.
			c.date = asOf.UTC().Format("2006-01-02")
		}
		if c.category, err = getStringField(obj, "category", true); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if c.description, err = getStringField(obj, "description", true); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if c.amount, c.hasAmount, err = getFloat64Field(obj, "amount"); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}

		out = append(out, c)
	}

	return out, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	if required && strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return s, nil
}

func getFloat64Field(m map[string]interface{}, key string) (float64, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, fmt.Errorf("missing required field %q", key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return f, true, nil
}
