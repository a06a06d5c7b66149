// Package llm turns chat-model replies into JSON objects, tolerating the
// commentary and code fences models like to wrap them in.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeKind classifies why a model reply could not be decoded.
type DecodeKind string

const (
	KindEmptyResponse DecodeKind = "empty_response"
	KindNoJSONObject  DecodeKind = "no_json_object"
	KindInvalidJSON   DecodeKind = "invalid_json"
)

// DecodeError reports an unrecoverable decode of one model reply. It is
// always recoverable by the caller: the orchestrator converts it into a
// fallback summary for the window, never a crash.
type DecodeError struct {
	Kind DecodeKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode model reply (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decode model reply (%s)", e.Kind)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ExtractJSONObject slices the first JSON object out of raw model text.
// Fenced blocks (``` or ```json) are unwrapped first, then the text between
// the first '{' and the last '}' is taken, which tolerates leading and
// trailing prose.
func ExtractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &DecodeError{Kind: KindEmptyResponse}
	}

	if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 3 {
			inner := parts[1]
			// Drop a leading language tag line like "json".
			if stripped := strings.TrimLeft(inner, " \t"); strings.HasPrefix(strings.ToLower(stripped), "json") {
				if _, rest, ok := strings.Cut(inner, "\n"); ok {
					inner = rest
				}
			}
			text = strings.TrimSpace(inner)
		}
	}

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last <= first {
		return "", &DecodeError{Kind: KindNoJSONObject}
	}
	return text[first : last+1], nil
}

// ParseObject extracts and strictly parses one JSON object from raw model
// text into a generic mapping.
func ParseObject(text string) (map[string]any, error) {
	slice, err := ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(slice), &out); err != nil {
		return nil, &DecodeError{Kind: KindInvalidJSON, Err: err}
	}
	return out, nil
}
