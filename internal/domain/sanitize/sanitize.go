// Package sanitize reconciles nominally-JSON model output with the shape a caller declared.
//
// Parse applies, in order: thinking-block removal, markdown fence removal, balanced JSON
// extraction, parsing, shape coercion and nested array-field coercion. It never panics and
// never returns an error: a result that cannot be recovered is reported as (nil, false).
package sanitize

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Shape is the top-level JSON kind a caller expects.
type Shape int

const (
	// ShapeObject expects a JSON object.
	ShapeObject Shape = iota
	// ShapeArray expects a JSON array.
	ShapeArray
)

func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

// MaxInputBytes bounds the model output Parse will inspect. Larger answers are treated as
// unusable rather than scanned.
const MaxInputBytes = 2 << 20

var (
	thinkBlockRe  = regexp.MustCompile(`(?is)<(think|thinking)>.*?</(?:think|thinking)>`)
	thinkOpenRe   = regexp.MustCompile(`(?i)<(?:think|thinking)>`)
	thinkCloseRe  = regexp.MustCompile(`(?is)^.*?</(?:think|thinking)>`)
	jsonFenceRe   = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\r?\n?(.*?)\\s*```")
	fenceMarkerRe = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t]*$")
)

// StripThinking removes reasoning blocks delimited by <think>/<thinking> tags.
// An unterminated start marker strips everything after it when it precedes the first JSON
// bracket; later it is taken to be content. A stray end marker strips everything before it.
func StripThinking(text string) string {
	out := thinkBlockRe.ReplaceAllString(text, "")
	if loc := thinkOpenRe.FindStringIndex(out); loc != nil {
		if b := strings.IndexAny(out, "{["); b < 0 || loc[0] < b {
			out = out[:loc[0]]
		}
	}
	out = thinkCloseRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// StripFences returns the body of the first fenced code block, or text with any
// dangling fence marker lines removed when no complete block exists.
func StripFences(text string) string {
	if m := jsonFenceRe.FindStringSubmatch(text); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(fenceMarkerRe.ReplaceAllString(text, ""))
}

// JoinFences returns the bodies of every fenced code block joined by a blank line, or
// text with dangling fence markers removed when no complete block exists.
func JoinFences(text string) string {
	matches := jsonFenceRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(fenceMarkerRe.ReplaceAllString(text, ""))
	}
	bodies := make([]string, 0, len(matches))
	for _, m := range matches {
		if body := strings.TrimSpace(m[1]); body != "" {
			bodies = append(bodies, body)
		}
	}
	return strings.Join(bodies, "\n\n")
}

// Clean prepares free-text output for display: thinking blocks are removed and the
// result trimmed. Fences are kept because free-text recipes may legitimately return code.
func Clean(text string) string {
	return StripThinking(text)
}

// ExtractJSON returns the JSON object or array carried by text.
//
// Text that starts with a bracket must be valid JSON as a whole; a truncated answer is not
// searched for inner values. Otherwise the first balanced, valid value after the prose is
// returned.
func ExtractJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > MaxInputBytes {
		return "", false
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed, json.Valid([]byte(trimmed))
	}
	for _, sp := range balancedSpans(trimmed) {
		candidate := trimmed[sp.start : sp.end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

type span struct{ start, end int }

// balancedSpans returns the outermost balanced bracket spans of s in order, in one pass.
// Spans nested in a closed span are dropped, so the spans are disjoint and validating all
// of them stays linear. A mismatched closer discards the brackets open at that point.
// Spans opened after a bracket left unclosed at the end of s are dropped.
// Brackets inside string literals are ignored.
func balancedSpans(s string) []span {
	var (
		opens            []int
		spans            []span
		inString, escape bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = len(opens) > 0
		case '{', '[':
			opens = append(opens, i)
		case '}', ']':
			if len(opens) == 0 {
				continue
			}
			p := opens[len(opens)-1]
			if closer(s[p]) != c {
				opens = opens[:0]
				continue
			}
			opens = opens[:len(opens)-1]
			for len(spans) > 0 && spans[len(spans)-1].start > p {
				spans = spans[:len(spans)-1]
			}
			spans = append(spans, span{start: p, end: i})
		}
	}
	// Spans inside a bracket that never closes belong to a truncated value.
	if len(opens) > 0 {
		for len(spans) > 0 && spans[len(spans)-1].start > opens[0] {
			spans = spans[:len(spans)-1]
		}
	}
	return spans
}

func closer(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}

// Parse normalizes raw into a value of the declared shape.
//
// For ShapeArray the value is always a []any when ok is true; an object without any
// array-valued field yields an empty array. For ShapeObject the value is a map[string]any.
// Numbers are decoded as json.Number so integer fields survive re-decoding.
func Parse(raw string, shape Shape, arrayFields ...string) (any, bool) {
	if len(raw) > MaxInputBytes {
		return nil, false
	}
	text := StripFences(StripThinking(raw))
	candidate, ok := ExtractJSON(text)
	if !ok {
		return nil, false
	}
	value, err := decode([]byte(candidate))
	if err != nil {
		return nil, false
	}

	switch shape {
	case ShapeArray:
		value, ok = coerceArray(value, []byte(candidate))
	default:
		value, ok = coerceObject(value)
	}
	if !ok {
		return nil, false
	}
	return EnsureArrayFields(value, arrayFields...), true
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func coerceArray(value any, raw []byte) (any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case map[string]any:
		if inner, ok := firstArrayField(raw); ok {
			if arr, err := decode(inner); err == nil {
				return arr, true
			}
		}
		return []any{}, true
	default:
		return nil, false
	}
}

// coerceObject accepts an object, or a non-empty array whose first element is an object.
func coerceObject(value any) (any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case []any:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

// firstArrayField walks the top-level object in document order and returns the raw
// value of the first array-valued member. Go maps do not keep key order, so this reads
// the token stream instead of the decoded map.
func firstArrayField(raw []byte) (json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, false
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return nil, false
		}
		var member json.RawMessage
		if err := dec.Decode(&member); err != nil {
			return nil, false
		}
		if trimmed := bytes.TrimSpace(member); len(trimmed) > 0 && trimmed[0] == '[' {
			return trimmed, true
		}
	}
	return nil, false
}

// EnsureArrayFields replaces missing or non-array values of the named fields with an
// empty array. It applies to an object, or to every object element of an array.
func EnsureArrayFields(value any, fields ...string) any {
	if len(fields) == 0 {
		return value
	}
	switch v := value.(type) {
	case map[string]any:
		ensureFields(v, fields)
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				ensureFields(obj, fields)
			}
		}
	}
	return value
}

func ensureFields(obj map[string]any, fields []string) {
	for _, f := range fields {
		if _, ok := obj[f].([]any); !ok {
			obj[f] = []any{}
		}
	}
}
