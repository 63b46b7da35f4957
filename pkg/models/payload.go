package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payload is the opaque JSON object returned by the remote service.
// No field is guaranteed present; use the probe helpers instead of indexing.
type Payload map[string]any

// Known payload fields.
const (
	FieldURL            = "url"
	FieldLinks          = "links"
	FieldAllLinks       = "all_links"
	FieldRelatedLinks   = "related_links"
	FieldTotalFound     = "total_found"
	FieldTotalRequested = "total_requested"
	FieldTitle          = "title"
	FieldContent        = "content"
	FieldMediaLinks     = "media_links"
	FieldError          = "error"
	FieldItems          = "items"
)

// ErrorPayload builds the payload shown for a failed lifecycle.
func ErrorPayload(message string) Payload {
	return Payload{FieldError: message}
}

// Has reports whether field is present with a non-null value.
func (p Payload) Has(field string) bool {
	v, ok := p[field]
	return ok && v != nil
}

// String returns field as a string when it is one.
func (p Payload) String(field string) (string, bool) {
	s, ok := p[field].(string)
	return s, ok
}

// StringSlice returns field as a list of strings when it is a JSON array.
// Null members are skipped; other non-string members use their default formatting.
func (p Payload) StringSlice(field string) ([]string, bool) {
	switch v := p[field].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out, true
	}
	return nil, false
}

// Int returns field as an integer when it holds a number.
func (p Payload) Int(field string) (int, bool) {
	switch v := p[field].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	}
	return 0, false
}

// ErrorMessage returns the response-embedded error, if any.
// Empty strings and null count as no error.
func (p Payload) ErrorMessage() (string, bool) {
	v, ok := p[FieldError]
	if !ok || v == nil {
		return "", false
	}
	switch e := v.(type) {
	case string:
		return e, e != ""
	case bool:
		if !e {
			return "", false
		}
	}
	return fmt.Sprint(v), true
}

// Pretty renders the payload as indented JSON.
func (p Payload) Pretty() string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(p))
	}
	return string(data)
}
