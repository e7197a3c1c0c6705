package internal

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/graw/pkg/errors"
)

// Decode parses a JSON response body into generic values: objects become
// map[string]any, arrays []any and numbers float64.
func Decode(body []byte) (any, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&v); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "decode response", Message: "invalid JSON", Err: err}
	}
	return v, nil
}

// ErrorEnvelope returns the Reddit error bundled in data, or nil when data
// is not an error payload. Three shapes are recognised: a non-empty top-level
// "errors" list, the same list nested under "json", and the
// {"reason", "explanation", "fields"} object.
func ErrorEnvelope(data any) *pkgerrs.RedditAPIError {
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	if errs, ok := m["errors"].([]any); ok && len(errs) > 0 {
		return &pkgerrs.RedditAPIError{Items: parseErrorItems(errs)}
	}

	if inner, ok := m["json"].(map[string]any); ok {
		if errs, ok := inner["errors"].([]any); ok && len(errs) > 0 {
			return &pkgerrs.RedditAPIError{Items: parseErrorItems(errs)}
		}
	}

	_, hasExplanation := m["explanation"]
	reason, hasReason := m["reason"].(string)
	fields, hasFields := m["fields"].([]any)
	if hasExplanation && hasReason && hasFields {
		explanation, _ := m["explanation"].(string)
		if len(fields) == 0 {
			return &pkgerrs.RedditAPIError{Items: []pkgerrs.RedditErrorItem{{ErrorType: reason, Message: explanation}}}
		}
		items := make([]pkgerrs.RedditErrorItem, 0, len(fields))
		for _, f := range fields {
			items = append(items, pkgerrs.RedditErrorItem{ErrorType: reason, Message: explanation, Field: stringify(f)})
		}
		return &pkgerrs.RedditAPIError{Items: items}
	}

	return nil
}

func parseErrorItems(errs []any) []pkgerrs.RedditErrorItem {
	items := make([]pkgerrs.RedditErrorItem, 0, len(errs))
	for _, raw := range errs {
		switch e := raw.(type) {
		case []any:
			var item pkgerrs.RedditErrorItem
			if len(e) > 0 {
				item.ErrorType = stringify(e[0])
			}
			if len(e) > 1 {
				item.Message = stringify(e[1])
			}
			if len(e) > 2 {
				item.Field = stringify(e[2])
			}
			items = append(items, item)
		case map[string]any:
			items = append(items, pkgerrs.RedditErrorItem{
				ErrorType: stringify(e["error"]),
				Message:   stringify(e["message"]),
				Field:     stringify(e["field"]),
			})
		default:
			items = append(items, pkgerrs.RedditErrorItem{ErrorType: stringify(e)})
		}
	}
	return items
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
