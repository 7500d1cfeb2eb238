package tools

import (
	"fmt"

	"github.com/goccy/go-json"
)

// validateArgs checks raw tool arguments against a parameter schema and
// returns the decoded values. Unknown fields, wrong types, missing required
// fields, and out-of-enum values all fail here, before any store access.
// Every parameter in the catalog is a string, so the decoded form is a
// simple string map.
func validateArgs(schema map[string]any, raw json.RawMessage) (map[string]string, error) {
	var decoded map[string]json.RawMessage
	if len(raw) == 0 {
		decoded = map[string]json.RawMessage{}
	} else if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ValidationError{Reason: "arguments must be a JSON object"}
	}

	properties, _ := schema["properties"].(map[string]any)

	// Unknown fields are rejected so a hallucinated parameter can't pass
	// silently and surprise the caller later.
	for field := range decoded {
		if _, ok := properties[field]; !ok {
			return nil, &ValidationError{Field: field, Reason: "unknown field"}
		}
	}

	if required, ok := schema["required"].([]string); ok {
		for _, field := range required {
			if _, present := decoded[field]; !present {
				return nil, &ValidationError{Field: field, Reason: "required field is missing"}
			}
		}
	}

	args := make(map[string]string, len(decoded))
	for field, rawValue := range decoded {
		spec, _ := properties[field].(map[string]any)

		// Unmarshal into *string: a JSON null decodes to nil instead of
		// silently leaving a zero-value string behind.
		var value *string
		if err := json.Unmarshal(rawValue, &value); err != nil || value == nil {
			return nil, &ValidationError{Field: field, Reason: "must be a string"}
		}

		if enum, ok := spec["enum"].([]string); ok {
			if !contains(enum, *value) {
				return nil, &ValidationError{
					Field:  field,
					Reason: fmt.Sprintf("must be one of %v", enum),
				}
			}
		}

		args[field] = *value
	}

	return args, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
