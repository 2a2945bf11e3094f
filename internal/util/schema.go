package util

import (
	"sort"
)

// ObjectSchema builds a JSON schema object whose properties are the given
// name -> JSON type pairs.
func ObjectSchema(props map[string]string) map[string]any {
	properties := make(map[string]any, len(props))
	for name, typ := range props {
		properties[name] = map[string]any{"type": typ}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

// PropertyKeys returns the property names of a JSON schema object. Names
// listed in "required" come first, in that order; the rest follow sorted.
// Schemas without a properties map yield nil.
func PropertyKeys(schema map[string]any) []string {
	if schema == nil {
		return nil
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(props))
	seen := make(map[string]bool, len(props))
	for _, name := range requiredNames(schema["required"]) {
		if _, ok := props[name]; ok && !seen[name] {
			keys = append(keys, name)
			seen[name] = true
		}
	}

	rest := make([]string, 0, len(props)-len(keys))
	for k := range props {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func requiredNames(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		names := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}
