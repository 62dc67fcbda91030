// Package rules evaluates user-configured filter/scoring rules against job
// payloads. Nothing here is hard-coded business logic: every threshold,
// path and weight comes from stored rule documents.
package rules

import "strings"

// Lookup resolves a dot-separated path against nested maps. A missing
// intermediate key or a non-map intermediate value yields nil, not an
// error; rules distinguish "absent" via the exists operator.
func Lookup(payload map[string]any, path string) any {
	var cur any = payload
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[part]
		if !ok {
			return nil
		}
	}
	return cur
}
