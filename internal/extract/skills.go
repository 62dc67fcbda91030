package extract

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Skills extracts the skill list. Feeds deliver skills as a list of strings,
// a list of {name|title|label} objects, or one comma-separated string; the
// first candidate field holding any of those shapes wins. The result is
// trimmed and deduplicated, preserving first-seen order.
func Skills(raw map[string]any) []string {
	for _, k := range skillsKeys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch s := v.(type) {
		case []any:
			return dedupe(fromList(s))
		case []string:
			return dedupe(s)
		case string:
			return dedupe(strings.Split(s, ","))
		}
	}
	return nil
}

func fromList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch skill := item.(type) {
		case string:
			out = append(out, skill)
		case map[string]any:
			if name := firstString(skill, []string{"name", "title", "label"}); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func dedupe(skills []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		if seen.Add(trimmed) {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
