package rules

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/jonathan/job-funnel/internal/types"
)

// Eval is the outcome of evaluating one rule.
type Eval struct {
	Rule   types.Rule
	Passed bool
	Actual any
	Reason string
}

// Evaluate applies a single rule to a payload. Evaluation never panics and
// never returns an error: malformed patterns, type mismatches and unknown
// operators all degrade to a failed Eval with a descriptive reason.
func Evaluate(rule types.Rule, payload map[string]any) Eval {
	actual := Lookup(payload, rule.TargetPath)
	expected := rule.Value

	passed := false
	reason := ""

	switch rule.Op {
	case types.OpExists:
		passed = actual != nil
	case types.OpEq:
		passed = looseEqual(actual, expected)
	case types.OpNe:
		passed = !looseEqual(actual, expected)
	case types.OpGt, types.OpGte, types.OpLt, types.OpLte:
		passed = compareOrdered(rule.Op, actual, expected)
	case types.OpIn:
		passed = member(actual, expected)
	case types.OpNin:
		passed = !member(actual, expected)
	case types.OpContains:
		passed = contains(actual, expected)
	case types.OpRegex:
		var err error
		passed, err = matchRegex(actual, expected)
		if err != nil {
			passed = false
			reason = fmt.Sprintf("rule eval error: %v", err)
		}
	default:
		reason = fmt.Sprintf("unsupported op: %s", rule.Op)
	}

	if !passed && reason == "" {
		reason = fmt.Sprintf("rule %q failed: %s %s %v (actual=%v)",
			rule.Name, rule.TargetPath, rule.Op, expected, actual)
	}
	if passed {
		reason = ""
	}

	return Eval{Rule: rule, Passed: passed, Actual: actual, Reason: reason}
}

// looseEqual compares with numeric coercion so a stored rule value of 5
// matches a payload value of 5.0. Nil compares equal only to nil.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// compareOrdered handles gt/gte/lt/lte. A nil on either side fails; so does
// a non-numeric operand, unless both sides are strings, which compare
// lexicographically.
func compareOrdered(op types.RuleOp, actual, expected any) bool {
	if actual == nil || expected == nil {
		return false
	}

	af, aok := toFloat(actual)
	bf, bok := toFloat(expected)
	if aok && bok {
		switch op {
		case types.OpGt:
			return af > bf
		case types.OpGte:
			return af >= bf
		case types.OpLt:
			return af < bf
		case types.OpLte:
			return af <= bf
		}
	}

	as, aok := actual.(string)
	bs, bok := expected.(string)
	if aok && bok {
		switch op {
		case types.OpGt:
			return as > bs
		case types.OpGte:
			return as >= bs
		case types.OpLt:
			return as < bs
		case types.OpLte:
			return as <= bs
		}
	}
	return false
}

// member reports whether actual is a member of the expected sequence. An
// empty or non-sequence expected means "in" fails (and so "nin" passes).
func member(actual, expected any) bool {
	seq, ok := expected.([]any)
	if !ok {
		return false
	}
	for _, item := range seq {
		if looseEqual(actual, item) {
			return true
		}
	}
	return false
}

// contains: strings match by case-insensitive substring, sequences by exact
// membership, anything else (including nil actual) fails.
func contains(actual, expected any) bool {
	switch a := actual.(type) {
	case string:
		return strings.Contains(strings.ToLower(a), strings.ToLower(fmt.Sprintf("%v", expected)))
	case []any:
		for _, item := range a {
			if looseEqual(item, expected) {
				return true
			}
		}
		return false
	case []string:
		es, ok := expected.(string)
		if !ok {
			return false
		}
		for _, item := range a {
			if item == es {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// matchRegex stringifies the actual value and searches (not anchors) the
// pattern. A nil actual fails without attempting compilation.
func matchRegex(actual, expected any) (bool, error) {
	if actual == nil {
		return false, nil
	}
	pattern, err := regexp.Compile(fmt.Sprintf("%v", expected))
	if err != nil {
		return false, fmt.Errorf("bad regex %v: %w", expected, err)
	}
	return pattern.MatchString(fmt.Sprintf("%v", actual)), nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
