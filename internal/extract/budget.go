package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// hourly markers in free-text budgets. A range labeled as an hourly rate
// parses to its upper bound (the bid ceiling); a plain range parses to the
// arithmetic mean of its first two numbers.
var hourlyMarkers = []string{"hourly", "/hr", "/hour", "per hour"}

// Budget extracts the job budget as a float. Numeric fields win as-is;
// string fields are scanned for embedded numbers ("$50-$100/hour",
// "Budget: 5,000"). A candidate field that fails to parse does not abort
// the search, it falls through to the next candidate. Returns nil when no
// candidate yields a value.
func Budget(raw map[string]any) *float64 {
	for _, k := range budgetKeys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch b := v.(type) {
		case float64:
			return &b
		case int:
			f := float64(b)
			return &f
		case string:
			if f, ok := budgetFromText(b); ok {
				return &f
			}
		}
	}

	// No budget field at all: some feeds embed the rate in the title or
	// description ("Build API (Hourly Rate: 10 - 30 USD)"). Only text that
	// carries an explicit money marker is trusted, so ordinary numbers in
	// titles don't turn into budgets.
	for _, text := range []string{Title(raw), Description(raw)} {
		if text == "" || !hasMoneyMarker(text) {
			continue
		}
		if f, ok := budgetFromText(text); ok {
			return &f
		}
	}
	return nil
}

// moneyWordPattern gates free-text budget scanning of titles and
// descriptions. Bare words match on word boundaries so "rate" never
// fires inside "Migrate"; symbol markers match anywhere.
var moneyWordPattern = regexp.MustCompile(`\b(usd|budget|rate|price|hourly)\b`)

func hasMoneyMarker(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "$") || strings.Contains(lower, "/hr") || strings.Contains(lower, "per hour") {
		return true
	}
	return moneyWordPattern.MatchString(lower)
}

// budgetFromText scans free text for embedded numbers.
func budgetFromText(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	matches := numberPattern.FindAllString(cleaned, 2)
	if len(matches) == 0 {
		return 0, false
	}

	first, err := strconv.ParseFloat(matches[0], 64)
	if err != nil {
		return 0, false
	}
	if len(matches) == 1 {
		return first, true
	}

	second, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return first, true
	}

	lower := strings.ToLower(text)
	for _, marker := range hourlyMarkers {
		if strings.Contains(lower, marker) {
			if second > first {
				return second, true
			}
			return first, true
		}
	}
	return (first + second) / 2, true
}
