// Package extract pulls canonical field values out of arbitrary feed
// payloads. Each field has an ordered list of candidate source keys; the
// first candidate yielding a usable value wins. Extraction never returns an
// error: a field that cannot be recovered is simply absent, and validation
// happens later in the normalizer.
package extract

import (
	"strconv"
	"strings"
)

// Candidate key lists per field, in probe order. Extending support for a new
// feed vendor usually means appending a key here, nothing more.
var (
	titleKeys       = []string{"title", "jobTitle", "name", "subject"}
	descriptionKeys = []string{"description", "snippet", "body", "text"}
	urlKeys         = []string{"url", "jobUrl", "link", "ciphertext", "jobLink"}
	clientNameKeys  = []string{"client_name", "clientName"}
	budgetKeys      = []string{"budget", "hourlyRate", "fixedPrice", "rate", "price", "budgetValue", "budget_value"}
	postedAtKeys    = []string{"postedOn", "postedAt", "posted_at", "createdAt", "publishedAt", "date", "pubDate", "created_at"}
	skillsKeys      = []string{"skills", "categories", "tags", "expertise", "technologies"}
	regionKeys      = []string{"country", "location", "region", "clientCountry", "clientLocation"}
	proposalsKeys   = []string{"proposals", "proposalCount", "numProposals", "applicants", "applicantCount"}
)

// firstString returns the first non-empty trimmed string found under the
// candidate keys.
func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// asNumber coerces a JSON value to float64 when possible. Strings are
// parsed strictly here; free-text number scanning is budget-specific.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Title extracts the job title.
func Title(raw map[string]any) string {
	return firstString(raw, titleKeys)
}

// Description extracts the job description. May legitimately be empty.
func Description(raw map[string]any) string {
	return firstString(raw, descriptionKeys)
}

// Region extracts the client region. Vendor payloads use either a plain
// string or a nested object with a name/title/country field.
func Region(raw map[string]any) string {
	for _, k := range regionKeys {
		switch v := raw[k].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case map[string]any:
			if s := firstString(v, []string{"name", "title", "country"}); s != "" {
				return s
			}
		}
	}
	return ""
}

// Proposals extracts the proposal/applicant count, or nil when absent.
func Proposals(raw map[string]any) *int {
	for _, k := range proposalsKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		if f, ok := asNumber(v); ok && f >= 0 {
			n := int(f)
			return &n
		}
	}
	return nil
}
