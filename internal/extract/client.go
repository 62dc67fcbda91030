package extract

import (
	"github.com/jonathan/job-funnel/internal/types"
)

// ClientName extracts the client name from a top-level field or the nested
// client object.
func ClientName(raw map[string]any) string {
	if name := firstString(raw, clientNameKeys); name != "" {
		return name
	}
	if client, ok := raw["client"].(map[string]any); ok {
		return firstString(client, []string{"name", "clientName"})
	}
	return ""
}

// Client extracts client metadata from the nested client object, renaming
// vendor fields into the canonical shape. Missing or falsy sub-fields are
// omitted (left nil) rather than defaulted, so downstream rules can tell
// "not reported" apart from "reported as zero/false".
func Client(raw map[string]any) types.ClientInfo {
	info := types.ClientInfo{Name: ClientName(raw)}

	client, ok := raw["client"].(map[string]any)
	if !ok {
		return info
	}

	if b, ok := firstBool(client, "paymentVerified", "payment_verified"); ok {
		info.PaymentVerified = &b
	}
	if b, ok := firstBool(client, "phoneVerified", "phone_verified"); ok {
		info.PhoneVerified = &b
	}
	if f, ok := firstFloat(client, "rating", "totalRating"); ok {
		info.Rating = &f
	}
	if f, ok := firstFloat(client, "reviewsCount", "reviews"); ok {
		n := int(f)
		info.Reviews = &n
	}
	if f, ok := firstFloat(client, "totalSpent", "total_spent"); ok {
		info.TotalSpent = &f
	}
	if f, ok := firstFloat(client, "hiringRate", "hiring_rate"); ok {
		info.HiringRate = &f
	}

	return info
}

func firstBool(m map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		if b, ok := m[k].(bool); ok {
			return b, true
		}
	}
	return false, false
}

func firstFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if f, ok := asNumber(v); ok {
			return f, true
		}
	}
	return 0, false
}
