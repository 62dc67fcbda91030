package extract

import (
	"net/url"
	"strings"
)

// PlatformHost is the job platform all relative feed links resolve against.
const PlatformHost = "www.upwork.com"

// redirect query parameters used by the platform's link-wrapping formats.
var redirectParams = []string{"redir", "redirect", "url", "target", "goto"}

// URL extracts and normalizes the job URL: relative paths are rewritten
// under the platform host, bare ciphertext ids become job links, and
// platform tracking redirects are unwrapped to their embedded target.
// Returns "" when no candidate field yields a link.
func URL(raw map[string]any) string {
	link := firstString(raw, urlKeys)
	if link == "" {
		return ""
	}
	return NormalizeURL(link)
}

// NormalizeURL makes a feed link absolute and strips tracking indirection.
// Trailing slashes are removed so URL-keyed dedup is stable.
func NormalizeURL(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}

	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		if strings.HasPrefix(link, "/") {
			link = "https://" + PlatformHost + link
		} else {
			link = "https://" + PlatformHost + "/jobs/" + link
		}
	}

	if target := unwrapRedirect(link); target != "" {
		link = target
	}

	return strings.TrimRight(link, "/")
}

// unwrapRedirect decodes the platform's link-shortening/tracking format: the
// real destination sits in a query parameter, URL-encoded a second time on
// top of standard query encoding. Query parsing undoes one layer, an
// explicit unescape undoes the other. Returns "" when the link is not a
// recognizable redirect.
func unwrapRedirect(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	q := parsed.Query()
	for _, param := range redirectParams {
		candidate := q.Get(param)
		if candidate == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(candidate); err == nil {
			candidate = decoded
		}
		if strings.HasPrefix(candidate, "http://") || strings.HasPrefix(candidate, "https://") {
			return candidate
		}
	}
	return ""
}
