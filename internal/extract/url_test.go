package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		expected string
	}{
		{
			name:     "absolute unchanged",
			link:     "https://www.upwork.com/jobs/~0123abc",
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "trailing slash trimmed",
			link:     "https://www.upwork.com/jobs/~0123abc/",
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "relative path rewritten under platform host",
			link:     "/jobs/~0123abc",
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "bare ciphertext id becomes a job link",
			link:     "~0123abc",
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "surrounding whitespace trimmed",
			link:     "  https://www.upwork.com/jobs/~0123abc  ",
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "tracking redirect unwrapped",
			link:     "https://www.upwork.com/link?redir=https%3A%2F%2Fwww.upwork.com%2Fjobs%2F~0456def",
			expected: "https://www.upwork.com/jobs/~0456def",
		},
		{
			name:     "double-encoded redirect target",
			link:     "https://www.upwork.com/link?url=https%253A%252F%252Fwww.upwork.com%252Fjobs%252F~0789ghi",
			expected: "https://www.upwork.com/jobs/~0789ghi",
		},
		{
			name:     "redirect param without http target ignored",
			link:     "https://www.upwork.com/jobs/~0123abc?redirect=nope",
			expected: "https://www.upwork.com/jobs/~0123abc?redirect=nope",
		},
		{
			name:     "empty",
			link:     "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.link))
		})
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		expected string
	}{
		{
			name:     "url field",
			raw:      map[string]any{"url": "https://www.upwork.com/jobs/~0123abc/"},
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "link fallback",
			raw:      map[string]any{"link": "/jobs/~0123abc"},
			expected: "https://www.upwork.com/jobs/~0123abc",
		},
		{
			name:     "missing",
			raw:      map[string]any{"title": "no link here"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, URL(tt.raw))
		})
	}
}
