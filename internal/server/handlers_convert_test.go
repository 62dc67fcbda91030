package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleConvertRSS(t *testing.T) {
	s := &Server{}

	body, err := json.Marshal(RSSConvertRequest{RSSXML: `<?xml version="1.0"?>
<rss version="2.0"><channel><item>
<title>Go Developer</title>
<link>https://www.upwork.com/jobs/~0123abc</link>
<description>Build things</description>
</item></channel></rss>`})
	require.NoError(t, err)

	rec := postJSON(t, s.handleConvertRSS, string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Go Developer", resp.Items[0]["title"])
	assert.Equal(t, "rss", resp.Items[0]["source"])
}

func TestHandleConvertRSSErrors(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name string
		body string
	}{
		{"malformed body", `{"rss_xml": `},
		{"missing rss_xml", `{"source": "rss"}`},
		{"invalid xml", `{"rss_xml": "<rss><channel>"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, s.handleConvertRSS, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleConvertPlatformJSON(t *testing.T) {
	s := &Server{}

	body := `{"source": "clipboard", "platform_json": {"jobs": [
		{"title": "Scraper Build", "url": "https://www.upwork.com/jobs/~0456def"}
	]}}`

	rec := postJSON(t, s.handleConvertPlatformJSON, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Scraper Build", resp.Items[0]["title"])
	assert.Equal(t, "clipboard", resp.Items[0]["source"])
}

func TestHandleConvertPlatformJSONErrors(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name string
		body string
	}{
		{"missing platform_json", `{"source": "x"}`},
		{"no jobs found", `{"platform_json": {"status": "ok"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, s.handleConvertPlatformJSON, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}
