// Package convert turns external feed formats (RSS/Atom XML, platform
// search JSON) into the item payload the ingestion endpoint accepts.
package convert

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/job-funnel/internal/extract"
)

// rssDocument covers both RSS 2.0 (channel/item) and Atom (entry)
// feeds. encoding/xml matches local element names across namespaces,
// so one struct handles both layouts.
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Entries []rssItem `xml:"entry"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Summary     string    `xml:"summary"`
	Link        rssLink   `xml:"link"`
	PubDate     string    `xml:"pubDate"`
	Published   string    `xml:"published"`
	Categories  []rssText `xml:"category"`
}

// rssLink reads either an RSS text link or an Atom href attribute.
type rssLink struct {
	Href string `xml:"href,attr"`
	Text string `xml:",chardata"`
}

type rssText struct {
	Term string `xml:"term,attr"`
	Text string `xml:",chardata"`
}

// FromRSS parses an RSS or Atom feed and returns items ready for the
// ingestion endpoint. Client data is absent from feeds, so items carry
// an empty client object.
func FromRSS(rssXML, source string, now time.Time) ([]map[string]any, error) {
	var doc rssDocument
	if err := xml.Unmarshal([]byte(rssXML), &doc); err != nil {
		return nil, fmt.Errorf("invalid RSS XML: %w", err)
	}

	entries := doc.Channel.Items
	if len(entries) == 0 {
		entries = doc.Entries
	}

	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		description := e.Description
		if description == "" {
			description = e.Summary
		}
		description = StripHTML(description)

		link := strings.TrimSpace(e.Link.Text)
		if link == "" {
			link = e.Link.Href
		}

		var postedAt any
		dateText := e.PubDate
		if dateText == "" {
			dateText = e.Published
		}
		if t := extract.PostedAt(map[string]any{"pubDate": dateText}, now); t != nil {
			postedAt = t.Format(time.RFC3339)
		}

		skills := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			name := strings.TrimSpace(c.Text)
			if name == "" {
				name = strings.TrimSpace(c.Term)
			}
			if name != "" {
				skills = append(skills, name)
			}
		}

		items = append(items, map[string]any{
			"title":       strings.TrimSpace(e.Title),
			"description": description,
			"url":         extract.NormalizeURL(link),
			"source":      source,
			"posted_at":   postedAt,
			"skills":      skills,
			"client":      map[string]any{},
			"raw": map[string]any{
				"original_rss_title":       e.Title,
				"original_rss_description": e.Description,
				"rss_source":               source,
			},
		})
	}
	return items, nil
}

// StripHTML removes markup and resolves entities, leaving plain text.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
