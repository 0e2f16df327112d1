package playground

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxSummaryRunes  = 1024
)

// StatusClass buckets a status code for display.
func StatusClass(status int) string {
	switch {
	case status == 0:
		return "failed"
	case status < 200:
		return "informational"
	case status < 300:
		return "success"
	case status < 400:
		return "redirect"
	default:
		return "error"
	}
}

// Render formats a response body: JSON indented by two spaces, HTML reduced
// to its title and visible text, anything else verbatim.
func Render(contentType string, body []byte) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/json"):
		var buf bytes.Buffer
		if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
			return string(body)
		}
		return buf.String()
	case strings.Contains(ct, "text/html"):
		if summary, err := summarizeHTML(body); err == nil {
			return summary
		}
		return string(body)
	default:
		return string(body)
	}
}

func summarizeHTML(body []byte) (string, error) {
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if r := []rune(text); len(r) > maxSummaryRunes {
		text = string(r[:maxSummaryRunes]) + "..."
	}

	switch {
	case title == "":
		return text, nil
	case text == "":
		return title, nil
	default:
		return title + "\n\n" + text, nil
	}
}

func indentValue(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(raw)
}
