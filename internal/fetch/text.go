package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"vistopia/internal/services"
)

// TextDocument is the readable content of a transcript page.
type TextDocument struct {
	Title string
	Body  string
}

// Render formats the document as a plain-text file.
func (d TextDocument) Render() string {
	var b strings.Builder
	if d.Title != "" {
		b.WriteString(d.Title)
		b.WriteString("\n\n")
	}
	b.WriteString(d.Body)
	b.WriteString("\n")
	return b.String()
}

// ExtractText pulls the article title and text out of a transcript page.
// The title falls back to <title> and then <h1> when readability finds none.
func ExtractText(page, pageURL string) (TextDocument, error) {
	var base *url.URL
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		base = parsed
	}
	article, err := readability.FromReader(strings.NewReader(page), base)
	if err != nil {
		return TextDocument{}, services.Wrap(services.ErrDecode, "fetch", "extract text", pageURL, err)
	}
	doc := TextDocument{
		Title: strings.TrimSpace(article.Title),
		Body:  normalizeBlankLines(article.TextContent),
	}
	if doc.Title == "" {
		doc.Title = fallbackTitle(page)
	}
	if doc.Body == "" {
		return TextDocument{}, services.Wrap(services.ErrDecode, "fetch", "extract text", "page has no readable text", nil)
	}
	return doc, nil
}

func fallbackTitle(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func normalizeBlankLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
