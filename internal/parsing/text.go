// Package parsing turns free text into the normalized tokens, identifiers and
// ordinals the matcher compares.
package parsing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/talent-matcher/internal/vocab"
)

var (
	blankLinesRe = regexp.MustCompile(`\n\n\n+`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)
)

// NormalizeText lowercases s, drops punctuation and collapses whitespace
func NormalizeText(s string) string {
	return vocab.Normalize(s)
}

// RemoveStopwords drops every whitespace-separated token for which isStopword returns true
func RemoveStopwords(s string, isStopword func(string) bool) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !isStopword(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// StripHTML returns the visible text of an HTML fragment. Plain text passes through unchanged.
func StripHTML(s string) (string, error) {
	if !strings.Contains(s, "<") {
		return s, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	// block elements become line breaks so list items stay separate
	doc.Find("br, p, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	return CleanText(doc.Text()), nil
}

// CleanText normalizes line endings, trims each line and collapses runs of blank lines
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spacesRe.ReplaceAllString(line, " "))
	}

	result := blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}
