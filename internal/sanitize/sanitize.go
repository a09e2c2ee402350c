// Package sanitize converts source-side rich text (HTML) into plain text
// suitable for the target store's text fields.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// Cleaner strips HTML markup and normalizes whitespace.
type Cleaner struct{}

func NewCleaner() *Cleaner { return &Cleaner{} }

// Clean returns the text content of s with tags removed, entities
// unescaped, whitespace collapsed, and the result capped at limit runes.
// A non-positive limit means no cap.
func (*Cleaner) Clean(s string, limit int) string {
	text := strings.Join(strings.Fields(stripTags(s)), " ")
	if limit > 0 {
		runes := []rune(text)
		if len(runes) > limit {
			text = string(runes[:limit])
		}
	}
	return text
}

// stripTags walks the HTML token stream and keeps only text content.
// Script and style bodies are dropped entirely. Block-ish tags become
// spaces so adjacent words don't fuse.
func stripTags(s string) string {
	tok := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0

	for {
		switch tok.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			if skip == 0 {
				b.Write(tok.Text())
			}
		case html.StartTagToken:
			b.WriteByte(' ')
			name, _ := tok.TagName()
			if skippedTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			b.WriteByte(' ')
			name, _ := tok.TagName()
			if skippedTag(string(name)) && skip > 0 {
				skip--
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}
}

func skippedTag(name string) bool {
	return name == "script" || name == "style"
}
