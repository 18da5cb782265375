package quranapi

import (
	"strings"

	"golang.org/x/net/html"
)

// StripTags returns the text content of an HTML fragment. Translation texts
// carry footnote markers like <sup foot_note=1>1</sup>; those are removed
// together with their content.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var (
		b        strings.Builder
		skipping int
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if isFootnote(z) {
				skipping++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipping > 0 && string(name) == "sup" {
				skipping--
			}
		case html.TextToken:
			if skipping == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isFootnote(z *html.Tokenizer) bool {
	name, hasAttr := z.TagName()
	if string(name) != "sup" {
		return false
	}
	for hasAttr {
		var key []byte
		key, _, hasAttr = z.TagAttr()
		if string(key) == "foot_note" {
			return true
		}
	}
	return false
}
