package posts

import (
	"html"
	"regexp"
	"strings"
)

// DefaultMaxWords is how many words of a summary survive truncation.
const DefaultMaxWords = 30

// Ellipsis is appended to a summary that lost words to truncation.
const Ellipsis = "..."

var tagRE = regexp.MustCompile(`<[^>]+>`) // like <a href="x">, </em>, <br/>

// Clean turns a fragment of HTML into a single line of plain text: tags are removed, entities unescaped, and runs of whitespace collapsed to a single space.
// Tags are stripped before unescaping, so an escaped tag like &lt;b&gt; survives as the literal text "<b>".
func Clean(s string) string {
	s = tagRE.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// TruncateWords keeps the first n words of s, appending Ellipsis if any were dropped.
// s is returned unchanged if it already has n words or fewer.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + Ellipsis
}

// Summarize is Clean followed by TruncateWords.
func Summarize(raw string, maxWords int) string {
	return TruncateWords(Clean(raw), maxWords)
}
