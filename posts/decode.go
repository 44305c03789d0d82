package posts

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// metaCharsetRE finds a charset declared in the head of a document:
// <meta charset="windows-1252"> or <meta http-equiv="Content-Type" content="text/html; charset=windows-1252">.
var metaCharsetRE = regexp.MustCompile(`(?i)<meta\s[^>]*charset\s*=\s*["']?\s*([\w:.-]+)`)

// prescanLen is how far into a document a charset declaration is looked for, as in the HTML prescan.
const prescanLen = 1024

// Decode turns the raw bytes of a post into text. It never fails:
// valid UTF-8 is used as-is; otherwise a charset declared in the document (a BOM or <meta charset>) is honored,
// and anything else is read as ISO-8859-1, where every byte is a valid character.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if enc := declared(b); enc != nil {
		if s, err := enc.NewDecoder().Bytes(b); err == nil {
			return string(s)
		}
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil { // unreachable for ISO-8859-1, but keep the promise anyways.
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(s)
}

// declared is the encoding a document declares for itself, or nil if it declares none.
// A declaration of UTF-8 is ignored: the bytes already proved it wrong.
//
// charset.DetermineEncoding can't be used on its own here: it names windows-1252 both when a document declares it and when it finds nothing.
func declared(b []byte) encoding.Encoding {
	if enc, name, certain := charset.DetermineEncoding(b, "text/html"); certain { // byte order mark
		if name == "utf-8" {
			return nil
		}
		return enc
	}
	head := b[:min(len(b), prescanLen)]
	m := metaCharsetRE.FindSubmatch(head)
	if m == nil {
		return nil
	}
	enc, name := charset.Lookup(string(m[1]))
	if enc == nil || name == "utf-8" {
		return nil
	}
	return enc
}
