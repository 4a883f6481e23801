package validation

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Elements whose text content is never user-visible prose and is dropped entirely.
var droppedContent = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"noscript": true,
	"template": true,
	"object":   true,
	"embed":    true,
}

var allowedTags = map[string]bool{
	"b":      true,
	"i":      true,
	"em":     true,
	"strong": true,
	"p":      true,
	"br":     true,
	"a":      true,
}

var (
	javascriptScheme = regexp.MustCompile(`(?i)javascript\s*:`)
	inlineHandler    = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Sanitize returns the text content of s with every tag removed, so values can
// be stored and rendered as plain text. A '<' that never closes into a tag is
// kept as text together with whatever follows it.
func Sanitize(s string) string {
	var b strings.Builder
	skip, consumed := 0, 0

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return ""
			}
			// the tokenizer drops a tag cut short by EOF
			if skip == 0 && consumed < len(s) {
				b.WriteString(s[consumed:])
			}
			return strings.TrimSpace(stripInline(b.String()))
		}
		raw := z.Raw()
		consumed += len(raw)

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			if droppedContent[string(name)] {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if droppedContent[string(name)] && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(raw)
			}
		}
	}
}

// SanitizeHTML keeps a small formatting allowlist (b, i, em, strong, p, br, a)
// and drops every other element and attribute. Links keep href and target,
// and only http, https and mailto hrefs survive.
func SanitizeHTML(s string) string {
	var b strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if droppedContent[tag] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || !allowedTags[tag] {
				continue
			}
			b.WriteString("<" + tag)
			if tag == "a" && hasAttr {
				writeLinkAttrs(&b, z)
			}
			if tt == html.SelfClosingTagToken {
				b.WriteString(" />")
			} else {
				b.WriteString(">")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if droppedContent[tag] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip == 0 && allowedTags[tag] && tag != "br" {
				b.WriteString("</" + tag + ">")
			}
		case html.TextToken:
			if skip == 0 {
				b.WriteString(html.EscapeString(string(z.Text())))
			}
		}
	}
}

func writeLinkAttrs(b *strings.Builder, z *html.Tokenizer) {
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "href":
			if safeHref(string(val)) {
				b.WriteString(` href="` + html.EscapeString(string(val)) + `"`)
			}
		case "target":
			b.WriteString(` target="` + html.EscapeString(string(val)) + `"`)
		}
		if !more {
			return
		}
	}
}

func safeHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(h, "http://") || strings.HasPrefix(h, "https://") || strings.HasPrefix(h, "mailto:")
}

// stripInline removes javascript: schemes and on*= handlers until none are
// left, so nested fragments cannot reassemble.
func stripInline(s string) string {
	for javascriptScheme.MatchString(s) || inlineHandler.MatchString(s) {
		s = javascriptScheme.ReplaceAllString(s, "")
		s = inlineHandler.ReplaceAllString(s, "")
	}
	return s
}
