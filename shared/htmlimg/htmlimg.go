// Package htmlimg finds and replaces the sources of <img> tags in HTML fragments.
package htmlimg

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ExtractImageURLs returns the src of every <img> whose source is an http or https URL,
// in document order. Duplicates are kept.
func ExtractImageURLs(fragment string) []string {
	var urls []string
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return urls
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if tok.DataAtom != atom.Img {
			continue
		}
		if src, ok := attr(tok, "src"); ok && isRemote(src) {
			urls = append(urls, src)
		}
	}
}

// RewriteImageURLs replaces the src of every <img> found in replacements. Everything
// else in the fragment is copied through byte for byte.
func RewriteImageURLs(replacements map[string]string, fragment string) string {
	if len(replacements) == 0 || fragment == "" {
		return fragment
	}

	var b strings.Builder
	b.Grow(len(fragment))
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Unparseable tail, keep it as is.
				b.Write(z.Raw())
			}
			return b.String()
		}

		raw := z.Raw()
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.Write(raw)
			continue
		}

		// Token lowercases names in the buffer Raw points into.
		raw = append([]byte(nil), raw...)
		tok := z.Token()
		if tok.DataAtom != atom.Img || !rewriteSrc(&tok, replacements) {
			b.Write(raw)
			continue
		}
		b.WriteString(tok.String())
	}
}

func rewriteSrc(tok *html.Token, replacements map[string]string) bool {
	for i, a := range tok.Attr {
		if a.Namespace != "" || a.Key != "src" {
			continue
		}
		if next, ok := replacements[a.Val]; ok {
			tok.Attr[i].Val = next
			return true
		}
		return false
	}
	return false
}

func attr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
