package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	// script and style bodies are not visible text
	if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// Text returns the visible text of the first node in `sel`, trimmed and
// with inner whitespace collapsed.
func Text(sel *goquery.Selection) string {
	if sel == nil || len(sel.Nodes) == 0 {
		return ""
	}
	text := removeNonPrintable(GetText(sel.Nodes[0]))
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(text, " "))
}

func cascade(preferred string, fallbacks []string) []string {
	selectors := make([]string, 0, len(fallbacks)+1)
	if preferred != "" {
		selectors = append(selectors, preferred)
	}
	return append(selectors, fallbacks...)
}

// Resolve finds the elements under `sel` matching `preferred`, falling back
// to each of `fallbacks` in order. the first selector that matches at least
// one element wins. when nothing matches, an empty selection and an empty
// selector are returned.
func Resolve(sel *goquery.Selection, preferred string, fallbacks []string) (*goquery.Selection, string) {
	for _, selector := range cascade(preferred, fallbacks) {
		found := sel.Find(selector)
		if found.Length() > 0 {
			return found, selector
		}
	}
	return sel.Slice(0, 0), ""
}

// FirstText returns the text of the first element resolved by the cascade.
func FirstText(sel *goquery.Selection, preferred string, fallbacks []string) string {
	found, _ := Resolve(sel, preferred, fallbacks)
	return Text(found.First())
}

// FirstAttr walks the cascade and returns the first non-empty attribute
// `attr` carried by any matched element.
func FirstAttr(sel *goquery.Selection, attr, preferred string, fallbacks []string) string {
	for _, selector := range cascade(preferred, fallbacks) {
		value := ""
		sel.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			v, _ := el.Attr(attr)
			value = strings.TrimSpace(v)
			return value == ""
		})
		if value != "" {
			return value
		}
	}
	return ""
}

// IsTag reports whether the first node of `sel` is an element named `tag`.
func IsTag(sel *goquery.Selection, tag string) bool {
	return sel.Length() > 0 && goquery.NodeName(sel) == tag
}

// JoinOrigin absolutizes `href` against the scheme and host of `page`,
// absolute links are returned untouched.
func JoinOrigin(page, href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(page)
	if err != nil || base.Host == "" {
		return href
	}
	origin := base.Scheme + "://" + base.Host
	if strings.HasPrefix(href, "/") {
		return origin + href
	}
	return origin + "/" + href
}

// JoinReference resolves `href` against `page` using RFC 3986 reference resolution.
func JoinReference(page, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(page)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// StripQuery drops the query string and fragment of a link.
func StripQuery(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		return link[:i]
	}
	return link
}
