package analyzer

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxContentChars bounds the text handed to the language model.
const MaxContentChars = 2000

// ErrNoContent is returned when a page yields no readable text.
var ErrNoContent = errors.New("analyzer: no content could be extracted")

var droppedTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Noscript: true,
	atom.Link:     true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Form:     true,
}

var contentTags = map[atom.Atom]bool{
	atom.Main:    true,
	atom.Article: true,
	atom.H1:      true,
	atom.H2:      true,
	atom.Section: true,
}

var contentHints = []string{"about", "company", "description", "hero", "header-content"}

// ExtractText reads an HTML document and returns the meta description, the
// page title and the text of its main content blocks.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}
	var (
		metaDesc string
		title    string
		body     *html.Node
		blocks   []string
		seen     = map[string]bool{}
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Meta:
				if strings.EqualFold(attr(n, "name"), "description") && metaDesc == "" {
					metaDesc = collapse(attr(n, "content"))
				}
				return
			case n.DataAtom == atom.Title:
				if title == "" {
					title = collapse(textOf(n))
				}
				return
			case droppedTags[n.DataAtom]:
				return
			case n.DataAtom == atom.Body:
				body = n
			case isContentBlock(n):
				if text := collapse(textOf(n)); text != "" && !seen[text] {
					seen[text] = true
					blocks = append(blocks, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var parts []string
	if metaDesc != "" {
		parts = append(parts, metaDesc)
	}
	if title != "" {
		parts = append(parts, "Page Title: "+title)
	}
	parts = append(parts, blocks...)
	if len(blocks) == 0 && body != nil {
		if text := collapse(textOf(body)); text != "" {
			parts = append(parts, text)
		}
	}
	content := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if content == "" {
		return "", ErrNoContent
	}
	return content, nil
}

func isContentBlock(n *html.Node) bool {
	if contentTags[n.DataAtom] || attr(n, "role") == "main" {
		return true
	}
	marker := strings.ToLower(attr(n, "class") + " " + attr(n, "id"))
	for _, hint := range contentHints {
		if strings.Contains(marker, hint) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && droppedTags[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts content to at most max runes.
func Truncate(content string, max int) string {
	r := []rune(content)
	if len(r) <= max {
		return content
	}
	return string(r[:max])
}
