// Package dom provides the HTML-tree primitives the flagging core is built
// on: attribute and text helpers over golang.org/x/net/html nodes, and the
// structural locator codec used to re-find elements across page loads.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse parses an HTML document from r.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*html.Node, error) {
	return html.Parse(strings.NewReader(s))
}

// Render serializes the (possibly mutated) document back to HTML.
func Render(w io.Writer, doc *html.Node) error {
	return html.Render(w, doc)
}

// RenderString serializes the document to a string.
func RenderString(doc *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Attr returns the value of the named attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass reports whether the node's class attribute contains the given
// class token.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends a class token if not already present.
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	existing := Attr(n, "class")
	if existing == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", existing+" "+class)
}

// RemoveClass removes a class token; the attribute is dropped when the
// last token goes.
func RemoveClass(n *html.Node, class string) {
	var kept []string
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// nonVisibleTags are element contents excluded from visible-text extraction.
var nonVisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// InnerText returns the concatenated visible text content of the subtree
// rooted at n, approximating the browser's innerText. Text inside script,
// style, noscript, and template elements is excluded; a space separates
// text from adjacent nodes so words never run together.
func InnerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && nonVisibleTags[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strings.TrimSpace(node.Data))
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// TextNodes walks the subtree rooted at root in document order and calls
// visit for every visible text node. Returning false stops the walk.
func TextNodes(root *html.Node, visit func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && nonVisibleTags[n.Data] {
			return true
		}
		if n.Type == html.TextNode {
			if !visit(n) {
				return false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// Elements walks the subtree in document order and calls visit for every
// element node. Returning false stops the walk.
func Elements(root *html.Node, visit func(*html.Node) bool) {
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if !visit(n) {
				return false
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(root)
}

// Body returns the document's body element, or the document itself when no
// body exists (fragment parses).
func Body(doc *html.Node) *html.Node {
	var body *html.Node
	Elements(doc, func(n *html.Node) bool {
		if n.Data == "body" {
			body = n
			return false
		}
		return true
	})
	if body == nil {
		return doc
	}
	return body
}

// FindText returns the first text node in the document whose content
// contains the given substring, or nil. Used by callers that need to turn
// a literal selection back into a concrete node.
func FindText(doc *html.Node, substring string) *html.Node {
	var found *html.Node
	TextNodes(doc, func(n *html.Node) bool {
		if strings.Contains(n.Data, substring) {
			found = n
			return false
		}
		return true
	})
	return found
}
