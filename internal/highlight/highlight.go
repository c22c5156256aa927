// Package highlight marks resolved flag targets in the HTML tree and
// renders the per-flag info popup. Highlighting is attribute-based so a
// re-serialized page carries everything a viewer needs to style and
// inspect flagged content.
package highlight

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Class and attribute names applied to highlighted elements.
const (
	HighlightClass = "pagemark-highlighted"
	MarkerClass    = "pagemark-marker"

	AttrFlagKind   = "data-flag-type"
	AttrNote       = "data-flag-note"
	AttrDate       = "data-flag-date"
	AttrConfidence = "data-flag-confidence"
	AttrID         = "data-flag-id"
)

// Manager applies and removes highlight state. Distinct flags highlight
// independently; overlap resolution happens upstream in the resolver.
type Manager struct{}

// NewManager returns a highlight Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Apply marks node as highlighted for the given record and returns the
// element that actually carries the highlight. Text nodes are promoted to
// their parent element. For text records the highlight is narrowed to the
// first literal occurrence of the flagged content inside the element by
// wrapping it in an inline marker; when no literal occurrence exists the
// whole element stays the target. A nil node or a node with no element
// parent returns nil.
func (m *Manager) Apply(node *html.Node, record *types.FlagRecord) *html.Node {
	if node == nil {
		return nil
	}
	if node.Type != html.ElementNode {
		node = node.Parent
	}
	if node == nil || node.Type != html.ElementNode {
		return nil
	}

	if record.ContentKind == types.ContentText && record.Content != "" {
		if marker := m.narrow(node, record.Content); marker != nil {
			node = marker
		}
	}

	dom.AddClass(node, HighlightClass)
	dom.SetAttr(node, AttrFlagKind, record.FlagKind)
	dom.SetAttr(node, AttrNote, record.Note)
	if !record.CreatedAt.IsZero() {
		dom.SetAttr(node, AttrDate, record.CreatedAt.Format(time.RFC3339))
	}
	dom.SetAttr(node, AttrConfidence, formatConfidence(record.Confidence))
	if record.ID != "" {
		dom.SetAttr(node, AttrID, string(record.ID))
	}

	return node
}

// Remove strips all highlight state from node. A narrowing marker element
// is unwrapped back into plain text, leaving the surrounding element's
// other content unchanged. Remove is a no-op on nil and non-element nodes.
func (m *Manager) Remove(node *html.Node) {
	if node == nil || node.Type != html.ElementNode {
		return
	}

	if dom.HasClass(node, MarkerClass) {
		unwrap(node)
		return
	}

	dom.RemoveClass(node, HighlightClass)
	dom.RemoveAttr(node, AttrFlagKind)
	dom.RemoveAttr(node, AttrNote)
	dom.RemoveAttr(node, AttrDate)
	dom.RemoveAttr(node, AttrConfidence)
	dom.RemoveAttr(node, AttrID)
}

// narrow wraps the first literal occurrence of content inside element's
// text nodes with an inline marker element and returns the marker, or nil
// when the element has no literal occurrence.
func (m *Manager) narrow(element *html.Node, content string) *html.Node {
	var host *html.Node
	dom.TextNodes(element, func(n *html.Node) bool {
		if strings.Contains(n.Data, content) {
			host = n
			return false
		}
		return true
	})
	if host == nil {
		return nil
	}

	idx := strings.Index(host.Data, content)
	before := host.Data[:idx]
	after := host.Data[idx+len(content):]
	parent := host.Parent

	marker := &html.Node{
		Type:     html.ElementNode,
		Data:     "strong",
		DataAtom: atom.Strong,
		Attr:     []html.Attribute{{Key: "class", Val: MarkerClass}},
	}
	marker.AppendChild(&html.Node{Type: html.TextNode, Data: content})

	if before != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: before}, host)
	}
	parent.InsertBefore(marker, host)
	if after != "" {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: after}, host)
	}
	parent.RemoveChild(host)

	return marker
}

// unwrap replaces a marker element with its own text content, merging it
// back into the parent at the same position. The marker's text nodes are
// concatenated verbatim so internal whitespace survives the round trip.
func unwrap(marker *html.Node) {
	parent := marker.Parent
	if parent == nil {
		return
	}

	var text strings.Builder
	dom.TextNodes(marker, func(n *html.Node) bool {
		text.WriteString(n.Data)
		return true
	})
	if text.Len() > 0 {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text.String()}, marker)
	}
	parent.RemoveChild(marker)
}

// formatConfidence renders the stored percent value for the attribute.
func formatConfidence(confidence int) string {
	return strconv.Itoa(confidence)
}
