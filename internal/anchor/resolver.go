// Package anchor re-resolves persisted flag records against a live HTML
// tree: structural locator resolution first, with a normalized text-walk
// fallback for text content that survives page restructuring.
package anchor

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/textutil"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Target pairs a record with one live node it resolved to.
type Target struct {
	Record *types.FlagRecord
	Node   *html.Node

	// Structural is true when the node came from locator resolution,
	// false when it came from the text-walk fallback.
	Structural bool
}

// Resolver finds live DOM targets for persisted flag records. Records are
// expected to be pre-filtered to the current page key; resolution runs
// once per page load with no retry.
type Resolver struct {
	log *zap.Logger
}

// NewResolver returns a Resolver. A nil logger disables logging.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log}
}

// Resolve maps each record to its live targets in the document.
//
// Per record: a present locator is resolved structurally to the first
// matching element in document order; a miss is skipped silently. Text
// records additionally walk every
// visible text node and match by normalized containment (both sides
// normalized, so whitespace drift between capture and reload cannot break
// the match). A text-walk hit that lands on the structural target or
// inside it is dropped rather than producing a second overlapping
// highlight; distinct extra nodes still produce their own targets.
//
// Records that resolve to nothing are simply absent from the result; a
// resolution miss is not an error.
func (r *Resolver) Resolve(doc *html.Node, records []*types.FlagRecord) []Target {
	var targets []Target

	for _, record := range records {
		var structural *html.Node
		if record.Locator != "" {
			structural = dom.ResolveOne(doc, record.Locator)
			if structural != nil {
				targets = append(targets, Target{Record: record, Node: structural, Structural: true})
			} else {
				r.log.Debug("locator did not resolve",
					zap.String("locator", record.Locator),
					zap.String("id", string(record.ID)))
			}
		}

		if record.ContentKind == types.ContentText && record.Content != "" {
			for _, node := range r.textMatches(doc, record.Content) {
				if structural != nil && withinSubtree(structural, node) {
					continue
				}
				targets = append(targets, Target{Record: record, Node: node})
			}
		}
	}

	return targets
}

// textMatches walks the document's text nodes and returns every node whose
// normalized content contains the normalized needle.
func (r *Resolver) textMatches(doc *html.Node, content string) []*html.Node {
	needle := textutil.Normalize(content)
	if needle == "" {
		return nil
	}

	var matches []*html.Node
	dom.TextNodes(dom.Body(doc), func(n *html.Node) bool {
		if strings.Contains(textutil.Normalize(n.Data), needle) {
			matches = append(matches, n)
		}
		return true
	})
	return matches
}

// withinSubtree reports whether node is root or a descendant of root.
func withinSubtree(root, node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}
