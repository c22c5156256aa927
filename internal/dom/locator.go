package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// stepSeparator joins locator steps root-to-leaf with a child combinator.
const stepSeparator = " > "

// Encode derives a structural locator for the given node. Text nodes are
// promoted to their nearest element ancestor. The walk goes from the node
// up to the document root, recording one step per element: the lowercase
// tag name, with "#id" appended and the walk terminated when the element
// carries an id (assumed page-unique), or ":nth-of-type(n)" appended when
// the element's 1-based same-tag sibling rank is greater than 1.
//
// Encoding the same tree always yields the same string, and resolving the
// string against an unchanged tree yields exactly the original element.
// A nil node or a node with no element ancestor encodes to "".
func Encode(n *html.Node) string {
	if n != nil && n.Type != html.ElementNode {
		n = n.Parent
	}
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var path []string
	for n != nil && n.Type == html.ElementNode {
		step := strings.ToLower(n.Data)

		if id := Attr(n, "id"); id != "" {
			path = append([]string{step + "#" + id}, path...)
			break
		}

		if rank := sameTagRank(n); rank > 1 {
			step += fmt.Sprintf(":nth-of-type(%d)", rank)
		}
		path = append([]string{step}, path...)
		n = n.Parent
	}

	return strings.Join(path, stepSeparator)
}

// sameTagRank returns the element's 1-based rank among preceding element
// siblings of the same tag.
func sameTagRank(n *html.Node) int {
	rank := 1
	for sib := n.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if sib.Type == html.ElementNode && sib.Data == n.Data {
			rank++
		}
	}
	return rank
}

// step is one parsed locator component.
type step struct {
	tag  string
	id   string // non-empty for "tag#id" steps
	rank int    // 0 when unconstrained, else the required nth-of-type rank
}

// parseLocator splits a locator string into steps. Malformed input yields
// ok=false; resolution treats that the same as a miss.
func parseLocator(locator string) ([]step, bool) {
	if strings.TrimSpace(locator) == "" {
		return nil, false
	}

	parts := strings.Split(locator, stepSeparator)
	steps := make([]step, 0, len(parts))
	for _, part := range parts {
		s, ok := parseStep(strings.TrimSpace(part))
		if !ok {
			return nil, false
		}
		steps = append(steps, s)
	}
	return steps, true
}

// parseStep parses "tag", "tag#id", or "tag:nth-of-type(n)".
func parseStep(part string) (step, bool) {
	if part == "" {
		return step{}, false
	}

	if tag, id, found := strings.Cut(part, "#"); found {
		if tag == "" || id == "" {
			return step{}, false
		}
		return step{tag: tag, id: id}, true
	}

	if tag, rest, found := strings.Cut(part, ":nth-of-type("); found {
		num, ok := strings.CutSuffix(rest, ")")
		if !ok || tag == "" {
			return step{}, false
		}
		rank, err := strconv.Atoi(num)
		if err != nil || rank < 1 {
			return step{}, false
		}
		return step{tag: tag, rank: rank}, true
	}

	return step{tag: part}, true
}

// Resolve finds every element in doc matching the locator. The first step
// matches anywhere in the document (it is either the root html element or
// an id-anchored element); each later step matches direct children of the
// previous step's matches. Malformed locators resolve to nothing; callers
// treat an empty result as a resolution miss, not an error.
func Resolve(doc *html.Node, locator string) []*html.Node {
	steps, ok := parseLocator(locator)
	if !ok {
		return nil
	}

	var current []*html.Node
	Elements(doc, func(n *html.Node) bool {
		if matchesStep(n, steps[0]) {
			current = append(current, n)
		}
		return true
	})

	for _, s := range steps[1:] {
		if len(current) == 0 {
			return nil
		}
		var next []*html.Node
		for _, parent := range current {
			for c := parent.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && matchesStep(c, s) {
					next = append(next, c)
				}
			}
		}
		current = next
	}

	return current
}

// ResolveOne resolves the locator and returns the first match in document
// order, the way querySelector picks among equally specific candidates.
// No match returns nil.
func ResolveOne(doc *html.Node, locator string) *html.Node {
	matches := Resolve(doc, locator)
	if len(matches) == 0 {
		return nil
	}
	matched := make(map[*html.Node]bool, len(matches))
	for _, m := range matches {
		matched[m] = true
	}
	var first *html.Node
	Elements(doc, func(n *html.Node) bool {
		if matched[n] {
			first = n
			return false
		}
		return true
	})
	return first
}

// matchesStep reports whether the element satisfies one locator step.
func matchesStep(n *html.Node, s step) bool {
	if !strings.EqualFold(n.Data, s.tag) {
		return false
	}
	if s.id != "" && Attr(n, "id") != s.id {
		return false
	}
	if s.rank > 0 && sameTagRank(n) != s.rank {
		return false
	}
	return true
}
