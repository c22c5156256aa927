package flagging

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/internal/highlight"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Popup is one open flag-info popup bound to a highlighted node.
type Popup struct {
	Record *types.FlagRecord
	Node   *html.Node
	HTML   string
}

// PopupSession owns the current popup for one viewing session. At most
// one popup is open at a time: opening a new one closes the previous.
// State is held here, not in package globals, so independent sessions
// never collide.
type PopupSession struct {
	mu      sync.Mutex
	current *Popup
}

// NewPopupSession returns a session with no popup open.
func NewPopupSession() *PopupSession {
	return &PopupSession{}
}

// Open renders and opens the popup for a highlighted record, replacing
// any popup already open.
func (s *PopupSession) Open(record *types.FlagRecord, node *html.Node) *Popup {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &Popup{
		Record: record,
		Node:   node,
		HTML:   highlight.PopupHTML(record),
	}
	return s.current
}

// Current returns the open popup, or nil.
func (s *PopupSession) Current() *Popup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close dismisses the open popup. Closing with nothing open is a no-op.
func (s *PopupSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
