package highlight

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Confidence band boundaries on the 0-100 scale.
const (
	bandHighFloor = 67
	bandLowCeil   = 33
)

// ConfidenceBand maps a percent confidence to its qualitative label.
func ConfidenceBand(confidence int) string {
	switch {
	case confidence >= bandHighFloor:
		return "High"
	case confidence <= bandLowCeil:
		return "Low"
	default:
		return "Medium"
	}
}

// PopupHTML renders the info popup fragment for a highlighted flag: kind
// badge with the confidence band, the note (escaped, or an explicit
// placeholder), the formatted flag date, and an unflag action when the
// record has an id. All record-sourced strings are HTML-escaped.
func PopupHTML(record *types.FlagRecord) string {
	var sb strings.Builder

	sb.WriteString(`<div class="pagemark-info-popup">`)

	fmt.Fprintf(&sb,
		`<span class="pagemark-badge pagemark-badge-%s">%s (%d%% - %s)</span>`,
		html.EscapeString(record.FlagKind),
		html.EscapeString(record.FlagKind),
		record.Confidence,
		ConfidenceBand(record.Confidence),
	)

	if note := strings.TrimSpace(record.Note); note != "" {
		fmt.Fprintf(&sb, `<div class="pagemark-info-note">%s</div>`, html.EscapeString(note))
	} else {
		sb.WriteString(`<div class="pagemark-info-note-empty">No additional notes</div>`)
	}

	if !record.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, `<div class="pagemark-info-date">Flagged: %s</div>`,
			record.CreatedAt.Format(time.RFC1123))
	}

	if record.ID != "" {
		fmt.Fprintf(&sb, `<button class="pagemark-unflag" data-flag-id="%s">Unflag this content</button>`,
			html.EscapeString(string(record.ID)))
	}

	sb.WriteString(`</div>`)
	return sb.String()
}
