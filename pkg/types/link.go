package types

import (
	"fmt"
	"time"
)

// LinkFlagRecord is a persisted assertion about a whole page or link
// rather than in-page content. It has no locator; matching against the
// current navigation happens by normalized-URL equality.
//
// JSON tags follow the flagged_links column names of the store.
type LinkFlagRecord struct {
	ID             RecordID  `json:"id,omitempty"`
	LinkURL        string    `json:"url"`
	FlaggedFromURL string    `json:"flagged_from_url,omitempty"`
	FlagKind       string    `json:"flag_type"`
	Confidence     int       `json:"confidence"`
	Note           string    `json:"note,omitempty"`
	SubmittedBy    string    `json:"username,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`

	Verification
}

// Validate checks the record's fields against the schema and size limits.
func (r *LinkFlagRecord) Validate(schema Schema) error {
	if !schema.ValidFlagKind(r.FlagKind) {
		return fmt.Errorf("%w %q", ErrInvalidFlagKind, r.FlagKind)
	}
	if err := ValidateURL(r.LinkURL); err != nil {
		return err
	}
	if r.FlaggedFromURL != "" {
		if err := ValidateURL(r.FlaggedFromURL); err != nil {
			return err
		}
	}
	if err := ValidateNote(r.Note); err != nil {
		return err
	}
	return schema.ValidateConfidence(r.Confidence)
}

// Matches reports whether this link flag applies to the given navigated
// URL, comparing normalized forms. The store only supports exact-string
// filters, so clients fetch all link flags and match locally.
func (r *LinkFlagRecord) Matches(navigatedURL string) bool {
	return NormalizeURL(r.LinkURL) == NormalizeURL(navigatedURL)
}
