package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecordID is the store-assigned identifier of a persisted record. It is
// opaque to this system: the local shim assigns UUID strings while hosted
// Postgres deployments assign numeric ids, so the JSON codec accepts both
// and carries them as strings.
type RecordID string

// UnmarshalJSON accepts string, numeric, and null id representations.
func (id *RecordID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Source is one supporting reference returned by the verification oracle.
type Source struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Relevance string `json:"relevance"`
}

// SourceList carries verification sources across the store boundary. The
// store column is text holding encoded JSON, so MarshalJSON emits a JSON
// string; UnmarshalJSON additionally accepts a bare array for records
// written by older clients.
type SourceList []Source

// MarshalJSON encodes the list as a JSON string column value.
func (sl SourceList) MarshalJSON() ([]byte, error) {
	if len(sl) == 0 {
		return []byte(`""`), nil
	}
	inner, err := json.Marshal([]Source(sl))
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(inner))
}

// UnmarshalJSON decodes either a JSON string column value or a bare array.
func (sl *SourceList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*sl = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*sl = nil
			return nil
		}
		data = []byte(s)
	}
	var list []Source
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("source list: %w", err)
	}
	*sl = list
	return nil
}

// Verification records the outcome of the external oracle check performed
// during submission. Performed is false when no oracle was configured or
// the oracle call failed.
type Verification struct {
	Performed bool       `json:"llm_verified"`
	Agreed    bool       `json:"llm_agrees,omitempty"`
	Reasoning string     `json:"llm_reasoning,omitempty"`
	Sources   SourceList `json:"llm_sources,omitempty"`
}

// FlagRecord is a persisted assertion that a piece of in-page content is
// scam, misinformation, a fake profile, or otherwise problematic. Records
// are immutable once created; the only mutation is deletion (unflagging).
//
// JSON tags follow the flagged_content column names of the store.
type FlagRecord struct {
	ID          RecordID  `json:"id,omitempty"`
	TargetURL   string    `json:"url"`
	PageKey     string    `json:"page_url"`
	Content     string    `json:"content"`
	ContentKind string    `json:"content_type"`
	FlagKind    string    `json:"flag_type"`
	Confidence  int       `json:"confidence"`
	Note        string    `json:"note,omitempty"`
	Locator     string    `json:"selector,omitempty"`
	SubmittedBy string    `json:"username,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`

	Verification
}

// Validate checks the record's fields against the schema and the size
// limits. Checks run in submission order: flag kind, content kind,
// content, note, URL, locator. The first failure is returned.
func (r *FlagRecord) Validate(schema Schema) error {
	if !schema.ValidFlagKind(r.FlagKind) {
		return fmt.Errorf("%w %q", ErrInvalidFlagKind, r.FlagKind)
	}
	if !schema.ValidContentKind(r.ContentKind) {
		return fmt.Errorf("%w %q", ErrInvalidContentKind, r.ContentKind)
	}
	if err := ValidateContent(r.Content); err != nil {
		return err
	}
	if err := ValidateNote(r.Note); err != nil {
		return err
	}
	if err := ValidateURL(r.TargetURL); err != nil {
		return err
	}
	if err := ValidateLocator(r.Locator); err != nil {
		return err
	}
	return schema.ValidateConfidence(r.Confidence)
}
