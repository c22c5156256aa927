package types

import (
	"errors"
	"fmt"
	"net/url"
)

// Payload size limits shared by validation and the store schema.
const (
	MaxContentLength = 102400 // 100 KB
	MaxNoteLength    = 5120   // 5 KB
	MaxURLLength     = 2048   // 2 KB
	MaxLocatorLength = 2048   // 2 KB
)

// Flag kinds. The set has grown over the system's life; the current
// generation is the canonical one and legacy records are read as-is.
const (
	FlagScam           = "scam"
	FlagMisinformation = "misinformation"
	FlagFakeProfile    = "fake_profile"
	FlagOther          = "other"
)

// Content kinds.
const (
	ContentText  = "text"
	ContentImage = "image"
	ContentVideo = "video"
	ContentOther = "other"
)

// Confidence scales. ScalePercent is the canonical representation
// (0-100 integer); ScaleCoarse is the legacy two-level enumeration,
// accepted on read and mapped onto the percent scale.
const (
	ScalePercent = "percent"
	ScaleCoarse  = "coarse"
)

// Coarse confidence values and their percent mapping.
const (
	CoarseCertain   = "certain"
	CoarseUncertain = "uncertain"

	certainPercent   = 100
	uncertainPercent = 25
)

// Validation errors.
var (
	ErrInvalidFlagKind    = errors.New("invalid flag kind")
	ErrInvalidContentKind = errors.New("invalid content kind")
	ErrContentEmpty       = errors.New("content must not be empty")
	ErrContentTooLong     = errors.New("content too long")
	ErrNoteTooLong        = errors.New("note too long")
	ErrURLEmpty           = errors.New("URL must not be empty")
	ErrURLTooLong         = errors.New("URL too long")
	ErrURLInvalid         = errors.New("invalid URL format")
	ErrURLScheme          = errors.New("invalid URL scheme")
	ErrLocatorTooLong     = errors.New("locator too long")
	ErrInvalidConfidence  = errors.New("confidence out of range")
)

// validURLSchemes lists the schemes accepted for target URLs.
var validURLSchemes = map[string]bool{
	"http":  true,
	"https": true,
}

// Schema enumerates the valid flag kinds, content kinds, and confidence
// representation for one generation of the record format. Callers validate
// against a Schema value instead of hardcoded constants so that older
// record generations can be read with a different Schema.
type Schema struct {
	FlagKinds       []string
	ContentKinds    []string
	ConfidenceScale string
}

// DefaultSchema returns the current record generation: the four-kind flag
// set, the four-kind content set, and percent confidence.
func DefaultSchema() Schema {
	return Schema{
		FlagKinds:       []string{FlagScam, FlagMisinformation, FlagFakeProfile, FlagOther},
		ContentKinds:    []string{ContentText, ContentImage, ContentVideo, ContentOther},
		ConfidenceScale: ScalePercent,
	}
}

// ValidFlagKind reports whether kind is a member of the schema's flag kinds.
func (s Schema) ValidFlagKind(kind string) bool {
	for _, k := range s.FlagKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ValidContentKind reports whether kind is a member of the schema's content kinds.
func (s Schema) ValidContentKind(kind string) bool {
	for _, k := range s.ContentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ValidateConfidence checks a percent-scale confidence value against the
// schema. Coarse-scale schemas accept any value produced by CoarsePercent.
func (s Schema) ValidateConfidence(confidence int) error {
	if confidence < 0 || confidence > 100 {
		return ErrInvalidConfidence
	}
	return nil
}

// CoarsePercent maps a legacy coarse confidence value onto the percent
// scale. Unrecognized values map to the uncertain percent.
func CoarsePercent(value string) int {
	if value == CoarseCertain {
		return certainPercent
	}
	return uncertainPercent
}

// ValidateContent checks the flagged payload against the size limits.
func ValidateContent(content string) error {
	if content == "" {
		return ErrContentEmpty
	}
	if len(content) > MaxContentLength {
		return fmt.Errorf("%w (max %d characters)", ErrContentTooLong, MaxContentLength)
	}
	return nil
}

// ValidateNote checks an optional note against the size limit.
func ValidateNote(note string) error {
	if len(note) > MaxNoteLength {
		return fmt.Errorf("%w (max %d characters)", ErrNoteTooLong, MaxNoteLength)
	}
	return nil
}

// ValidateURL checks that rawURL is non-empty, within the size limit,
// parseable, and uses an http or https scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return ErrURLEmpty
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%w (max %d characters)", ErrURLTooLong, MaxURLLength)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrURLInvalid
	}
	if !validURLSchemes[u.Scheme] {
		return fmt.Errorf("%w %q (only http, https allowed)", ErrURLScheme, u.Scheme)
	}
	return nil
}

// ValidateLocator checks a structural locator against the size limit.
// An empty locator is valid; records without one fall back to text matching.
func ValidateLocator(locator string) error {
	if len(locator) > MaxLocatorLength {
		return fmt.Errorf("%w (max %d characters)", ErrLocatorTooLong, MaxLocatorLength)
	}
	return nil
}
