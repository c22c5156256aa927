package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaMembership(t *testing.T) {
	s := DefaultSchema()

	assert.True(t, s.ValidFlagKind(FlagScam))
	assert.True(t, s.ValidFlagKind(FlagMisinformation))
	assert.True(t, s.ValidFlagKind(FlagFakeProfile))
	assert.True(t, s.ValidFlagKind(FlagOther))
	assert.False(t, s.ValidFlagKind("spam"))
	assert.False(t, s.ValidFlagKind(""))

	assert.True(t, s.ValidContentKind(ContentText))
	assert.True(t, s.ValidContentKind(ContentVideo))
	assert.False(t, s.ValidContentKind("audio"))
}

func TestValidateContentBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "empty rejected", content: "", wantErr: ErrContentEmpty},
		{name: "single char accepted", content: "x"},
		{name: "exactly at limit accepted", content: strings.Repeat("a", MaxContentLength)},
		{name: "one over limit rejected", content: strings.Repeat("a", MaxContentLength+1), wantErr: ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNoteBoundaries(t *testing.T) {
	assert.NoError(t, ValidateNote(""))
	assert.NoError(t, ValidateNote(strings.Repeat("n", MaxNoteLength)))
	assert.ErrorIs(t, ValidateNote(strings.Repeat("n", MaxNoteLength+1)), ErrNoteTooLong)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		wantErr error
	}{
		{name: "https accepted", rawURL: "https://news.example/a"},
		{name: "http accepted", rawURL: "http://localhost:3000/page"},
		{name: "empty rejected", rawURL: "", wantErr: ErrURLEmpty},
		{name: "javascript scheme rejected", rawURL: "javascript:alert(1)", wantErr: ErrURLScheme},
		{name: "ftp scheme rejected", rawURL: "ftp://host/file", wantErr: ErrURLScheme},
		{name: "over length rejected", rawURL: "https://h.example/" + strings.Repeat("p", MaxURLLength), wantErr: ErrURLTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.rawURL)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLocator(t *testing.T) {
	assert.NoError(t, ValidateLocator(""))
	assert.NoError(t, ValidateLocator("div#main > p:nth-of-type(2)"))
	assert.ErrorIs(t, ValidateLocator(strings.Repeat("x", MaxLocatorLength+1)), ErrLocatorTooLong)
}

func TestConfidence(t *testing.T) {
	s := DefaultSchema()

	assert.NoError(t, s.ValidateConfidence(0))
	assert.NoError(t, s.ValidateConfidence(50))
	assert.NoError(t, s.ValidateConfidence(100))
	assert.ErrorIs(t, s.ValidateConfidence(-1), ErrInvalidConfidence)
	assert.ErrorIs(t, s.ValidateConfidence(101), ErrInvalidConfidence)

	assert.Equal(t, 100, CoarsePercent(CoarseCertain))
	assert.Equal(t, 25, CoarsePercent(CoarseUncertain))
	assert.Equal(t, 25, CoarsePercent("garbage"))
}
