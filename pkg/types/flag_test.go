package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *FlagRecord {
	return &FlagRecord{
		TargetURL:   "https://news.example/a",
		PageKey:     "news.example/a",
		Content:     "Breaking: moon made of cheese",
		ContentKind: ContentText,
		FlagKind:    FlagMisinformation,
		Confidence:  80,
	}
}

func TestFlagRecordValidate(t *testing.T) {
	schema := DefaultSchema()

	tests := []struct {
		name    string
		mutate  func(*FlagRecord)
		wantErr error
	}{
		{name: "valid record", mutate: func(r *FlagRecord) {}},
		{
			name:    "flag kind checked first",
			mutate:  func(r *FlagRecord) { r.FlagKind = "bogus"; r.Content = "" },
			wantErr: ErrInvalidFlagKind,
		},
		{
			name:    "content kind checked before content",
			mutate:  func(r *FlagRecord) { r.ContentKind = "audio"; r.Content = "" },
			wantErr: ErrInvalidContentKind,
		},
		{
			name:    "empty content rejected",
			mutate:  func(r *FlagRecord) { r.Content = "" },
			wantErr: ErrContentEmpty,
		},
		{
			name:    "oversized note rejected",
			mutate:  func(r *FlagRecord) { r.Note = strings.Repeat("n", MaxNoteLength+1) },
			wantErr: ErrNoteTooLong,
		},
		{
			name:    "bad scheme rejected",
			mutate:  func(r *FlagRecord) { r.TargetURL = "javascript:void(0)" },
			wantErr: ErrURLScheme,
		},
		{
			name:    "oversized locator rejected",
			mutate:  func(r *FlagRecord) { r.Locator = strings.Repeat("s", MaxLocatorLength+1) },
			wantErr: ErrLocatorTooLong,
		},
		{
			name:    "confidence out of range rejected",
			mutate:  func(r *FlagRecord) { r.Confidence = 101 },
			wantErr: ErrInvalidConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(r)
			err := r.Validate(schema)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecordIDAcceptsNumericAndString(t *testing.T) {
	var r FlagRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "url": "https://a.example"}`), &r))
	assert.Equal(t, RecordID("42"), r.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "0199b-uuid", "url": "https://a.example"}`), &r))
	assert.Equal(t, RecordID("0199b-uuid"), r.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &r))
	assert.Equal(t, RecordID(""), r.ID)
}

func TestSourceListColumnEncoding(t *testing.T) {
	v := Verification{
		Performed: true,
		Agreed:    false,
		Reasoning: "claim contradicted by multiple outlets",
		Sources: SourceList{
			{URL: "https://factcheck.example/x", Title: "X checked", Relevance: "direct"},
		},
	}

	data, err := json.Marshal(v)
	require.NoError(t, err)
	// The sources column is text holding encoded JSON, not a nested array.
	assert.Contains(t, string(data), `"llm_sources":"[`)

	var back Verification
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back.Sources, 1)
	assert.Equal(t, "https://factcheck.example/x", back.Sources[0].URL)

	// Older clients wrote a bare array; that still decodes.
	var legacy Verification
	require.NoError(t, json.Unmarshal([]byte(`{"llm_verified":true,"llm_sources":[{"url":"u","title":"t","relevance":"r"}]}`), &legacy))
	require.Len(t, legacy.Sources, 1)
	assert.Equal(t, "u", legacy.Sources[0].URL)
}
