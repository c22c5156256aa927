package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectedContentPayload(t *testing.T) {
	tests := []struct {
		name    string
		sel     SelectedContent
		want    string
		wantErr error
	}{
		{name: "text", sel: TextSelection("some claim"), want: "some claim"},
		{name: "empty text", sel: TextSelection(""), wantErr: ErrNoSelection},
		{name: "image", sel: ImageSelection("https://cdn.example/i.png", "alt"), want: "https://cdn.example/i.png"},
		{name: "image without source", sel: ImageSelection("", ""), wantErr: ErrSourceMissing},
		{name: "video", sel: VideoSelection("https://cdn.example/v.mp4"), want: "https://cdn.example/v.mp4"},
		{name: "video without source", sel: VideoSelection(""), wantErr: ErrSourceMissing},
		{name: "other", sel: OtherSelection("blob:x"), want: "blob:x"},
		{name: "unknown kind", sel: SelectedContent{Kind: "iframe"}, wantErr: ErrUnknownContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sel.Payload()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
