package types

import "errors"

// Selection errors.
var (
	ErrNoSelection    = errors.New("no content selected")
	ErrSourceMissing  = errors.New("selected media has no source")
	ErrUnknownContent = errors.New("unknown selected content kind")
)

// SelectedContent is a tagged variant describing what the user selected:
// a text run, an image, a video, or some other element. Kind discriminates
// which fields are meaningful.
type SelectedContent struct {
	Kind string // one of the ContentKind constants

	Text string // ContentText: the selected text run
	Src  string // ContentImage, ContentVideo: the media source URI
	Alt  string // ContentImage: alternative text, may be empty
}

// TextSelection builds a text selection.
func TextSelection(text string) SelectedContent {
	return SelectedContent{Kind: ContentText, Text: text}
}

// ImageSelection builds an image selection.
func ImageSelection(src, alt string) SelectedContent {
	return SelectedContent{Kind: ContentImage, Src: src, Alt: alt}
}

// VideoSelection builds a video selection.
func VideoSelection(src string) SelectedContent {
	return SelectedContent{Kind: ContentVideo, Src: src}
}

// OtherSelection builds a selection for content outside the text/image/video
// kinds, carrying an opaque payload.
func OtherSelection(payload string) SelectedContent {
	return SelectedContent{Kind: ContentOther, Src: payload}
}

// Payload returns the literal flagged payload for persistence: the selected
// text for text selections, the source URI otherwise. Media selections
// without a source are rejected.
func (sc SelectedContent) Payload() (string, error) {
	switch sc.Kind {
	case ContentText:
		if sc.Text == "" {
			return "", ErrNoSelection
		}
		return sc.Text, nil
	case ContentImage, ContentVideo:
		if sc.Src == "" {
			return "", ErrSourceMissing
		}
		return sc.Src, nil
	case ContentOther:
		if sc.Src == "" {
			return "", ErrNoSelection
		}
		return sc.Src, nil
	default:
		return "", ErrUnknownContent
	}
}
