package flagging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/highlight"
	"github.com/mesh-intelligence/pagemark/internal/oracle"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

type fakeStore struct {
	content []types.FlagRecord
	links   []types.LinkFlagRecord

	listErr   error
	createErr error
	deleted   []types.RecordID
	nextID    int
}

func (f *fakeStore) CreateContentFlag(_ context.Context, record *types.FlagRecord) (*types.FlagRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *record
	f.nextID++
	stored.ID = types.RecordID(fmt.Sprintf("%d", f.nextID))
	f.content = append(f.content, stored)
	return &stored, nil
}

func (f *fakeStore) ListContentFlags(_ context.Context, pageKey string) ([]types.FlagRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []types.FlagRecord
	for _, rec := range f.content {
		if rec.PageKey == pageKey {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteContentFlag(_ context.Context, id types.RecordID) error {
	f.deleted = append(f.deleted, id)
	kept := f.content[:0]
	for _, rec := range f.content {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	f.content = kept
	return nil
}

func (f *fakeStore) CreateLinkFlag(_ context.Context, record *types.LinkFlagRecord) (*types.LinkFlagRecord, error) {
	stored := *record
	f.nextID++
	stored.ID = types.RecordID(fmt.Sprintf("%d", f.nextID))
	f.links = append(f.links, stored)
	return &stored, nil
}

func (f *fakeStore) ListLinkFlags(_ context.Context) ([]types.LinkFlagRecord, error) {
	return f.links, nil
}

func (f *fakeStore) DeleteLinkFlag(_ context.Context, id types.RecordID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeVerifier struct {
	configured bool
	result     *oracle.VerifyResult
	err        error
	calls      int
}

func (f *fakeVerifier) Configured() bool { return f.configured }

func (f *fakeVerifier) VerifyFlag(_ context.Context, _, _, _ string) (*oracle.VerifyResult, error) {
	f.calls++
	return f.result, f.err
}

func parsePage(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := dom.ParseString("<html><body>" + body + "</body></html>")
	require.NoError(t, err)
	return doc
}

func elementByTag(doc *html.Node, tag string) *html.Node {
	var found *html.Node
	dom.Elements(doc, func(n *html.Node) bool {
		if n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

const claim = "Breaking: moon made of cheese"

func contentRequest(doc *html.Node) ContentRequest {
	return ContentRequest{
		Doc:        doc,
		Node:       elementByTag(doc, "p"),
		Selection:  types.TextSelection(claim),
		PageURL:    "https://news.example/a",
		FlagKind:   types.FlagMisinformation,
		Confidence: 80,
	}
}

func TestSubmitContentWithoutOracle(t *testing.T) {
	store := &fakeStore{}
	w := New(Config{Store: store, Username: "CuriousOtter42"})
	doc := parsePage(t, `<p id="story">`+claim+`</p>`)

	result, err := w.SubmitContent(context.Background(), contentRequest(doc))
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)

	require.Len(t, store.content, 1)
	stored := store.content[0]
	assert.Equal(t, claim, stored.Content)
	assert.Equal(t, "news.example/a", stored.PageKey)
	assert.Equal(t, "p#story", stored.Locator)
	assert.Equal(t, "CuriousOtter42", stored.SubmittedBy)
	assert.False(t, stored.Performed)

	require.NotNil(t, result.Highlighted)
	assert.True(t, dom.HasClass(result.Highlighted, highlight.HighlightClass))
	assert.Equal(t, string(stored.ID), dom.Attr(result.Highlighted, highlight.AttrID))
}

func TestSubmitContentValidationAborts(t *testing.T) {
	store := &fakeStore{}
	w := New(Config{Store: store})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	req := contentRequest(doc)
	req.FlagKind = "slander"
	result, err := w.SubmitContent(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrInvalidFlagKind)
	assert.Equal(t, StateAborted, result.State)
	assert.Empty(t, store.content)
}

func TestSubmitContentEmptySelectionAborts(t *testing.T) {
	w := New(Config{Store: &fakeStore{}})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	req := contentRequest(doc)
	req.Selection = types.TextSelection("")
	_, err := w.SubmitContent(context.Background(), req)
	assert.ErrorIs(t, err, types.ErrNoSelection)
}

func TestVerificationOnlyForHighStakes(t *testing.T) {
	verifier := &fakeVerifier{configured: true, result: &oracle.VerifyResult{Agrees: true}}
	w := New(Config{Store: &fakeStore{}, Verifier: verifier})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	req := contentRequest(doc)
	req.FlagKind = types.FlagOther
	_, err := w.SubmitContent(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, verifier.calls)

	req.FlagKind = types.FlagScam
	_, err = w.SubmitContent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, verifier.calls)
}

func TestOracleFailureDegradesToUnverified(t *testing.T) {
	store := &fakeStore{}
	verifier := &fakeVerifier{configured: true, err: errors.New("connection refused")}
	w := New(Config{Store: store, Verifier: verifier})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	result, err := w.SubmitContent(context.Background(), contentRequest(doc))
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	assert.Contains(t, result.Warning, "unverified")
	require.Len(t, store.content, 1)
	assert.False(t, store.content[0].Performed)
}

func TestOracleDisagreementDeclined(t *testing.T) {
	store := &fakeStore{}
	verifier := &fakeVerifier{configured: true, result: &oracle.VerifyResult{
		Agrees:    false,
		Reasoning: "the claim checks out",
	}}
	w := New(Config{
		Store:    store,
		Verifier: verifier,
		Confirm:  func(*oracle.VerifyResult) bool { return false },
	})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	result, err := w.SubmitContent(context.Background(), contentRequest(doc))
	assert.ErrorIs(t, err, ErrDeclined)
	assert.Equal(t, StateAborted, result.State)
	assert.Empty(t, store.content)
	assert.Nil(t, result.Highlighted)
}

func TestOracleDisagreementConfirmed(t *testing.T) {
	store := &fakeStore{}
	verifier := &fakeVerifier{configured: true, result: &oracle.VerifyResult{
		Agrees:    false,
		Reasoning: "the claim checks out",
		Sources:   []types.Source{{URL: "https://example.org", Title: "t", Relevance: "r"}},
	}}
	w := New(Config{
		Store:    store,
		Verifier: verifier,
		Confirm:  func(*oracle.VerifyResult) bool { return true },
	})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	result, err := w.SubmitContent(context.Background(), contentRequest(doc))
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)
	require.Len(t, store.content, 1)
	assert.True(t, store.content[0].Performed)
	assert.False(t, store.content[0].Agreed)
	assert.Len(t, store.content[0].Sources, 1)
}

func TestLoadHighlightsFallsBackToText(t *testing.T) {
	// Stored locator points at structure that no longer exists; the
	// flagged text survives in a different element.
	store := &fakeStore{content: []types.FlagRecord{{
		ID:          "9",
		PageKey:     "news.example/a",
		Content:     claim,
		ContentKind: types.ContentText,
		FlagKind:    types.FlagMisinformation,
		Locator:     "div#old-layout > p:nth-of-type(3)",
	}}}
	w := New(Config{Store: store})
	doc := parsePage(t, `<section><span>`+claim+`</span></section>`)

	applied := w.LoadHighlights(context.Background(), doc, "https://news.example/a?ref=home")
	require.Len(t, applied, 1)
	assert.True(t, dom.HasClass(applied[0].Node, highlight.HighlightClass))
}

func TestLoadHighlightsStoreFailureIsQuiet(t *testing.T) {
	store := &fakeStore{listErr: errors.New("store offline")}
	w := New(Config{Store: store})
	doc := parsePage(t, `<p>`+claim+`</p>`)

	assert.Nil(t, w.LoadHighlights(context.Background(), doc, "https://news.example/a"))
}

func TestUnflagRemovesRecordAndHighlight(t *testing.T) {
	store := &fakeStore{}
	w := New(Config{Store: store})
	doc := parsePage(t, `<p id="story">`+claim+`</p>`)

	result, err := w.SubmitContent(context.Background(), contentRequest(doc))
	require.NoError(t, err)
	id := result.Record.ID

	require.NoError(t, w.Unflag(context.Background(), doc, id))
	assert.Equal(t, []types.RecordID{id}, store.deleted)

	rendered, err := dom.RenderString(doc)
	require.NoError(t, err)
	assert.NotContains(t, rendered, highlight.AttrID)
	assert.NotContains(t, rendered, highlight.HighlightClass)
	assert.Contains(t, rendered, claim)
}

func TestSubmitAndMatchLinkFlags(t *testing.T) {
	store := &fakeStore{}
	w := New(Config{Store: store, Username: "QuietBadger77"})

	stored, err := w.SubmitLink(context.Background(), LinkRequest{
		LinkURL:    "https://www.scam.example/offer/",
		FromURL:    "https://news.example/a",
		FlagKind:   types.FlagScam,
		Confidence: 90,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "QuietBadger77", stored.SubmittedBy)

	matched, err := w.MatchingLinkFlags(context.Background(), "https://scam.example/offer")
	require.NoError(t, err)
	require.Len(t, matched, 1)

	matched, err = w.MatchingLinkFlags(context.Background(), "https://scam.example/other")
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestSubmitLinkRejectsBadScheme(t *testing.T) {
	w := New(Config{Store: &fakeStore{}})
	_, err := w.SubmitLink(context.Background(), LinkRequest{
		LinkURL:  "javascript:alert(1)",
		FlagKind: types.FlagScam,
	})
	assert.ErrorIs(t, err, types.ErrURLScheme)
}

func TestPopupSessionSinglePopup(t *testing.T) {
	s := NewPopupSession()
	assert.Nil(t, s.Current())

	first := s.Open(&types.FlagRecord{ID: "1", FlagKind: types.FlagScam, Confidence: 90}, nil)
	assert.Same(t, first, s.Current())
	assert.True(t, strings.Contains(first.HTML, "scam"))

	second := s.Open(&types.FlagRecord{ID: "2", FlagKind: types.FlagOther, Confidence: 10}, nil)
	assert.Same(t, second, s.Current())
	assert.NotSame(t, first, s.Current())

	s.Close()
	assert.Nil(t, s.Current())
	s.Close()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "unknown", State(99).String())
}
