package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/oracle"
)

// fakeOracle drives Scan without a network. verdict decides per chunk;
// delay lets tests invert completion order.
type fakeOracle struct {
	verdict func(chunk string) (*oracle.ScanResult, error)
	delay   func(chunk string) time.Duration
}

func (f *fakeOracle) CheckChunk(ctx context.Context, chunk, pageURL string) (*oracle.ScanResult, error) {
	if f.delay != nil {
		select {
		case <-time.After(f.delay(chunk)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.verdict(chunk)
}

func longPara(label string) string {
	return fmt.Sprintf("%s: %s", label, strings.Repeat("claims and more claims ", 4))
}

func pageWith(paras ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, p := range paras {
		sb.WriteString("<p>")
		sb.WriteString(p)
		sb.WriteString("</p>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

func TestExtractCandidates(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
		<p>short</p>
		<p>` + longPara("first") + `</p>
		<div class="comment-body">` + longPara("second") + `</div>
		<span>` + longPara("ignored span") + `</span>
		<blockquote>` + longPara("third") + `</blockquote>
	</body></html>`)
	require.NoError(t, err)

	got := ExtractCandidates(doc)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "first:"))
	assert.True(t, strings.HasPrefix(got[1], "second:"))
	assert.True(t, strings.HasPrefix(got[2], "third:"))
}

func TestExtractCandidatesNoNesting(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
		<article><p>` + longPara("inner") + `</p></article>
	</body></html>`)
	require.NoError(t, err)

	// The article subtree matches first; the nested paragraph must not
	// produce a second candidate.
	got := ExtractCandidates(doc)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "inner:"))
}

func TestExtractCandidatesCap(t *testing.T) {
	paras := make([]string, 30)
	for i := range paras {
		paras[i] = longPara(fmt.Sprintf("para%02d", i))
	}
	doc, err := dom.ParseString(pageWith(paras...))
	require.NoError(t, err)

	got := ExtractCandidates(doc)
	require.Len(t, got, MaxCandidates)
	assert.True(t, strings.HasPrefix(got[0], "para00:"))
	assert.True(t, strings.HasPrefix(got[19], "para19:"))
}

func TestScanNoContent(t *testing.T) {
	doc, err := dom.ParseString("<html><body><p>short</p></body></html>")
	require.NoError(t, err)

	s := New(&fakeOracle{verdict: func(string) (*oracle.ScanResult, error) {
		t.Fatal("oracle must not be called")
		return nil, nil
	}}, nil)
	_, err = s.Scan(context.Background(), doc, "https://news.example/a")
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Contains(t, err.Error(), "no content found")
}

func TestScanOrderingDespiteLatency(t *testing.T) {
	first := longPara("first")
	last := longPara("last")
	doc, err := dom.ParseString(pageWith(first, last))
	require.NoError(t, err)

	// The first candidate responds slowest; document order must win.
	s := New(&fakeOracle{
		verdict: func(chunk string) (*oracle.ScanResult, error) {
			return &oracle.ScanResult{Suspicious: true, Reasoning: "suspect: " + chunk[:5]}, nil
		},
		delay: func(chunk string) time.Duration {
			if strings.HasPrefix(chunk, "first") {
				return 50 * time.Millisecond
			}
			return 0
		},
	}, nil)

	findings, err := s.Scan(context.Background(), doc, "https://news.example/a")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.True(t, strings.HasPrefix(findings[0].Text, "first"))
	assert.True(t, strings.HasPrefix(findings[1].Text, "last"))
}

func TestScanIsolatesFailures(t *testing.T) {
	paras := []string{longPara("ok1"), longPara("bad"), longPara("ok2")}
	doc, err := dom.ParseString(pageWith(paras...))
	require.NoError(t, err)

	s := New(&fakeOracle{verdict: func(chunk string) (*oracle.ScanResult, error) {
		if strings.HasPrefix(chunk, "bad") {
			return nil, errors.New("connection reset")
		}
		return &oracle.ScanResult{Suspicious: true, Reasoning: "r"}, nil
	}}, nil)

	findings, err := s.Scan(context.Background(), doc, "https://news.example/a")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.True(t, strings.HasPrefix(findings[0].Text, "ok1"))
	assert.True(t, strings.HasPrefix(findings[1].Text, "ok2"))
}

func TestScanFiltersNegatives(t *testing.T) {
	doc, err := dom.ParseString(pageWith(longPara("benign"), longPara("dodgy")))
	require.NoError(t, err)

	s := New(&fakeOracle{verdict: func(chunk string) (*oracle.ScanResult, error) {
		return &oracle.ScanResult{
			Suspicious: strings.HasPrefix(chunk, "dodgy"),
			Reasoning:  "checkable dubious claim",
			Sources:    []string{"https://who.int"},
		}, nil
	}}, nil)

	findings, err := s.Scan(context.Background(), doc, "https://news.example/a")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.True(t, strings.HasPrefix(findings[0].Text, "dodgy"))
	assert.Equal(t, "checkable dubious claim", findings[0].Reasoning)
	assert.Equal(t, []string{"https://who.int"}, findings[0].Sources)
	assert.NotEmpty(t, findings[0].Normalized)
	assert.NotContains(t, findings[0].Normalized, "  ")
}
