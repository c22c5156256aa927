// Package scanner extracts candidate prose blocks from a page and
// evaluates each against the suspicion oracle, keeping only positive
// findings in document order.
package scanner

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/oracle"
	"github.com/mesh-intelligence/pagemark/internal/splitter"
	"github.com/mesh-intelligence/pagemark/internal/textutil"
)

// ErrNoContent is returned when a page yields zero scan candidates.
var ErrNoContent = errors.New("no content found")

// Candidate selection limits.
const (
	MinCandidateLength = 50
	MaxCandidates      = 20
)

// proseTags are element tags treated as prose blocks outright.
var proseTags = map[string]bool{
	"p":          true,
	"article":    true,
	"section":    true,
	"blockquote": true,
	"li":         true,
	"td":         true,
}

// classHints mark container elements that conventionally hold prose.
var classHints = []string{"article", "content", "comment", "text", "paragraph"}

// Finding is one positive oracle verdict on a chunk of page text.
type Finding struct {
	Text       string   `json:"text"`
	Normalized string   `json:"normalized"`
	Reasoning  string   `json:"reasoning"`
	Sources    []string `json:"sources"`
}

// ChunkChecker is the oracle surface the scanner needs.
type ChunkChecker interface {
	CheckChunk(ctx context.Context, chunk, pageURL string) (*oracle.ScanResult, error)
}

// Scanner fans candidate chunks out to the oracle.
type Scanner struct {
	oracle   ChunkChecker
	splitter *splitter.Splitter
	log      *zap.Logger
}

// New returns a Scanner. A nil logger disables logging.
func New(checker ChunkChecker, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		oracle:   checker,
		splitter: splitter.New(splitter.DefaultChunkSize),
		log:      log,
	}
}

// isProse reports whether n looks like a prose block: a prose tag, or a
// class attribute containing one of the conventional content hints.
func isProse(n *html.Node) bool {
	if proseTags[n.Data] {
		return true
	}
	class := strings.ToLower(dom.Attr(n, "class"))
	for _, hint := range classHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

// ExtractCandidates walks the document in order and collects the first
// MaxCandidates prose blocks whose visible text exceeds
// MinCandidateLength characters. A matched element's subtree is not
// descended into, so nested prose is not double-counted.
func ExtractCandidates(doc *html.Node) []string {
	var candidates []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(candidates) >= MaxCandidates {
			return
		}
		if n.Type == html.ElementNode && isProse(n) {
			text := strings.TrimSpace(dom.InnerText(n))
			if len(text) > MinCandidateLength {
				candidates = append(candidates, text)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return candidates
}

// Scan extracts candidates from doc, chunks each, and evaluates every
// chunk concurrently. Findings come back in document order regardless of
// oracle completion order. A failed evaluation drops only its own chunk.
func (s *Scanner) Scan(ctx context.Context, doc *html.Node, pageURL string) ([]Finding, error) {
	candidates := ExtractCandidates(doc)
	if len(candidates) == 0 {
		return nil, ErrNoContent
	}

	var chunks []string
	for _, candidate := range candidates {
		chunks = append(chunks, s.splitter.Split(candidate)...)
	}

	s.log.Debug("scanning page",
		zap.String("page_url", pageURL),
		zap.Int("candidates", len(candidates)),
		zap.Int("chunks", len(chunks)))

	// Results keep their chunk index so document order survives the
	// concurrent fan-out.
	results := make([]*Finding, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			verdict, err := s.oracle.CheckChunk(gctx, chunk, pageURL)
			if err != nil {
				s.log.Warn("chunk evaluation failed",
					zap.Int("chunk", i),
					zap.Error(err))
				return nil
			}
			if !verdict.Suspicious {
				return nil
			}
			results[i] = &Finding{
				Text:       chunk,
				Normalized: textutil.Normalize(chunk),
				Reasoning:  verdict.Reasoning,
				Sources:    verdict.Sources,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []Finding
	for _, r := range results {
		if r != nil {
			findings = append(findings, *r)
		}
	}
	return findings, nil
}
