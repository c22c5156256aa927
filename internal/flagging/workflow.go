// Package flagging orchestrates flag submission: selection capture,
// validation, optional oracle verification, persistence, and highlight
// application. Each submission runs as an explicit state machine so a
// failure at any step reports exactly where it stopped and leaves no
// partial state behind.
package flagging

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/mesh-intelligence/pagemark/internal/anchor"
	"github.com/mesh-intelligence/pagemark/internal/dom"
	"github.com/mesh-intelligence/pagemark/internal/highlight"
	"github.com/mesh-intelligence/pagemark/internal/oracle"
	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// ErrDeclined is returned when the oracle disagreed with the flag and the
// user chose not to proceed. Nothing is persisted.
var ErrDeclined = errors.New("submission declined after verification")

// State names the submission steps.
type State int

const (
	StateSelecting State = iota
	StateValidating
	StateVerifying
	StateConfirming
	StatePersisting
	StateHighlighting
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateSelecting:    "selecting",
	StateValidating:   "validating",
	StateVerifying:    "verifying",
	StateConfirming:   "confirming",
	StatePersisting:   "persisting",
	StateHighlighting: "highlighting",
	StateDone:         "done",
	StateAborted:      "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// highStakes lists the flag kinds that trigger oracle verification.
var highStakes = map[string]bool{
	types.FlagScam:           true,
	types.FlagMisinformation: true,
}

// Store is the persistence surface the workflow needs.
type Store interface {
	CreateContentFlag(ctx context.Context, record *types.FlagRecord) (*types.FlagRecord, error)
	ListContentFlags(ctx context.Context, pageKey string) ([]types.FlagRecord, error)
	DeleteContentFlag(ctx context.Context, id types.RecordID) error
	CreateLinkFlag(ctx context.Context, record *types.LinkFlagRecord) (*types.LinkFlagRecord, error)
	ListLinkFlags(ctx context.Context) ([]types.LinkFlagRecord, error)
	DeleteLinkFlag(ctx context.Context, id types.RecordID) error
}

// Verifier is the verification-oracle surface.
type Verifier interface {
	Configured() bool
	VerifyFlag(ctx context.Context, flagKind, content, pageURL string) (*oracle.VerifyResult, error)
}

// Confirmer decides whether to proceed after the oracle disagrees. Nil
// means never proceed.
type Confirmer func(result *oracle.VerifyResult) bool

// Workflow wires the submission steps together. One Workflow serves many
// submissions; per-submission state lives in the Result.
type Workflow struct {
	store      Store
	verifier   Verifier
	confirm    Confirmer
	resolver   *anchor.Resolver
	highlights *highlight.Manager
	schema     types.Schema
	username   string
	log        *zap.Logger
}

// Config assembles a Workflow.
type Config struct {
	Store    Store
	Verifier Verifier
	Confirm  Confirmer
	Schema   types.Schema
	Username string
	Log      *zap.Logger
}

// New returns a Workflow. A zero-value Schema falls back to the default
// generation; a nil logger disables logging.
func New(cfg Config) *Workflow {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if len(cfg.Schema.FlagKinds) == 0 {
		cfg.Schema = types.DefaultSchema()
	}
	return &Workflow{
		store:      cfg.Store,
		verifier:   cfg.Verifier,
		confirm:    cfg.Confirm,
		resolver:   anchor.NewResolver(cfg.Log),
		highlights: highlight.NewManager(),
		schema:     cfg.Schema,
		username:   cfg.Username,
		log:        cfg.Log,
	}
}

// ContentRequest is one in-page flag submission.
type ContentRequest struct {
	Doc       *html.Node
	Node      *html.Node // the selected node; source of the locator
	Selection types.SelectedContent
	PageURL   string
	FlagKind  string
	Note      string

	// Confidence on the percent scale, 0-100.
	Confidence int
}

// Result reports where a submission ended up. Warning carries the
// non-fatal verification failure message, if any.
type Result struct {
	State        State
	Record       *types.FlagRecord
	Highlighted  *html.Node
	Verification *oracle.VerifyResult
	Warning      string
}

// SubmitContent runs a full submission. Validation failures and store
// failures abort with an error; oracle failures degrade to an unverified
// submission with a warning. ErrDeclined means the user backed out at
// the confirmation gate.
func (w *Workflow) SubmitContent(ctx context.Context, req ContentRequest) (*Result, error) {
	result := &Result{State: StateValidating}

	payload, err := req.Selection.Payload()
	if err != nil {
		result.State = StateAborted
		return result, err
	}

	record := &types.FlagRecord{
		TargetURL:   req.PageURL,
		PageKey:     types.PageKey(req.PageURL),
		Content:     payload,
		ContentKind: req.Selection.Kind,
		FlagKind:    req.FlagKind,
		Confidence:  req.Confidence,
		Note:        req.Note,
		Locator:     dom.Encode(req.Node),
		SubmittedBy: w.username,
	}
	if err := record.Validate(w.schema); err != nil {
		result.State = StateAborted
		return result, err
	}
	result.Record = record

	if w.verifier != nil && w.verifier.Configured() && highStakes[req.FlagKind] {
		result.State = StateVerifying
		verdict, err := w.verifier.VerifyFlag(ctx, req.FlagKind, payload, req.PageURL)
		if err != nil {
			// Never fatal: proceed unverified and tell the user.
			w.log.Warn("flag verification failed", zap.Error(err))
			result.Warning = fmt.Sprintf("verification unavailable (%v); submitting unverified", err)
		} else {
			result.Verification = verdict
			record.Performed = true
			record.Agreed = verdict.Agrees
			record.Reasoning = verdict.Reasoning
			record.Sources = verdict.Sources

			if !verdict.Agrees {
				result.State = StateConfirming
				if w.confirm == nil || !w.confirm(verdict) {
					result.State = StateAborted
					return result, ErrDeclined
				}
			}
		}
	}

	result.State = StatePersisting
	stored, err := w.store.CreateContentFlag(ctx, record)
	if err != nil {
		result.State = StateAborted
		return result, fmt.Errorf("persisting flag: %w", err)
	}
	result.Record = stored

	result.State = StateHighlighting
	result.Highlighted = w.highlights.Apply(req.Node, stored)

	result.State = StateDone
	return result, nil
}

// LinkRequest is a whole-link flag, typically from a context action on an
// anchor element.
type LinkRequest struct {
	LinkURL    string
	FromURL    string
	FlagKind   string
	Note       string
	Confidence int
}

// SubmitLink validates and persists a link flag. Link flags skip
// verification and highlighting: there is no in-page content to check or
// mark.
func (w *Workflow) SubmitLink(ctx context.Context, req LinkRequest) (*types.LinkFlagRecord, error) {
	record := &types.LinkFlagRecord{
		LinkURL:        req.LinkURL,
		FlaggedFromURL: req.FromURL,
		FlagKind:       req.FlagKind,
		Confidence:     req.Confidence,
		Note:           req.Note,
		SubmittedBy:    w.username,
	}
	if err := record.Validate(w.schema); err != nil {
		return nil, err
	}
	stored, err := w.store.CreateLinkFlag(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("persisting link flag: %w", err)
	}
	return stored, nil
}

// Applied pairs a stored record with the element now carrying its
// highlight.
type Applied struct {
	Record *types.FlagRecord
	Node   *html.Node
}

// LoadHighlights fetches the page's flags, resolves anchors, and applies
// highlights. A store failure is logged and treated as "no flags": page
// rendering must never block on the store.
func (w *Workflow) LoadHighlights(ctx context.Context, doc *html.Node, pageURL string) []Applied {
	pageKey := types.PageKey(pageURL)
	records, err := w.store.ListContentFlags(ctx, pageKey)
	if err != nil {
		w.log.Warn("loading page flags failed",
			zap.String("page_key", pageKey),
			zap.Error(err))
		return nil
	}

	ptrs := make([]*types.FlagRecord, len(records))
	for i := range records {
		ptrs[i] = &records[i]
	}

	var applied []Applied
	for _, target := range w.resolver.Resolve(doc, ptrs) {
		if node := w.highlights.Apply(target.Node, target.Record); node != nil {
			applied = append(applied, Applied{Record: target.Record, Node: node})
		}
	}
	return applied
}

// MatchingLinkFlags returns the stored link flags that apply to the
// given navigation URL. The store only filters exact strings, so the
// normalized comparison happens here.
func (w *Workflow) MatchingLinkFlags(ctx context.Context, navigatedURL string) ([]types.LinkFlagRecord, error) {
	all, err := w.store.ListLinkFlags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing link flags: %w", err)
	}
	var matched []types.LinkFlagRecord
	for _, rec := range all {
		if rec.Matches(navigatedURL) {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

// Unflag deletes a persisted flag and strips its highlight from the
// document. The store delete is user-initiated, so its failure is
// surfaced rather than swallowed; the highlight stays in place when the
// delete failed.
func (w *Workflow) Unflag(ctx context.Context, doc *html.Node, id types.RecordID) error {
	if err := w.store.DeleteContentFlag(ctx, id); err != nil {
		return fmt.Errorf("unflagging %s: %w", id, err)
	}
	if doc == nil {
		return nil
	}
	if node := findHighlighted(doc, id); node != nil {
		w.highlights.Remove(node)
	}
	return nil
}

// findHighlighted locates the element carrying the highlight for id.
func findHighlighted(doc *html.Node, id types.RecordID) *html.Node {
	var found *html.Node
	dom.Elements(doc, func(n *html.Node) bool {
		if dom.Attr(n, highlight.AttrID) == string(id) {
			found = n
			return false
		}
		return true
	})
	return found
}
