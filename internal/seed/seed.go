// Package seed loads synthetic flags from a CSV file into the store,
// clearing both tables first. It exists for local development against the
// shim: a fresh database with believable data in one command.
package seed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Store is the subset of the REST client the seeder drives.
type Store interface {
	ClearContentFlags(ctx context.Context) error
	ClearLinkFlags(ctx context.Context) error
	CreateContentFlag(ctx context.Context, record *types.FlagRecord) (*types.FlagRecord, error)
	CreateLinkFlag(ctx context.Context, record *types.LinkFlagRecord) (*types.LinkFlagRecord, error)
}

// Result counts what was seeded.
type Result struct {
	Content int
	Links   int
}

// Row kinds in the seed file.
const (
	kindContent = "content"
	kindLink    = "link"
)

// requiredColumns must appear in the CSV header.
var requiredColumns = []string{"kind", "url", "flag_kind"}

// Run parses the CSV, clears both tables, and creates every row. The
// whole file is parsed and validated before anything is cleared, so a
// malformed file never leaves the store empty.
//
// Header columns: kind, url, content, content_kind, flag_kind,
// confidence, note, locator, username, flagged_from. Unknown columns are
// ignored; missing optional columns default to empty.
func Run(ctx context.Context, store Store, r io.Reader, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	contentRows, linkRows, err := parse(r)
	if err != nil {
		return Result{}, err
	}

	if err := store.ClearContentFlags(ctx); err != nil {
		return Result{}, fmt.Errorf("clearing content flags: %w", err)
	}
	if err := store.ClearLinkFlags(ctx); err != nil {
		return Result{}, fmt.Errorf("clearing link flags: %w", err)
	}

	var result Result
	for _, rec := range contentRows {
		if _, err := store.CreateContentFlag(ctx, rec); err != nil {
			return result, fmt.Errorf("seeding content flag for %s: %w", rec.PageKey, err)
		}
		result.Content++
	}
	for _, rec := range linkRows {
		if _, err := store.CreateLinkFlag(ctx, rec); err != nil {
			return result, fmt.Errorf("seeding link flag for %s: %w", rec.LinkURL, err)
		}
		result.Links++
	}

	log.Info("seed complete",
		zap.Int("content_flags", result.Content),
		zap.Int("link_flags", result.Links))
	return result, nil
}

func parse(r io.Reader) ([]*types.FlagRecord, []*types.LinkFlagRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading seed header: %w", err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("seed file missing column %q", name)
		}
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	schema := types.DefaultSchema()
	var contentRows []*types.FlagRecord
	var linkRows []*types.LinkFlagRecord

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("seed line %d: %w", line, err)
		}

		confidence, err := parseConfidence(field(row, "confidence"))
		if err != nil {
			return nil, nil, fmt.Errorf("seed line %d: %w", line, err)
		}

		switch kind := field(row, "kind"); kind {
		case kindContent:
			rec := &types.FlagRecord{
				TargetURL:   field(row, "url"),
				PageKey:     types.PageKey(field(row, "url")),
				Content:     field(row, "content"),
				ContentKind: field(row, "content_kind"),
				FlagKind:    field(row, "flag_kind"),
				Confidence:  confidence,
				Note:        field(row, "note"),
				Locator:     field(row, "locator"),
				SubmittedBy: field(row, "username"),
			}
			if rec.ContentKind == "" {
				rec.ContentKind = types.ContentText
			}
			if err := rec.Validate(schema); err != nil {
				return nil, nil, fmt.Errorf("seed line %d: %w", line, err)
			}
			contentRows = append(contentRows, rec)
		case kindLink:
			rec := &types.LinkFlagRecord{
				LinkURL:        field(row, "url"),
				FlaggedFromURL: field(row, "flagged_from"),
				FlagKind:       field(row, "flag_kind"),
				Confidence:     confidence,
				Note:           field(row, "note"),
				SubmittedBy:    field(row, "username"),
			}
			if err := rec.Validate(schema); err != nil {
				return nil, nil, fmt.Errorf("seed line %d: %w", line, err)
			}
			linkRows = append(linkRows, rec)
		default:
			return nil, nil, fmt.Errorf("seed line %d: unknown kind %q", line, kind)
		}
	}
	return contentRows, linkRows, nil
}

// parseConfidence accepts a percent integer or a legacy coarse value.
func parseConfidence(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	if value == types.CoarseCertain || value == types.CoarseUncertain {
		return types.CoarsePercent(value), nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence %q", value)
	}
	return n, nil
}
