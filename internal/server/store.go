// Package server is the local PostgREST-compatible shim: a small HTTP
// surface over Postgres exposing the two flag tables with the subset of
// PostgREST query syntax the extension client uses. Running it lets the
// whole system work against a loopback endpoint instead of hosted
// Supabase.
package server

import (
	"context"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Query is the filter set the shim understands: optional exact-id and
// exact-page-key filters, plus created_at ordering.
type Query struct {
	ID        types.RecordID
	PageKey   string
	HasPage   bool
	OrderDesc bool
}

// FlagStore is the persistence surface behind the HTTP handlers. The
// production implementation is Postgres; tests use the in-memory one.
type FlagStore interface {
	InsertContent(ctx context.Context, rec *types.FlagRecord) error
	ListContent(ctx context.Context, q Query) ([]types.FlagRecord, error)
	DeleteContent(ctx context.Context, id types.RecordID) error
	ClearContent(ctx context.Context) error

	InsertLink(ctx context.Context, rec *types.LinkFlagRecord) error
	ListLink(ctx context.Context, q Query) ([]types.LinkFlagRecord, error)
	DeleteLink(ctx context.Context, id types.RecordID) error
	ClearLink(ctx context.Context) error

	Counts(ctx context.Context) (content, links int, err error)
}
