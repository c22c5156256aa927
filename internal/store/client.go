// Package store persists flag records to a PostgREST-compatible REST
// endpoint, either a hosted Supabase project or a local development
// server. The two modes differ only in URL prefix and auth headers.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Table names on the REST endpoint.
const (
	TableContentFlags = "flagged_content"
	TableLinkFlags    = "flagged_links"
)

const defaultTimeout = 30 * time.Second

// Error is a failed store operation: a transport error or a non-2xx
// response. Status is zero when the request never completed.
type Error struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// Config holds store connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to one PostgREST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	local      bool
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient returns a Client for cfg. Loopback endpoints get bare table
// paths and no auth headers; anything else is treated as hosted Supabase
// and gets the /rest/v1/ prefix plus apikey and bearer headers.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("store endpoint not configured")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse store endpoint: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		local:      isLoopback(base.Hostname()),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// tableURL builds the request URL for a table plus raw query string.
func (c *Client) tableURL(table, query string) string {
	prefix := "/rest/v1/"
	if c.local {
		prefix = "/"
	}
	u := c.baseURL + prefix + table
	if query != "" {
		u += "?" + query
	}
	return u
}

func (c *Client) do(ctx context.Context, op, method, rawURL string, body io.Reader, extraHeaders map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if !c.local {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// CreateContentFlag persists a content flag and returns the stored row,
// including the store-assigned id and timestamp.
func (c *Client) CreateContentFlag(ctx context.Context, record *types.FlagRecord) (*types.FlagRecord, error) {
	return c.create(ctx, "create content flag", TableContentFlags, record)
}

func (c *Client) create(ctx context.Context, op, table string, record *types.FlagRecord) (*types.FlagRecord, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	data, err := c.do(ctx, op, http.MethodPost, c.tableURL(table, ""), bytes.NewReader(payload),
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}

	// PostgREST returns the representation as a one-element array.
	var rows []types.FlagRecord
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		c.log.Warn("create returned no representation", zap.String("table", table))
		return record, nil
	}
	return &rows[0], nil
}

// ListContentFlags returns all content flags stored under pageKey,
// newest first.
func (c *Client) ListContentFlags(ctx context.Context, pageKey string) ([]types.FlagRecord, error) {
	query := "page_url=eq." + url.QueryEscape(pageKey) + "&order=created_at.desc"
	data, err := c.do(ctx, "list content flags", http.MethodGet, c.tableURL(TableContentFlags, query), nil, nil)
	if err != nil {
		return nil, err
	}
	var rows []types.FlagRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &Error{Op: "list content flags", Err: err}
	}
	return rows, nil
}

// CreateLinkFlag persists a link flag.
func (c *Client) CreateLinkFlag(ctx context.Context, record *types.LinkFlagRecord) (*types.LinkFlagRecord, error) {
	op := "create link flag"
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	data, err := c.do(ctx, op, http.MethodPost, c.tableURL(TableLinkFlags, ""), bytes.NewReader(payload),
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}
	var rows []types.LinkFlagRecord
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return record, nil
	}
	return &rows[0], nil
}

// ListLinkFlags returns every stored link flag. The store only filters
// on exact strings, so URL-normalized matching happens client side via
// LinkFlagRecord.Matches.
func (c *Client) ListLinkFlags(ctx context.Context) ([]types.LinkFlagRecord, error) {
	data, err := c.do(ctx, "list link flags", http.MethodGet,
		c.tableURL(TableLinkFlags, "order=created_at.desc"), nil, nil)
	if err != nil {
		return nil, err
	}
	var rows []types.LinkFlagRecord
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, &Error{Op: "list link flags", Err: err}
	}
	return rows, nil
}

// DeleteContentFlag removes a content flag by id.
func (c *Client) DeleteContentFlag(ctx context.Context, id types.RecordID) error {
	query := "id=eq." + url.QueryEscape(string(id))
	_, err := c.do(ctx, "delete content flag", http.MethodDelete, c.tableURL(TableContentFlags, query), nil, nil)
	return err
}

// ClearContentFlags deletes every content flag. Used by seeding to reset
// state; only the local shim accepts an unfiltered delete.
func (c *Client) ClearContentFlags(ctx context.Context) error {
	_, err := c.do(ctx, "clear content flags", http.MethodDelete, c.tableURL(TableContentFlags, ""), nil, nil)
	return err
}

// ClearLinkFlags deletes every link flag.
func (c *Client) ClearLinkFlags(ctx context.Context) error {
	_, err := c.do(ctx, "clear link flags", http.MethodDelete, c.tableURL(TableLinkFlags, ""), nil, nil)
	return err
}

// DeleteLinkFlag removes a link flag by id.
func (c *Client) DeleteLinkFlag(ctx context.Context, id types.RecordID) error {
	query := "id=eq." + url.QueryEscape(string(id))
	_, err := c.do(ctx, "delete link flag", http.MethodDelete, c.tableURL(TableLinkFlags, query), nil, nil)
	return err
}
