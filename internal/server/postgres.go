package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS flagged_content (
	id            TEXT PRIMARY KEY,
	url           TEXT NOT NULL,
	page_url      TEXT NOT NULL,
	content       TEXT NOT NULL,
	content_type  TEXT NOT NULL,
	flag_type     TEXT NOT NULL,
	confidence    INTEGER NOT NULL DEFAULT 0,
	note          TEXT NOT NULL DEFAULT '',
	selector      TEXT NOT NULL DEFAULT '',
	username      TEXT NOT NULL DEFAULT '',
	llm_verified  BOOLEAN NOT NULL DEFAULT FALSE,
	llm_agrees    BOOLEAN NOT NULL DEFAULT FALSE,
	llm_reasoning TEXT NOT NULL DEFAULT '',
	llm_sources   TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flagged_content_page_url ON flagged_content (page_url);

CREATE TABLE IF NOT EXISTS flagged_links (
	id               TEXT PRIMARY KEY,
	url              TEXT NOT NULL,
	flagged_from_url TEXT NOT NULL DEFAULT '',
	flag_type        TEXT NOT NULL,
	confidence       INTEGER NOT NULL DEFAULT 0,
	note             TEXT NOT NULL DEFAULT '',
	username         TEXT NOT NULL DEFAULT '',
	llm_verified     BOOLEAN NOT NULL DEFAULT FALSE,
	llm_agrees       BOOLEAN NOT NULL DEFAULT FALSE,
	llm_reasoning    TEXT NOT NULL DEFAULT '',
	llm_sources      TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL
);`

// PostgresStore persists flags in Postgres via lib/pq.
type PostgresStore struct {
	db *sql.DB
}

var _ FlagStore = (*PostgresStore)(nil)

// OpenPostgres connects with the given DSN and ensures the schema exists.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error { return p.db.Close() }

// sourcesText flattens a source list into the text column encoding.
func sourcesText(sl types.SourceList) string {
	if len(sl) == 0 {
		return ""
	}
	data, err := json.Marshal([]types.Source(sl))
	if err != nil {
		return ""
	}
	return string(data)
}

// parseSources reads the text column encoding back into a source list.
func parseSources(text string) types.SourceList {
	if text == "" {
		return nil
	}
	var list []types.Source
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil
	}
	return list
}

func (p *PostgresStore) InsertContent(ctx context.Context, rec *types.FlagRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO flagged_content
			(id, url, page_url, content, content_type, flag_type, confidence,
			 note, selector, username, llm_verified, llm_agrees, llm_reasoning,
			 llm_sources, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		string(rec.ID), rec.TargetURL, rec.PageKey, rec.Content, rec.ContentKind,
		rec.FlagKind, rec.Confidence, rec.Note, rec.Locator, rec.SubmittedBy,
		rec.Performed, rec.Agreed, rec.Reasoning, sourcesText(rec.Sources),
		rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting content flag: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListContent(ctx context.Context, q Query) ([]types.FlagRecord, error) {
	query := `
		SELECT id, url, page_url, content, content_type, flag_type, confidence,
		       note, selector, username, llm_verified, llm_agrees, llm_reasoning,
		       llm_sources, created_at
		FROM flagged_content`
	var args []any
	where := ""
	if q.ID != "" {
		args = append(args, string(q.ID))
		where = fmt.Sprintf(" WHERE id = $%d", len(args))
	}
	if q.HasPage {
		args = append(args, q.PageKey)
		clause := fmt.Sprintf("page_url = $%d", len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}
	order := " ORDER BY created_at ASC"
	if q.OrderDesc {
		order = " ORDER BY created_at DESC"
	}

	rows, err := p.db.QueryContext(ctx, query+where+order, args...)
	if err != nil {
		return nil, fmt.Errorf("listing content flags: %w", err)
	}
	defer rows.Close()

	var out []types.FlagRecord
	for rows.Next() {
		var rec types.FlagRecord
		var id, sources string
		if err := rows.Scan(&id, &rec.TargetURL, &rec.PageKey, &rec.Content,
			&rec.ContentKind, &rec.FlagKind, &rec.Confidence, &rec.Note,
			&rec.Locator, &rec.SubmittedBy, &rec.Performed, &rec.Agreed,
			&rec.Reasoning, &sources, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning content flag: %w", err)
		}
		rec.ID = types.RecordID(id)
		rec.Sources = parseSources(sources)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteContent(ctx context.Context, id types.RecordID) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM flagged_content WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("deleting content flag: %w", err)
	}
	return nil
}

func (p *PostgresStore) ClearContent(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM flagged_content"); err != nil {
		return fmt.Errorf("clearing content flags: %w", err)
	}
	return nil
}

func (p *PostgresStore) InsertLink(ctx context.Context, rec *types.LinkFlagRecord) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO flagged_links
			(id, url, flagged_from_url, flag_type, confidence, note, username,
			 llm_verified, llm_agrees, llm_reasoning, llm_sources, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		string(rec.ID), rec.LinkURL, rec.FlaggedFromURL, rec.FlagKind,
		rec.Confidence, rec.Note, rec.SubmittedBy, rec.Performed, rec.Agreed,
		rec.Reasoning, sourcesText(rec.Sources), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting link flag: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListLink(ctx context.Context, q Query) ([]types.LinkFlagRecord, error) {
	query := `
		SELECT id, url, flagged_from_url, flag_type, confidence, note, username,
		       llm_verified, llm_agrees, llm_reasoning, llm_sources, created_at
		FROM flagged_links`
	var args []any
	where := ""
	if q.ID != "" {
		args = append(args, string(q.ID))
		where = " WHERE id = $1"
	}
	order := " ORDER BY created_at ASC"
	if q.OrderDesc {
		order = " ORDER BY created_at DESC"
	}

	rows, err := p.db.QueryContext(ctx, query+where+order, args...)
	if err != nil {
		return nil, fmt.Errorf("listing link flags: %w", err)
	}
	defer rows.Close()

	var out []types.LinkFlagRecord
	for rows.Next() {
		var rec types.LinkFlagRecord
		var id, sources string
		if err := rows.Scan(&id, &rec.LinkURL, &rec.FlaggedFromURL, &rec.FlagKind,
			&rec.Confidence, &rec.Note, &rec.SubmittedBy, &rec.Performed,
			&rec.Agreed, &rec.Reasoning, &sources, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning link flag: %w", err)
		}
		rec.ID = types.RecordID(id)
		rec.Sources = parseSources(sources)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteLink(ctx context.Context, id types.RecordID) error {
	_, err := p.db.ExecContext(ctx, "DELETE FROM flagged_links WHERE id = $1", string(id))
	if err != nil {
		return fmt.Errorf("deleting link flag: %w", err)
	}
	return nil
}

func (p *PostgresStore) ClearLink(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM flagged_links"); err != nil {
		return fmt.Errorf("clearing link flags: %w", err)
	}
	return nil
}

func (p *PostgresStore) Counts(ctx context.Context) (int, int, error) {
	var content, links int
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM flagged_content").Scan(&content); err != nil {
		return 0, 0, fmt.Errorf("counting content flags: %w", err)
	}
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM flagged_links").Scan(&links); err != nil {
		return 0, 0, fmt.Errorf("counting link flags: %w", err)
	}
	return content, links, nil
}
