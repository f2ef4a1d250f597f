// Package ledger records token usage and cost of every generation call.
// It stores accounting rows only; blueprints and generated code never leave
// the in-memory session.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/instasite/internal/db"
)

// Kind identifies which generation operation produced an entry.
type Kind string

const (
	KindBlueprint Kind = "blueprint"
	KindPage      Kind = "page"
	KindSection   Kind = "section"
)

// Entry is one recorded generation call.
type Entry struct {
	ID           string
	CreatedAt    time.Time
	SessionID    string
	Kind         Kind
	Target       string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Duration     time.Duration
	Error        string
}

// Summary aggregates entries of one kind and model.
type Summary struct {
	Kind         Kind
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Store persists entries to the usage database.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts an entry. A missing ID is generated; a missing session id is
// taken from ctx.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.SessionID == "" {
		e.SessionID = SessionFrom(ctx)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generations (
			id, session_id, kind, target, provider, model,
			input_tokens, output_tokens, cost_usd, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, string(e.Kind), e.Target, e.Provider, e.Model,
		e.InputTokens, e.OutputTokens, e.CostUSD, e.Duration.Milliseconds(), e.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting generation entry: %w", err)
	}
	return nil
}

// Summarize returns per kind and model totals, optionally restricted to
// entries created at or after since.
func (s *Store) Summarize(ctx context.Context, since time.Time) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, model, COUNT(*),
		       SUM(CASE WHEN error != '' THEN 1 ELSE 0 END),
		       SUM(input_tokens), SUM(output_tokens), SUM(cost_usd)
		FROM generations
		WHERE created_at >= ?
		GROUP BY kind, model
		ORDER BY kind, model`, since.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("querying generation summary: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var kind string
		if err := rows.Scan(&kind, &sm.Model, &sm.Calls, &sm.Failures, &sm.InputTokens, &sm.OutputTokens, &sm.CostUSD); err != nil {
			return nil, fmt.Errorf("scanning generation summary: %w", err)
		}
		sm.Kind = Kind(kind)
		out = append(out, sm)
	}
	return out, rows.Err()
}

// ForSession lists the entries of one session, oldest first.
func (s *Store) ForSession(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, session_id, kind, target, provider, model,
		       input_tokens, output_tokens, cost_usd, duration_ms, error
		FROM generations WHERE session_id = ?
		ORDER BY created_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind, created string
		var durationMS int64
		if err := rows.Scan(&e.ID, &created, &e.SessionID, &kind, &e.Target, &e.Provider, &e.Model,
			&e.InputTokens, &e.OutputTokens, &e.CostUSD, &durationMS, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning session entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.CreatedAt = parseTimestamp(created)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// parseTimestamp accepts both the text SQLite stores and the RFC 3339 form
// the driver produces for DATETIME columns.
func parseTimestamp(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t
	}
	return time.Time{}
}

type sessionKey struct{}

// WithSession tags ctx with the id of the editing session making the call.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFrom returns the session id stored by WithSession, or "".
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
