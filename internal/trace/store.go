// Package trace implements the Tracer: a local transactional store keyed
// by trace id, with tree assembly on read and retention/sweep policies.
package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/browserpilot/agent/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	is_root INTEGER NOT NULL,
	start_time INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	input_preview TEXT,
	output_preview TEXT,
	error TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meta_is_root ON meta(is_root, created_at);

CREATE TABLE IF NOT EXISTS events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id TEXT NOT NULL,
	type TEXT NOT NULL,
	run_id TEXT,
	time INTEGER NOT NULL,
	payload TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_trace_id ON events(trace_id);

CREATE TABLE IF NOT EXISTS stats (
	counter_name TEXT NOT NULL,
	ts INTEGER NOT NULL,
	amount REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stats_name ON stats(counter_name, ts);

CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store is the sqlite-backed Tracer, used in place of the in-memory map
// the spec describes: this gives the events/meta tables real transactional
// writes and durability across restarts, and lets the 100-root retention
// sweep be plain SQL. Dropped oversized events are counted in memory only.
type Store struct {
	db            *sql.DB
	log           *slog.Logger
	oversizedByAction map[string]int
}

// Open creates (or attaches to) a sqlite database at path and ensures the
// schema exists. On open it sweeps any meta rows left in "running" status
// from a previous process that was torn down mid-action, matching the
// spec's "stale metas swept at startup" requirement.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("trace: open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: apply schema: %w", err)
	}
	s := &Store{db: db, log: log, oversizedByAction: make(map[string]int)}
	if err := s.sweepStaleRunning(); err != nil {
		log.Warn("trace: failed to sweep stale running traces", "error", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// sweepStaleRunning marks every meta row still "running" as "error" with a
// synthetic message, since a process restart means its promise was
// abandoned.
func (s *Store) sweepStaleRunning() error {
	_, err := s.db.Exec(
		`UPDATE meta SET status = ?, error = ? WHERE status = ?`,
		string(models.TraceError), "abandoned: process restarted while running", string(models.TraceRunning),
	)
	return err
}

// Persist writes one completed (or running) trace node's meta row,
// inserting or replacing by id. isRoot is inferred from the id scheme: a
// plain uuid (no underscore) is a root action trace; anything containing
// "_" is a step or composite child id.
func (s *Store) Persist(ctx context.Context, t *models.Trace) error {
	inputPreview, err := SanitizeAndMarshal(t.Input)
	if err != nil {
		inputPreview = []byte(`{"error":"failed to sanitize input"}`)
	}
	outputPreview, err := SanitizeAndMarshal(t.Output)
	if err != nil {
		outputPreview = []byte(`{"error":"failed to sanitize output"}`)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO meta (id, name, kind, status, is_root, start_time, duration_ms, input_preview, output_preview, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, duration_ms=excluded.duration_ms,
			output_preview=excluded.output_preview, error=excluded.error`,
		t.ID, t.Name, string(t.Kind), string(t.Status), boolToInt(isRootID(t.ID)),
		t.StartTime.UnixMilli(), t.Duration.Milliseconds(),
		string(inputPreview), string(outputPreview), t.Err, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("trace: persist meta %s: %w", t.ID, err)
	}

	if isRootID(t.ID) {
		if err := s.sweepRetention(ctx); err != nil {
			s.log.Warn("trace: retention sweep failed", "error", err)
		}
	}
	return nil
}

// Emit appends one AgentEvent row, dropping (and counting) events whose
// serialized payload exceeds the 1 MB cap.
func (s *Store) Emit(ctx context.Context, event models.AgentEvent) {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		s.log.Warn("trace: failed to marshal event payload", "error", err)
		return
	}
	if IsOversizedEvent(body) {
		actionName, _ := event.Payload["name"].(string)
		s.oversizedByAction[actionName]++
		s.log.Warn("trace: dropping oversized event", "trace_id", event.TraceID, "action", actionName, "bytes", len(body))
		return
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (trace_id, type, run_id, time, payload) VALUES (?, ?, ?, ?, ?)`,
		event.TraceID, string(event.Type), event.RunID, event.Time.UnixMilli(), string(body),
	)
	if err != nil {
		s.log.Warn("trace: failed to persist event", "error", err)
	}
}

// OversizedEventCount returns how many events have been dropped for the
// given action name due to exceeding the 1 MB cap.
func (s *Store) OversizedEventCount(actionName string) int {
	return s.oversizedByAction[actionName]
}

// RecordStat appends one row to the stats table, giving internal/stats's
// Registry a durable backing (it otherwise only holds counters in
// memory for the life of the process). Store satisfies stats.Sink
// structurally; no import cycle is needed in either direction.
func (s *Store) RecordStat(counterName string, amount float64, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO stats (counter_name, ts, amount) VALUES (?, ?, ?)`,
		counterName, at.UnixMilli(), amount,
	)
	if err != nil {
		return fmt.Errorf("trace: record stat %s: %w", counterName, err)
	}
	return nil
}

// StatSum returns the sum of amount for counterName recorded at or after
// since, read back by the doctor CLI subcommand to report provider health
// across restarts (the in-memory Registry alone forgets on process exit).
func (s *Store) StatSum(counterName string, since time.Time) (float64, error) {
	var sum sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT SUM(amount) FROM stats WHERE counter_name = ? AND ts >= ?`,
		counterName, since.UnixMilli(),
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("trace: sum stat %s: %w", counterName, err)
	}
	return sum.Float64, nil
}

// SetPreference upserts a single free-form string value under key, the
// "prefs" CLI subcommand's backing store.
func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("trace: set preference %s: %w", key, err)
	}
	return nil
}

// GetPreference reads back a value set by SetPreference, reporting false
// if key has never been set.
func (s *Store) GetPreference(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("trace: get preference %s: %w", key, err)
	}
	return value, true, nil
}

func isRootID(id string) bool {
	return !strings.Contains(id, "_")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
