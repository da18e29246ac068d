package trace

import (
	"context"
	"fmt"
)

// maxRootTraces is the retention bound on root-trace meta rows.
const maxRootTraces = 100

// sweepRetention keeps only the newest maxRootTraces root traces,
// cascade-deleting older roots and every descendant meta/event row.
func (s *Store) sweepRetention(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM meta WHERE is_root = 1 ORDER BY created_at DESC LIMIT -1 OFFSET ?`,
		maxRootTraces,
	)
	if err != nil {
		return fmt.Errorf("trace: list stale roots: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		stale = append(stale, id)
	}
	rows.Close()

	for _, id := range stale {
		if err := s.DeleteTrace(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTrace removes id's meta/event rows and every descendant's, by
// id-prefix, matching the spec's "single-trace delete cascades to all
// descendants" requirement.
func (s *Store) DeleteTrace(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	prefix := escapeLike(id) + `\_%`
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE trace_id = ? OR trace_id LIKE ? ESCAPE '\'`, id, prefix); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM meta WHERE id = ? OR id LIKE ? ESCAPE '\'`, id, prefix); err != nil {
		return err
	}
	return tx.Commit()
}

// RootCount returns the current number of retained root-trace meta rows.
func (s *Store) RootCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meta WHERE is_root = 1`).Scan(&n)
	return n, err
}
