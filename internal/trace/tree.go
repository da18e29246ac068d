package trace

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/browserpilot/agent/pkg/models"
)

type metaRow struct {
	id         string
	name       string
	kind       string
	status     string
	startTime  time.Time
	duration   time.Duration
	createdAt  time.Time
}

// Tree assembles the full node tree rooted at id: direct children are
// meta rows whose id has prefix "id_" and exactly one further
// underscore-delimited segment (i.e. one level down, not a
// grandchild whose id also starts with a child's id as prefix), assembled
// recursively. Step children are returned sorted by start time.
func (s *Store) Tree(ctx context.Context, id string) (*models.Trace, error) {
	root, err := s.loadMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, root)
}

func (s *Store) loadMeta(ctx context.Context, id string) (metaRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, kind, status, start_time, duration_ms FROM meta WHERE id = ?`, id)
	var m metaRow
	var startMs, durMs int64
	if err := row.Scan(&m.id, &m.name, &m.kind, &m.status, &startMs, &durMs); err != nil {
		if err == sql.ErrNoRows {
			return metaRow{}, fmt.Errorf("trace: no such trace id %q", id)
		}
		return metaRow{}, err
	}
	m.startTime = time.UnixMilli(startMs)
	m.duration = time.Duration(durMs) * time.Millisecond
	return m, nil
}

func (s *Store) assemble(ctx context.Context, m metaRow) (*models.Trace, error) {
	node := &models.Trace{
		ID:        m.id,
		Name:      m.name,
		Kind:      models.TraceKind(m.kind),
		Status:    models.TraceStatus(m.status),
		StartTime: m.startTime,
		Duration:  m.duration,
	}

	children, err := s.directChildren(ctx, m.id)
	if err != nil {
		return nil, err
	}
	sort.Slice(children, func(i, j int) bool { return children[i].startTime.Before(children[j].startTime) })

	for _, c := range children {
		childNode, err := s.assemble(ctx, c)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}

// directChildren returns every meta row whose id is exactly one
// underscore-segment deeper than parentID.
func (s *Store) directChildren(ctx context.Context, parentID string) ([]metaRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, status, start_time, duration_ms FROM meta WHERE id LIKE ? ESCAPE '\'`,
		escapeLike(parentID)+`\_%`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metaRow
	prefix := parentID + "_"
	for rows.Next() {
		var m metaRow
		var startMs, durMs int64
		if err := rows.Scan(&m.id, &m.name, &m.kind, &m.status, &startMs, &durMs); err != nil {
			return nil, err
		}
		rest := strings.TrimPrefix(m.id, prefix)
		if rest == m.id {
			continue
		}
		if strings.Contains(rest, "_") {
			// Deeper descendant, not a direct child; skip here, it will be
			// picked up by the direct child's own directChildren call.
			continue
		}
		m.startTime = time.UnixMilli(startMs)
		m.duration = time.Duration(durMs) * time.Millisecond
		out = append(out, m)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
