package trace

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/browserpilot/agent/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PersistAndTree(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	root := &models.Trace{
		ID:        "root-1",
		Name:      "router",
		Kind:      models.TraceKindAction,
		Status:    models.TraceSuccess,
		StartTime: time.Now(),
	}
	child := &models.Trace{
		ID:        "root-1_0",
		Name:      "step1",
		Kind:      models.TraceKindStep,
		Status:    models.TraceSuccess,
		StartTime: time.Now().Add(time.Millisecond),
	}

	if err := s.Persist(ctx, root); err != nil {
		t.Fatalf("persist root: %v", err)
	}
	if err := s.Persist(ctx, child); err != nil {
		t.Fatalf("persist child: %v", err)
	}

	tree, err := s.Tree(ctx, "root-1")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(tree.Children))
	}
	if tree.Children[0].ID != "root-1_0" {
		t.Errorf("child id = %q", tree.Children[0].ID)
	}
}

func TestStore_RecordStatAndStatSum(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	if err := s.RecordStat("model:claude\x00success", 1, now); err != nil {
		t.Fatalf("record stat: %v", err)
	}
	if err := s.RecordStat("model:claude\x00success", 1, now.Add(time.Second)); err != nil {
		t.Fatalf("record stat: %v", err)
	}
	if err := s.RecordStat("model:claude\x00error", 1, now.Add(-time.Hour)); err != nil {
		t.Fatalf("record stat: %v", err)
	}

	sum, err := s.StatSum("model:claude\x00success", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("stat sum: %v", err)
	}
	if sum != 2 {
		t.Errorf("sum = %v, want 2", sum)
	}

	sum, err = s.StatSum("model:claude\x00error", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("stat sum: %v", err)
	}
	if sum != 0 {
		t.Errorf("expected the stale error outside the window to be excluded, got %v", sum)
	}
}

func TestStore_RetentionKeepsNewest100Roots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < maxRootTraces+10; i++ {
		id := randomRootID(i)
		err := s.Persist(ctx, &models.Trace{
			ID: id, Name: "a", Kind: models.TraceKindAction,
			Status: models.TraceSuccess, StartTime: time.Now(),
		})
		if err != nil {
			t.Fatalf("persist %d: %v", i, err)
		}
	}

	count, err := s.RootCount(ctx)
	if err != nil {
		t.Fatalf("root count: %v", err)
	}
	if count > maxRootTraces {
		t.Errorf("root count = %d, want <= %d", count, maxRootTraces)
	}
}

func randomRootID(i int) string {
	// Root ids must contain no underscore (see isRootID).
	return "root" + strconv.Itoa(i)
}
