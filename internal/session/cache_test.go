// internal/session/cache_test.go
//
// Unit-tests for the session cache and evictor.
//
// Run: go test ./internal/session -v

package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/backoffice/internal/record"
	"github.com/yanizio/backoffice/internal/workflow"
)

// stubService satisfies entity.Service with empty results.  The cache
// tests only exercise session lifecycle, never the adapter.
type stubService struct{}

func (stubService) GetAll(context.Context, record.Kind) ([]record.Record, error) {
	return nil, nil
}
func (stubService) Create(context.Context, record.Kind, map[string]string) (record.Record, error) {
	return nil, nil
}
func (stubService) Update(context.Context, record.Kind, int, map[string]string) (record.Record, error) {
	return nil, nil
}
func (stubService) Delete(context.Context, record.Kind, int) error       { return nil }
func (stubService) Transition(context.Context, int, workflow.Action) error { return nil }

func newTestCache(idleTTL time.Duration, maxEntries int) *Cache {
	c := NewCache(stubService{}, nil, 10, idleTTL, maxEntries, zap.NewNop().Sugar())
	c.Stop() // tests drive evictPass directly
	return c
}

func TestGetBuildsOnce(t *testing.T) {
	c := newTestCache(time.Hour, 0)

	a, err := c.Get("op-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, err := c.Get("op-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a != b {
		t.Fatalf("same id must return the same session")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestSessionHasWorkspacePerKind(t *testing.T) {
	c := newTestCache(time.Hour, 0)

	sess, err := c.Get("op-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, kind := range []record.Kind{record.KindUser, record.KindPost} {
		ws := sess.Workspace(kind)
		if ws == nil {
			t.Fatalf("missing workspace for %s", kind)
		}
		if ws.Manager == nil || ws.View == nil || ws.Form == nil {
			t.Fatalf("workspace for %s is incomplete: %#v", kind, ws)
		}
	}
	if sess.Workspace(record.Kind("widget")) != nil {
		t.Fatalf("unknown kind must have no workspace")
	}
}

func TestIdleEviction(t *testing.T) {
	c := newTestCache(10*time.Minute, 0)

	_, _ = c.Get("op-1")
	stale, _ := c.Get("op-2")
	stale.lastSeen = time.Now().Add(-20 * time.Minute).UnixNano()

	c.evictPass(time.Now())

	if _, ok := c.m.Load("op-2"); ok {
		t.Fatalf("idle session op-2 must be evicted")
	}
	if _, ok := c.m.Load("op-1"); !ok {
		t.Fatalf("fresh session op-1 must survive")
	}
}

func TestLRUEviction(t *testing.T) {
	c := newTestCache(time.Hour, 2)

	s1, _ := c.Get("op-1")
	_, _ = c.Get("op-2")
	_, _ = c.Get("op-3")

	// op-1 is oldest; make it even older so the sort order is stable
	// regardless of clock resolution.
	s1.lastSeen = time.Now().Add(-time.Minute).UnixNano()

	c.evictPass(time.Now())

	if c.Len() != 2 {
		t.Fatalf("Len = %d after LRU pass, want 2", c.Len())
	}
	if _, ok := c.m.Load("op-1"); ok {
		t.Fatalf("least-recently-used session must be evicted")
	}
}

func TestStopReleasesEvictor(t *testing.T) {
	c := NewCache(stubService{}, nil, 10, time.Hour, 0, zap.NewNop().Sugar())

	c.Stop()
	c.Stop() // second call must be a no-op, not a double close

	// The evict loop selects on done; a closed channel means it returns
	// instead of parking on a stopped ticker forever.
	select {
	case <-c.done:
	default:
		t.Fatalf("Stop must close done so the evict loop can exit")
	}
}

func TestEvictedSessionRebuildsEmpty(t *testing.T) {
	c := newTestCache(time.Minute, 0)

	first, _ := c.Get("op-1")
	c.evictPass(time.Now().Add(2 * time.Minute))

	second, err := c.Get("op-1")
	if err != nil {
		t.Fatalf("Get after eviction: %v", err)
	}
	if first == second {
		t.Fatalf("evicted session must be rebuilt, not resurrected")
	}
}
