package mapping

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a controllable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestStore_Empty(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	assert.Empty(t, snap.Topics)
	assert.Zero(t, snap.LastUpdated)
	assert.Zero(t, snap.Observations)
	assert.True(t, snap.LastUpdatedTime().IsZero())
}

func TestStore_FirstSeenOrder(t *testing.T) {
	s := NewStore()

	assert.True(t, s.RecordEdge("orders", "g1"))
	assert.True(t, s.RecordEdge("orders", "g2"))
	assert.False(t, s.RecordEdge("orders", "g1"))

	snap := s.Snapshot()
	assert.Equal(t, map[string][]string{"orders": {"g1", "g2"}}, snap.Topics)
}

func TestStore_IdempotentAccumulation(t *testing.T) {
	s := NewStore()

	for i := 0; i < 50; i++ {
		s.RecordEdge("orders", "billing")
		s.RecordEdge(fmt.Sprintf("topic-%d", i%5), "billing")
		s.RecordEdge("orders", fmt.Sprintf("g-%d", i%3))
	}

	snap := s.Snapshot()
	count := 0
	for _, g := range snap.Topics["orders"] {
		if g == "billing" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"billing", "g-0", "g-1", "g-2"}, snap.Topics["orders"])

	topics, edges := s.Len()
	assert.Equal(t, 6, topics)
	assert.Equal(t, 4+5, edges)
}

func TestStore_NoDeletionPath(t *testing.T) {
	s := NewStore()
	s.RecordEdge("orders", "g1")

	// Later observations never retract an accepted edge
	for i := 0; i < 10; i++ {
		s.RecordObservation()
	}
	s.RecordEdge("payments", "g2")

	snap := s.Snapshot()
	assert.Equal(t, []string{"g1"}, snap.Topics["orders"])
	assert.Equal(t, []string{"g2"}, snap.Topics["payments"])
}

func TestStore_RecordObservation(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	ts := s.RecordObservation()
	first := s.Snapshot()
	assert.Equal(t, first.LastUpdated, ts)
	assert.Equal(t, clock.Now().UnixMilli(), first.LastUpdated)
	assert.Equal(t, uint64(1), first.Observations)

	clock.Advance(5 * time.Millisecond)
	s.RecordObservation()
	second := s.Snapshot()
	assert.Greater(t, second.LastUpdated, first.LastUpdated)
	assert.Equal(t, uint64(2), second.Observations)
	assert.Empty(t, second.Topics, "observations alone must not create topics")
}

func TestStore_LastUpdatedNeverDecreases(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	s.RecordObservation()
	before := s.Snapshot().LastUpdated

	// Wall clock steps backwards
	clock.Set(clock.Now().Add(-time.Hour))
	s.RecordObservation()

	after := s.Snapshot()
	assert.Equal(t, before, after.LastUpdated)
	assert.Equal(t, uint64(2), after.Observations)
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := NewStore()
	s.RecordEdge("orders", "g1")

	snap := s.Snapshot()
	snap.Topics["orders"][0] = "mutated"
	snap.Topics["new"] = []string{"x"}

	s.RecordEdge("orders", "g2")

	fresh := s.Snapshot()
	assert.Equal(t, []string{"g1", "g2"}, fresh.Topics["orders"])
	assert.NotContains(t, fresh.Topics, "new")
	assert.Equal(t, []string{"mutated"}, snap.Topics["orders"], "old snapshot must not see later appends")
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()

	const writes = 2000
	done := make(chan struct{})
	var wg sync.WaitGroup

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap := s.Snapshot()
				for topic, groups := range snap.Topics {
					seen := make(map[string]bool, len(groups))
					for _, g := range groups {
						if seen[g] {
							t.Errorf("duplicate group %q in topic %q", g, topic)
							return
						}
						seen[g] = true
					}
				}
			}
		}()
	}

	for i := 0; i < writes; i++ {
		s.RecordObservation()
		s.RecordEdge(fmt.Sprintf("t-%d", i%10), fmt.Sprintf("g-%d", i%37))
	}
	close(done)
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Topics, 10)
	assert.Equal(t, uint64(writes), snap.Observations)
}

func TestSnapshot_Tree(t *testing.T) {
	s := NewStore()
	s.RecordEdge("payments", "g3")
	s.RecordEdge("orders", "g2")
	s.RecordEdge("orders", "g1")

	root := s.Snapshot().Tree("Kafka")

	assert.Equal(t, "Kafka", root.Name)
	assert.Empty(t, root.Parent)
	require.Len(t, root.Children, 2)

	orders := root.Children[0]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, "Kafka", orders.Parent)
	require.Len(t, orders.Children, 2)
	assert.Equal(t, "g2", orders.Children[0].Name)
	assert.Equal(t, "g1", orders.Children[1].Name)
	assert.Equal(t, "orders", orders.Children[1].Parent)

	assert.Equal(t, "payments", root.Children[1].Name)
}

func TestSnapshot_TreeEmpty(t *testing.T) {
	root := NewStore().Snapshot().Tree("prod")
	assert.Equal(t, "prod", root.Name)
	assert.Empty(t, root.Children)
}

func TestSnapshot_LastUpdatedTime(t *testing.T) {
	snap := Snapshot{LastUpdated: 1_700_000_000_123}
	assert.Equal(t, int64(1_700_000_000_123), snap.LastUpdatedTime().UnixMilli())
}
