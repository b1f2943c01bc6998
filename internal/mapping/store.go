package mapping

import (
	"sync"
	"time"
)

// Writer is the mutating half of the store. Only the mapper holds one.
type Writer interface {
	RecordObservation() int64
	RecordEdge(topic, group string) bool
}

// Reader is the read-only half of the store handed to serving components
type Reader interface {
	Snapshot() Snapshot
}

// Snapshot is an independent copy of the topic to group mapping
type Snapshot struct {
	// Topics maps a topic to its consumer groups in first-seen order
	Topics map[string][]string `json:"topics"`
	// LastUpdated is the epoch milliseconds of the latest observed record
	LastUpdated int64 `json:"last_updated"`
	// Observations counts every record the mapper has observed
	Observations uint64 `json:"observations"`
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for LastUpdated
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store accumulates topic to consumer group edges. Edges are never removed.
type Store struct {
	mu           sync.RWMutex
	topics       map[string][]string
	lastUpdated  int64
	observations uint64
	now          func() time.Time
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		topics: make(map[string][]string),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordObservation advances LastUpdated to the current time and returns
// it. It is called once for every record, whether or not the record produced
// an edge.
func (s *Store) RecordObservation() int64 {
	now := s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now > s.lastUpdated {
		s.lastUpdated = now
	}
	s.observations++
	return s.lastUpdated
}

// RecordEdge adds group to topic's sequence unless already present.
// It returns true if the edge is new.
func (s *Store) RecordEdge(topic, group string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, exists := s.topics[topic]
	if !exists {
		s.topics[topic] = []string{group}
		return true
	}
	for _, g := range groups {
		if g == group {
			return false
		}
	}
	s.topics[topic] = append(groups, group)
	return true
}

// Snapshot returns a deep copy of the current mapping
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make(map[string][]string, len(s.topics))
	for topic, groups := range s.topics {
		topics[topic] = append([]string(nil), groups...)
	}

	return Snapshot{
		Topics:       topics,
		LastUpdated:  s.lastUpdated,
		Observations: s.observations,
	}
}

// Len returns the number of topics and the total number of edges
func (s *Store) Len() (topics, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, groups := range s.topics {
		edges += len(groups)
	}
	return len(s.topics), edges
}
