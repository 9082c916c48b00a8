package audit

import (
	"context"
	"sync"
	"time"
)

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}

// Publisher stamps events and hands them to a Store.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context) ([]Event, error) {
	return p.store.List(ctx)
}

// DefaultMemoryCapacity bounds an InMemoryStore built with a non-positive cap.
const DefaultMemoryCapacity = 1000

// InMemoryStore keeps the most recent events in a fixed-size ring. Once
// full, each Append overwrites the oldest event.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
	start  int
	size   int
}

func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &InMemoryStore{events: make([]Event, capacity)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size < len(s.events) {
		s.events[(s.start+s.size)%len(s.events)] = event
		s.size++
		return nil
	}
	s.events[s.start] = event
	s.start = (s.start + 1) % len(s.events)
	return nil
}

// List returns the retained events, oldest first.
func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, s.size)
	for i := 0; i < s.size; i++ {
		out = append(out, s.events[(s.start+i)%len(s.events)])
	}
	return out, nil
}
