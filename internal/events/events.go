// Package events carries the registrar's state-change events. Exactly one
// event is emitted per committed mutation; failed operations emit nothing.
// Events are observability output only: no query path reads them back.
package events

import (
	"context"
	"sync"
	"time"

	id "github.com/Sayrarh/Fast/pkg/domain"
)

// Type discriminates registrar events.
type Type string

const (
	TypeRegistered           Type = "domain.registered"
	TypeReassigned           Type = "domain.reassigned"
	TypeOwnershipTransferred Type = "ownership.transferred"
)

// Event is one committed registrar state change.
type Event struct {
	ID        string     `json:"id"`
	Type      Type       `json:"type"`
	Domain    string     `json:"domain"`
	OldDomain string     `json:"old_domain,omitempty"`
	Caller    id.Address `json:"caller"`
	NewOwner  id.Address `json:"new_owner,omitempty"`
	Sequence  uint64     `json:"sequence"`
	Timestamp time.Time  `json:"timestamp"`
}

// Sink receives published events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemorySink retains events in order. The default sink when no broker is
// configured, and the assertion point for tests.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
