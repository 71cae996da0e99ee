package receipt

import (
	"context"
	"sync"

	id "github.com/Sayrarh/Fast/pkg/domain"
)

// InMemory issues receipt ids from a process-local counter and remembers
// which ids each address holds.
type InMemory struct {
	mu     sync.Mutex
	next   uint64
	awards map[id.Address][]uint64
}

func NewInMemory() *InMemory {
	return &InMemory{awards: make(map[id.Address][]uint64)}
}

func (i *InMemory) AwardUser(ctx context.Context, addr id.Address) (uint64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	tokenID := i.next
	i.next++
	i.awards[addr] = append(i.awards[addr], tokenID)
	return tokenID, nil
}

// Awards returns the receipt ids held by an address, for tests and tooling.
func (i *InMemory) Awards(addr id.Address) []uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]uint64, len(i.awards[addr]))
	copy(out, i.awards[addr])
	return out
}
