package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sayrarh/Fast/internal/registry/models"
	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/platform/sentinel"
)

// InMemory keeps the registrar state in process. The three linked views plus
// the ordered log live behind one mutex so Apply is atomic by construction.
type InMemory struct {
	mu         sync.RWMutex
	ownerOf    map[string]id.Address
	domainOf   map[id.Address]string
	active     map[string]bool
	registered map[id.Address]bool
	logIndex   map[id.Address]int64
	receiptOf  map[id.Address]uint64
	minted     map[id.Address]bool
	log        []string
}

func NewInMemory() *InMemory {
	return &InMemory{
		ownerOf:    make(map[string]id.Address),
		domainOf:   make(map[id.Address]string),
		active:     make(map[string]bool),
		registered: make(map[id.Address]bool),
		logIndex:   make(map[id.Address]int64),
		receiptOf:  make(map[id.Address]uint64),
		minted:     make(map[id.Address]bool),
	}
}

func (s *InMemory) Record(ctx context.Context, owner id.Address) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := models.EmptyRecord(owner)
	rec.Registered = s.registered[owner]
	rec.Minted = s.minted[owner]
	if d, ok := s.domainOf[owner]; ok {
		rec.Domain = d
	}
	if idx, ok := s.logIndex[owner]; ok {
		rec.LogIndex = idx
	}
	if rid, ok := s.receiptOf[owner]; ok {
		rec.ReceiptID = rid
		rec.HasReceipt = true
	}
	return rec, nil
}

func (s *InMemory) IsActive(ctx context.Context, domain string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[domain], nil
}

func (s *InMemory) OwnerOf(ctx context.Context, domain string) (id.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if owner, ok := s.ownerOf[domain]; ok {
		return owner, nil
	}
	return id.ZeroAddress, nil
}

func (s *InMemory) AllDomains(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out, nil
}

// Apply validates and commits one mutation under the write lock. Validation
// failures return sentinel.ErrConflict wrapped with the violated fact; the
// service treats them as internal errors because it pre-validates every
// mutation before staging it.
func (s *InMemory) Apply(ctx context.Context, m models.Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch m.Kind {
	case models.MutationRegister:
		return s.applyRegister(m)
	case models.MutationReassign:
		return s.applyReassign(m)
	case models.MutationTransfer:
		return s.applyTransfer(m)
	case models.MutationTransferCorrected:
		return s.applyTransferCorrected(m)
	case models.MutationMarkMinted:
		if s.minted[m.Owner] {
			return fmt.Errorf("address %s already minted: %w", m.Owner, sentinel.ErrConflict)
		}
		s.minted[m.Owner] = true
		return nil
	case models.MutationUnmarkMinted:
		delete(s.minted, m.Owner)
		return nil
	default:
		return fmt.Errorf("unknown mutation kind %q: %w", m.Kind, sentinel.ErrConflict)
	}
}

func (s *InMemory) applyRegister(m models.Mutation) error {
	if s.active[m.Domain] {
		return fmt.Errorf("domain %q already active: %w", m.Domain, sentinel.ErrConflict)
	}
	if s.registered[m.Owner] {
		return fmt.Errorf("owner %s already registered: %w", m.Owner, sentinel.ErrConflict)
	}
	s.ownerOf[m.Domain] = m.Owner
	s.domainOf[m.Owner] = m.Domain
	s.active[m.Domain] = true
	s.registered[m.Owner] = true
	s.receiptOf[m.Owner] = m.ReceiptID
	s.logIndex[m.Owner] = int64(len(s.log))
	s.log = append(s.log, m.Domain)
	return nil
}

func (s *InMemory) applyReassign(m models.Mutation) error {
	if !s.registered[m.Owner] {
		return fmt.Errorf("owner %s not registered: %w", m.Owner, sentinel.ErrConflict)
	}
	if s.domainOf[m.Owner] != m.OldDomain {
		return fmt.Errorf("owner %s does not hold %q: %w", m.Owner, m.OldDomain, sentinel.ErrConflict)
	}
	if s.active[m.Domain] {
		return fmt.Errorf("domain %q already active: %w", m.Domain, sentinel.ErrConflict)
	}
	idx, ok := s.logIndex[m.Owner]
	if !ok || idx < 0 || idx >= int64(len(s.log)) {
		return fmt.Errorf("owner %s has no log slot: %w", m.Owner, sentinel.ErrConflict)
	}

	// Old domain loses its owner and goes inactive; the log slot is
	// overwritten in place so the log length never changes here.
	delete(s.ownerOf, m.OldDomain)
	s.active[m.OldDomain] = false
	s.log[idx] = m.Domain
	s.ownerOf[m.Domain] = m.Owner
	s.domainOf[m.Owner] = m.Domain
	s.active[m.Domain] = true
	return nil
}

// applyTransfer reproduces the legacy behavior: only the Registered flags
// move. The domain string, its ownership mapping, the log slot and the
// receipt all stay with the old owner.
func (s *InMemory) applyTransfer(m models.Mutation) error {
	if !s.registered[m.Owner] {
		return fmt.Errorf("owner %s not registered: %w", m.Owner, sentinel.ErrConflict)
	}
	s.registered[m.Owner] = false
	s.registered[m.NewOwner] = true
	return nil
}

func (s *InMemory) applyTransferCorrected(m models.Mutation) error {
	if !s.registered[m.Owner] {
		return fmt.Errorf("owner %s not registered: %w", m.Owner, sentinel.ErrConflict)
	}
	if s.registered[m.NewOwner] {
		return fmt.Errorf("new owner %s already registered: %w", m.NewOwner, sentinel.ErrConflict)
	}
	domain := s.domainOf[m.Owner]

	s.registered[m.Owner] = false
	s.registered[m.NewOwner] = true
	if domain != "" {
		delete(s.domainOf, m.Owner)
		s.domainOf[m.NewOwner] = domain
		s.ownerOf[domain] = m.NewOwner
	}
	if idx, ok := s.logIndex[m.Owner]; ok {
		delete(s.logIndex, m.Owner)
		s.logIndex[m.NewOwner] = idx
	}
	// The receipt stays with the original registrant: receipt linkage is set
	// once at first registration and never reassigned.
	return nil
}
