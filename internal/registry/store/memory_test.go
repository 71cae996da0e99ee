package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Sayrarh/Fast/internal/registry/models"
	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/platform/sentinel"
)

const (
	alice = id.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = id.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *MemoryStoreSuite) register(owner id.Address, domain string, receiptID uint64) {
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(owner, domain, receiptID)))
}

func (s *MemoryStoreSuite) TestRegister() {
	s.Run("links all views", func() {
		s.register(alice, "alice", 0)

		rec, err := s.store.Record(s.ctx, alice)
		s.Require().NoError(err)
		s.True(rec.Registered)
		s.Equal("alice", rec.Domain)
		s.Equal(int64(0), rec.LogIndex)
		s.True(rec.HasReceipt)
		s.Equal(uint64(0), rec.ReceiptID)

		active, err := s.store.IsActive(s.ctx, "alice")
		s.Require().NoError(err)
		s.True(active)

		owner, err := s.store.OwnerOf(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal(alice, owner)

		log, err := s.store.AllDomains(s.ctx)
		s.Require().NoError(err)
		s.Equal([]string{"alice"}, log)
	})

	s.Run("rejects double-claimed domain", func() {
		s.register(alice, "alice", 0)
		err := s.store.Apply(s.ctx, models.RegisterMutation(bob, "alice", 1))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects second registration by same owner", func() {
		s.register(alice, "alice", 0)
		err := s.store.Apply(s.ctx, models.RegisterMutation(alice, "other", 1))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *MemoryStoreSuite) TestReassign() {
	s.Run("swaps the log slot in place", func() {
		s.register(alice, "alice", 0)
		s.register(bob, "bob", 1)

		s.Require().NoError(s.store.Apply(s.ctx, models.ReassignMutation(alice, "alice", "wonderland")))

		log, err := s.store.AllDomains(s.ctx)
		s.Require().NoError(err)
		s.Equal([]string{"wonderland", "bob"}, log)

		active, _ := s.store.IsActive(s.ctx, "alice")
		s.False(active)
		active, _ = s.store.IsActive(s.ctx, "wonderland")
		s.True(active)

		owner, _ := s.store.OwnerOf(s.ctx, "alice")
		s.True(owner.IsZero())

		rec, _ := s.store.Record(s.ctx, alice)
		s.Equal("wonderland", rec.Domain)
		s.Equal(int64(0), rec.LogIndex)
		s.Equal(uint64(0), rec.ReceiptID) // receipt untouched
	})

	s.Run("rejects mismatched old domain", func() {
		s.register(alice, "alice", 0)
		err := s.store.Apply(s.ctx, models.ReassignMutation(alice, "wrong", "wonderland"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects unregistered owner", func() {
		err := s.store.Apply(s.ctx, models.ReassignMutation(bob, "bob", "b"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *MemoryStoreSuite) TestTransferLiteral() {
	s.register(alice, "alice", 0)
	s.Require().NoError(s.store.Apply(s.ctx, models.TransferMutation(alice, bob, false)))

	// Flags flip but the linkage stays on the old owner: the documented
	// legacy inconsistency.
	oldRec, _ := s.store.Record(s.ctx, alice)
	s.False(oldRec.Registered)
	s.Equal("alice", oldRec.Domain)

	newRec, _ := s.store.Record(s.ctx, bob)
	s.True(newRec.Registered)
	s.Empty(newRec.Domain)

	owner, _ := s.store.OwnerOf(s.ctx, "alice")
	s.Equal(alice, owner)
}

func (s *MemoryStoreSuite) TestTransferCorrected() {
	s.register(alice, "alice", 0)
	s.Require().NoError(s.store.Apply(s.ctx, models.TransferMutation(alice, bob, true)))

	oldRec, _ := s.store.Record(s.ctx, alice)
	s.False(oldRec.Registered)
	s.Empty(oldRec.Domain)
	s.True(oldRec.HasReceipt) // receipt never moves

	newRec, _ := s.store.Record(s.ctx, bob)
	s.True(newRec.Registered)
	s.Equal("alice", newRec.Domain)
	s.Equal(int64(0), newRec.LogIndex)
	s.False(newRec.HasReceipt)

	owner, _ := s.store.OwnerOf(s.ctx, "alice")
	s.Equal(bob, owner)
}

func (s *MemoryStoreSuite) TestTransferCorrectedRejectsRegisteredTarget() {
	s.register(alice, "alice", 0)
	s.register(bob, "bob", 1)
	err := s.store.Apply(s.ctx, models.TransferMutation(alice, bob, true))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestFaucetFlags() {
	s.Require().NoError(s.store.Apply(s.ctx, models.MarkMintedMutation(alice)))

	rec, _ := s.store.Record(s.ctx, alice)
	s.True(rec.Minted)
	s.False(rec.Registered) // minted and registered are independent

	err := s.store.Apply(s.ctx, models.MarkMintedMutation(alice))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	s.Require().NoError(s.store.Apply(s.ctx, models.UnmarkMintedMutation(alice)))
	rec, _ = s.store.Record(s.ctx, alice)
	s.False(rec.Minted)
}

func (s *MemoryStoreSuite) TestUnknownIdentityGetsEmptyRecord() {
	rec, err := s.store.Record(s.ctx, bob)
	s.Require().NoError(err)
	s.Equal(models.EmptyRecord(bob), rec)
}
