//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Sayrarh/Fast/internal/registry/models"
	"github.com/Sayrarh/Fast/internal/registry/store"
	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/platform/sentinel"
	"github.com/Sayrarh/Fast/pkg/testutil/containers"
)

const (
	alice = id.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = id.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(s.ctx)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "registrations", "domains", "registry_log"))
}

func (s *PostgresStoreSuite) TestRegisterRoundTrip() {
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(alice, "alice", 0)))

	rec, err := s.store.Record(s.ctx, alice)
	s.Require().NoError(err)
	s.True(rec.Registered)
	s.Equal("alice", rec.Domain)
	s.Equal(int64(0), rec.LogIndex)
	s.True(rec.HasReceipt)

	active, err := s.store.IsActive(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(active)

	owner, err := s.store.OwnerOf(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(alice, owner)

	log, err := s.store.AllDomains(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"alice"}, log)
}

func (s *PostgresStoreSuite) TestDuplicateDomainConflicts() {
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(alice, "alice", 0)))

	err := s.store.Apply(s.ctx, models.RegisterMutation(bob, "alice", 1))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	// Failed apply must leave no partial rows behind.
	rec, err := s.store.Record(s.ctx, bob)
	s.Require().NoError(err)
	s.False(rec.Registered)
	log, err := s.store.AllDomains(s.ctx)
	s.Require().NoError(err)
	s.Len(log, 1)
}

func (s *PostgresStoreSuite) TestReassignOverwritesLogSlot() {
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(alice, "alice", 0)))
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(bob, "bob", 1)))

	s.Require().NoError(s.store.Apply(s.ctx, models.ReassignMutation(alice, "alice", "wonderland")))

	log, err := s.store.AllDomains(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"wonderland", "bob"}, log)

	active, err := s.store.IsActive(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(active)

	rec, err := s.store.Record(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal("wonderland", rec.Domain)
	s.Equal(uint64(0), rec.ReceiptID)
}

func (s *PostgresStoreSuite) TestTransferLiteralKeepsLinkage() {
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(alice, "alice", 0)))
	s.Require().NoError(s.store.Apply(s.ctx, models.TransferMutation(alice, bob, false)))

	oldRec, err := s.store.Record(s.ctx, alice)
	s.Require().NoError(err)
	s.False(oldRec.Registered)
	s.Equal("alice", oldRec.Domain)

	newRec, err := s.store.Record(s.ctx, bob)
	s.Require().NoError(err)
	s.True(newRec.Registered)
	s.Empty(newRec.Domain)
}

func (s *PostgresStoreSuite) TestTransferCorrectedMovesLinkage() {
	s.Require().NoError(s.store.Apply(s.ctx, models.RegisterMutation(alice, "alice", 0)))
	s.Require().NoError(s.store.Apply(s.ctx, models.TransferMutation(alice, bob, true)))

	newRec, err := s.store.Record(s.ctx, bob)
	s.Require().NoError(err)
	s.True(newRec.Registered)
	s.Equal("alice", newRec.Domain)
	s.False(newRec.HasReceipt)

	owner, err := s.store.OwnerOf(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(bob, owner)
}

func (s *PostgresStoreSuite) TestMintedFlagOneShot() {
	s.Require().NoError(s.store.Apply(s.ctx, models.MarkMintedMutation(alice)))

	err := s.store.Apply(s.ctx, models.MarkMintedMutation(alice))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	s.Require().NoError(s.store.Apply(s.ctx, models.UnmarkMintedMutation(alice)))
	rec, err := s.store.Record(s.ctx, alice)
	s.Require().NoError(err)
	s.False(rec.Minted)
}
