// Package store holds the registrar's state stores. Both implementations
// commit each Mutation atomically: the in-memory store under one mutex, the
// Postgres store inside one transaction. Invariant checks live in the apply
// path so a partial-update bug cannot drift the linked views apart.
package store

import (
	"context"

	"github.com/Sayrarh/Fast/internal/registry/models"
	id "github.com/Sayrarh/Fast/pkg/domain"
)

// Store is the persistence surface the registrar service depends on.
type Store interface {
	// Record returns the full per-identity state. Identities the registrar
	// never saw get EmptyRecord, not an error.
	Record(ctx context.Context, owner id.Address) (models.Record, error)
	// IsActive reports whether a domain is currently claimed.
	IsActive(ctx context.Context, domain string) (bool, error)
	// OwnerOf returns the owner of an active domain, or the zero address.
	OwnerOf(ctx context.Context, domain string) (id.Address, error)
	// AllDomains returns the full ordered log, stale entries included.
	AllDomains(ctx context.Context) ([]string, error)
	// Apply commits one mutation atomically, validating store-level
	// invariants first. A failed Apply leaves no partial state.
	Apply(ctx context.Context, m models.Mutation) error
}
