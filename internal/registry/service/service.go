// Package service implements the registrar state machine. Every mutating
// operation is one atomic unit: preconditions are checked in order against
// the store, external collaborator calls happen next, and local state
// commits only after they succeed. A single operation lock serializes
// mutations, which both matches the original execution model and acts as the
// reentrancy guard during collaborator calls.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sayrarh/Fast/internal/events"
	"github.com/Sayrarh/Fast/internal/ledger"
	"github.com/Sayrarh/Fast/internal/receipt"
	"github.com/Sayrarh/Fast/internal/registry/metrics"
	"github.com/Sayrarh/Fast/internal/registry/store"
	dErrors "github.com/Sayrarh/Fast/pkg/domain-errors"
	id "github.com/Sayrarh/Fast/pkg/domain"
)

// ResolutionCache is an optional read cache in front of resolution queries.
// Implementations must treat errors as misses; the store is authoritative.
type ResolutionCache interface {
	GetDomainOf(ctx context.Context, owner id.Address) (string, bool)
	SetDomainOf(ctx context.Context, owner id.Address, domain string)
	GetActive(ctx context.Context, domain string) (bool, bool)
	SetActive(ctx context.Context, domain string, active bool)
	InvalidateOwner(ctx context.Context, owners ...id.Address)
	InvalidateDomain(ctx context.Context, domains ...string)
}

// Registrar orchestrates the name-registration state machine.
type Registrar struct {
	store    store.Store
	ledger   ledger.Ledger
	receipts receipt.Issuer
	policy   Policy

	publisher events.Publisher
	cache     ResolutionCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer

	correctedTransfer bool

	// opMu serializes mutating operations end to end, collaborator calls
	// included. Queries take no lock; stores are internally consistent.
	opMu sync.Mutex
}

// Option customizes a Registrar.
type Option func(*Registrar)

func WithPublisher(p events.Publisher) Option {
	return func(r *Registrar) { r.publisher = p }
}

func WithCache(c ResolutionCache) Option {
	return func(r *Registrar) { r.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registrar) { r.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registrar) { r.logger = l }
}

// WithCorrectedTransfer selects corrected ownership-transfer linkage instead
// of the literal legacy behavior.
func WithCorrectedTransfer(corrected bool) Option {
	return func(r *Registrar) { r.correctedTransfer = corrected }
}

// New constructs the registrar around its store and collaborators.
func New(st store.Store, l ledger.Ledger, issuer receipt.Issuer, policy Policy, opts ...Option) *Registrar {
	r := &Registrar{
		store:    st,
		ledger:   l,
		receipts: issuer,
		policy:   policy,
		logger:   slog.Default(),
		tracer:   otel.Tracer("registrar"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.publisher == nil {
		r.publisher = events.NewPublisher(events.NewMemorySink())
	}
	return r
}

// Domain returns the identity's current domain, empty when it holds none.
func (r *Registrar) Domain(ctx context.Context, identity id.Address) (string, error) {
	ctx, span := r.tracer.Start(ctx, "registrar.Domain")
	defer span.End()

	if r.cache != nil {
		if d, ok := r.cache.GetDomainOf(ctx, identity); ok {
			return d, nil
		}
	}
	rec, err := r.store.Record(ctx, identity)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load record")
	}
	if r.cache != nil {
		r.cache.SetDomainOf(ctx, identity, rec.Domain)
	}
	return rec.Domain, nil
}

// IsDomainRegistered reports whether the domain is currently active.
func (r *Registrar) IsDomainRegistered(ctx context.Context, domain string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "registrar.IsDomainRegistered")
	defer span.End()

	if r.cache != nil {
		if active, ok := r.cache.GetActive(ctx, domain); ok {
			return active, nil
		}
	}
	active, err := r.store.IsActive(ctx, domain)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "load domain")
	}
	if r.cache != nil {
		r.cache.SetActive(ctx, domain, active)
	}
	return active, nil
}

// DomainOwner returns the owner of an active domain, or the zero address
// when the domain is free or was reassigned away.
func (r *Registrar) DomainOwner(ctx context.Context, domain string) (id.Address, error) {
	ctx, span := r.tracer.Start(ctx, "registrar.DomainOwner")
	defer span.End()

	owner, err := r.store.OwnerOf(ctx, domain)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load domain owner")
	}
	return owner, nil
}

// AllDomains returns the full ordered log, stale entries included.
func (r *Registrar) AllDomains(ctx context.Context) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "registrar.AllDomains")
	defer span.End()

	domains, err := r.store.AllDomains(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load registry log")
	}
	return domains, nil
}

// observe records one finished operation; code is "ok" or the error code.
func (r *Registrar) observe(operation string, start time.Time, err error) {
	code := "ok"
	if err != nil {
		code = string(dErrors.CodeOf(err))
	}
	r.metrics.ObserveOperation(operation, code, time.Since(start).Seconds())
}

// emit publishes one event for a committed mutation. State is already
// durable at this point, so emission failures are logged, not returned.
func (r *Registrar) emit(ctx context.Context, event events.Event) {
	if err := r.publisher.Emit(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "event emission failed",
			"type", string(event.Type),
			"domain", event.Domain,
			"error", err.Error(),
		)
	}
}

// invalidate drops cached resolutions after a committed mutation.
func (r *Registrar) invalidate(ctx context.Context, owners []id.Address, domains []string) {
	if r.cache == nil {
		return
	}
	if len(owners) > 0 {
		r.cache.InvalidateOwner(ctx, owners...)
	}
	if len(domains) > 0 {
		r.cache.InvalidateDomain(ctx, domains...)
	}
}
