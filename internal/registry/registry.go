package registry

import (
	"log/slog"

	"github.com/Sayrarh/Fast/internal/ledger"
	"github.com/Sayrarh/Fast/internal/receipt"
	"github.com/Sayrarh/Fast/internal/registry/handler"
	"github.com/Sayrarh/Fast/internal/registry/service"
	"github.com/Sayrarh/Fast/internal/registry/store"
)

// Registrar exposes the name-registration state machine.
type Registrar = service.Registrar

// Handler wires HTTP endpoints to the registrar service.
type Handler = handler.Handler

// Policy carries the registrar account and its economic parameters.
type Policy = service.Policy

// NewRegistrar constructs the registrar service with required dependencies.
func NewRegistrar(st store.Store, l ledger.Ledger, issuer receipt.Issuer, policy Policy, opts ...service.Option) *Registrar {
	return service.New(st, l, issuer, policy, opts...)
}

// NewHandler constructs an HTTP handler for registrar routes.
func NewHandler(s *Registrar, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
