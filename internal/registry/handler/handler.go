package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "github.com/Sayrarh/Fast/pkg/domain"
	dErrors "github.com/Sayrarh/Fast/pkg/domain-errors"
	"github.com/Sayrarh/Fast/pkg/platform/httputil"
	"github.com/Sayrarh/Fast/pkg/requestcontext"
)

// Service defines the registrar operations the HTTP layer depends on.
type Service interface {
	Register(ctx context.Context, domain string, caller id.Address) error
	Reassign(ctx context.Context, newDomain string, owner, caller id.Address) error
	TransferOwnership(ctx context.Context, newOwner, owner, caller id.Address) error
	MintTestTokens(ctx context.Context, caller id.Address) (string, error)
	Domain(ctx context.Context, identity id.Address) (string, error)
	DomainOwner(ctx context.Context, domain string) (id.Address, error)
	IsDomainRegistered(ctx context.Context, domain string) (bool, error)
	AllDomains(ctx context.Context) ([]string, error)
}

// Handler wires registrar endpoints to the registrar service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registrar handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registrar endpoints on the router. Mutating routes go
// behind the caller-authentication middleware; resolution queries are open.
func (h *Handler) Register(r chi.Router, requireCaller func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireCaller)
		r.Post("/registry/domains", h.HandleRegister)
		r.Post("/registry/domains/reassign", h.HandleReassign)
		r.Post("/registry/owners/transfer", h.HandleTransfer)
		r.Post("/faucet/mint", h.HandleMint)
	})
	r.Get("/registry/domains", h.HandleAllDomains)
	r.Get("/registry/domains/{domain}", h.HandleIsRegistered)
	r.Get("/registry/owners/{address}/domain", h.HandleDomainOf)
}

// HandleRegister handles POST /registry/domains requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Register(ctx, req.Domain, caller); err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"caller", caller.String(),
			"domain", req.Domain,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain registered",
		"request_id", requestID,
		"caller", caller.String(),
		"domain", req.Domain,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, StatusResponse{Status: "registered"})
}

// HandleReassign handles POST /registry/domains/reassign requests.
func (h *Handler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReassignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Reassign(ctx, req.NewDomain, req.ParsedOwner(), caller); err != nil {
		h.logger.ErrorContext(ctx, "reassignment failed",
			"request_id", requestID,
			"caller", caller.String(),
			"new_domain", req.NewDomain,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "domain reassigned",
		"request_id", requestID,
		"caller", caller.String(),
		"new_domain", req.NewDomain,
	)
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: "reassigned"})
}

// HandleTransfer handles POST /registry/owners/transfer requests.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.TransferOwnership(ctx, req.ParsedNewOwner(), req.ParsedOwner(), caller); err != nil {
		h.logger.ErrorContext(ctx, "ownership transfer failed",
			"request_id", requestID,
			"caller", caller.String(),
			"new_owner", req.NewOwner,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "ownership transferred",
		"request_id", requestID,
		"caller", caller.String(),
		"new_owner", req.NewOwner,
	)
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: "transferred"})
}

// HandleMint handles POST /faucet/mint requests.
func (h *Handler) HandleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	status, err := h.service.MintTestTokens(ctx, caller)
	if err != nil {
		h.logger.ErrorContext(ctx, "faucet mint failed",
			"request_id", requestID,
			"caller", caller.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "faucet mint granted",
		"request_id", requestID,
		"caller", caller.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Status: status})
}

// HandleDomainOf handles GET /registry/owners/{address}/domain requests.
func (h *Handler) HandleDomainOf(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	addr, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "address is not a valid address"))
		return
	}

	domain, err := h.service.Domain(ctx, addr)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DomainResponse{Owner: addr.String(), Domain: domain})
}

// HandleIsRegistered handles GET /registry/domains/{domain} requests.
func (h *Handler) HandleIsRegistered(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := chi.URLParam(r, "domain")

	registered, err := h.service.IsDomainRegistered(ctx, domain)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := RegisteredResponse{Domain: domain, Registered: registered}
	if registered {
		owner, err := h.service.DomainOwner(ctx, domain)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		resp.Owner = owner.String()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleAllDomains handles GET /registry/domains requests.
func (h *Handler) HandleAllDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.service.AllDomains(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if domains == nil {
		domains = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, DomainsResponse{Domains: domains, Count: len(domains)})
}

// caller extracts the authenticated caller, rejecting the request when the
// authentication middleware did not run.
func (h *Handler) caller(w http.ResponseWriter, ctx context.Context) (id.Address, bool) {
	caller := requestcontext.Caller(ctx)
	if caller == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "authentication required"))
		return "", false
	}
	return caller, true
}
