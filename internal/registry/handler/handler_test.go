package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	"github.com/Sayrarh/Fast/internal/ledger"
	"github.com/Sayrarh/Fast/internal/platform/middleware"
	"github.com/Sayrarh/Fast/internal/receipt"
	"github.com/Sayrarh/Fast/internal/registry/service"
	"github.com/Sayrarh/Fast/internal/registry/store"
	id "github.com/Sayrarh/Fast/pkg/domain"
)

const (
	signingKey    = "test-signing-key"
	registrarAcct = id.Address("0x00000000000000000000000000000000000000f1")
	alice         = id.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob           = id.Address("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func TestCallerTokenRequired(t *testing.T) {
	router, _ := newRegistryRouter(t)

	body, _ := json.Marshal(map[string]string{"domain": "alice"})
	req := httptest.NewRequest(http.MethodPost, "/registry/domains", bytes.NewReader(body))
	// No bearer token set
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when bearer token missing, got %d", rec.Code)
	}
}

func TestRegisterResolveAndList(t *testing.T) {
	router, verifier := newRegistryRouter(t)
	token := signToken(t, verifier, alice)

	rec := doJSON(t, router, http.MethodPost, "/registry/domains", token, map[string]string{"domain": "alice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering domain, got %d: %s", rec.Code, rec.Body.String())
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if status.Status != "registered" {
		t.Fatalf("expected status registered, got %q", status.Status)
	}

	resolveRec := doJSON(t, router, http.MethodGet, "/registry/owners/"+alice.String()+"/domain", "", nil)
	if resolveRec.Code != http.StatusOK {
		t.Fatalf("expected 200 resolving owner, got %d", resolveRec.Code)
	}
	var resolved struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(resolveRec.Body).Decode(&resolved); err != nil {
		t.Fatalf("failed to decode resolve response: %v", err)
	}
	if resolved.Domain != "alice" {
		t.Fatalf("expected resolved domain alice, got %q", resolved.Domain)
	}

	activeRec := doJSON(t, router, http.MethodGet, "/registry/domains/alice", "", nil)
	if activeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 checking domain, got %d", activeRec.Code)
	}
	var active struct {
		Registered bool   `json:"registered"`
		Owner      string `json:"owner"`
	}
	if err := json.NewDecoder(activeRec.Body).Decode(&active); err != nil {
		t.Fatalf("failed to decode domain check response: %v", err)
	}
	if !active.Registered {
		t.Fatalf("expected domain alice to be registered")
	}
	if active.Owner != alice.String() {
		t.Fatalf("expected owner %s, got %q", alice, active.Owner)
	}

	listRec := doJSON(t, router, http.MethodGet, "/registry/domains", "", nil)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing domains, got %d", listRec.Code)
	}
	var list struct {
		Domains []string `json:"domains"`
		Count   int      `json:"count"`
	}
	if err := json.NewDecoder(listRec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if list.Count != 1 || len(list.Domains) != 1 || list.Domains[0] != "alice" {
		t.Fatalf("expected registration log [alice], got %v", list.Domains)
	}
}

func TestRegisterConflicts(t *testing.T) {
	router, verifier := newRegistryRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/registry/domains", signToken(t, verifier, alice), map[string]string{"domain": "alice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/registry/domains", signToken(t, verifier, bob), map[string]string{"domain": "alice"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for taken domain, got %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Error != "already_exists" {
		t.Fatalf("expected error already_exists, got %q", body.Error)
	}

	rec = doJSON(t, router, http.MethodPost, "/registry/domains", signToken(t, verifier, alice), map[string]string{"domain": "other"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second domain by same caller, got %d", rec.Code)
	}
}

func TestReassignUnauthorized(t *testing.T) {
	router, verifier := newRegistryRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/registry/domains", signToken(t, verifier, alice), map[string]string{"domain": "alice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/registry/domains/reassign", signToken(t, verifier, bob), map[string]string{
		"new_domain": "stolen",
		"owner":      alice.String(),
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign reassign, got %d", rec.Code)
	}
}

func TestTransferOwnershipViaHandler(t *testing.T) {
	router, verifier := newRegistryRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/registry/domains", signToken(t, verifier, alice), map[string]string{"domain": "alice"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/registry/owners/transfer", signToken(t, verifier, alice), map[string]string{
		"new_owner": bob.String(),
		"owner":     alice.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 transferring ownership, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/registry/owners/transfer", signToken(t, verifier, alice), map[string]string{
		"new_owner": bob.String(),
		"owner":     "not-an-address",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed owner, got %d", rec.Code)
	}
}

func TestFaucetMintOneShot(t *testing.T) {
	router, verifier := newRegistryRouter(t)
	token := signToken(t, verifier, bob)

	rec := doJSON(t, router, http.MethodPost, "/faucet/mint", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for first faucet call, got %d: %s", rec.Code, rec.Body.String())
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode faucet response: %v", err)
	}
	if status.Status != "minted" {
		t.Fatalf("expected status minted, got %q", status.Status)
	}

	rec = doJSON(t, router, http.MethodPost, "/faucet/mint", token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second faucet call, got %d", rec.Code)
	}
}

func TestResolveRejectsMalformedAddress(t *testing.T) {
	router, _ := newRegistryRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/registry/owners/zzz/domain", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed address, got %d", rec.Code)
	}
}

func newRegistryRouter(t *testing.T) (http.Handler, *middleware.TokenVerifier) {
	t.Helper()

	mem := ledger.NewInMemory()
	mem.SetOperator(registrarAcct)
	mem.Mint(registrarAcct, uint256.NewInt(1000))
	mem.Mint(alice, uint256.NewInt(100))
	mem.Mint(bob, uint256.NewInt(100))

	svc := service.New(store.NewInMemory(), mem, receipt.NewInMemory(), service.Policy{
		Account:      registrarAcct,
		Fee:          uint256.NewInt(1),
		Threshold:    uint256.NewInt(5),
		FaucetAmount: uint256.NewInt(10),
	})

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	verifier := middleware.NewTokenVerifier(signingKey)

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	h.Register(r, middleware.RequireCaller(verifier, logger))
	return r, verifier
}

func signToken(t *testing.T, verifier *middleware.TokenVerifier, addr id.Address) string {
	t.Helper()
	token, err := verifier.Sign(addr)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
