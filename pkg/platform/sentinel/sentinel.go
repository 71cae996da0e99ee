package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and collaborators return
// these (optionally wrapped) so the registrar service can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: write collides with existing state
// - ErrInsufficientFunds: ledger balance too small for a transfer
// - ErrNotAllowed: spender lacks allowance or operator rights
// - ErrUnavailable: service or resource temporarily unavailable
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotAllowed        = errors.New("not allowed")
	ErrUnavailable       = errors.New("unavailable")
)
