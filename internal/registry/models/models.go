// Package models defines the registrar's state records and the staged
// mutations committed against them. The three linked views (domain→owner,
// owner→domain, ordered log) are never updated independently: every change
// travels as one Mutation applied atomically by a store.
package models

import (
	id "github.com/Sayrarh/Fast/pkg/domain"
)

// Record is the per-identity registration state.
type Record struct {
	Owner      id.Address
	Domain     string // empty when the identity holds no domain string
	Registered bool
	LogIndex   int64 // position of Domain in the ordered log; -1 when none
	ReceiptID  uint64
	HasReceipt bool
	Minted     bool // faucet flag; independent of registration state
}

// EmptyRecord is the state of an identity that never interacted with the
// registrar.
func EmptyRecord(owner id.Address) Record {
	return Record{Owner: owner, LogIndex: -1}
}

// MutationKind discriminates staged state changes.
type MutationKind string

const (
	// MutationRegister claims a domain for a never-registered identity.
	MutationRegister MutationKind = "register"
	// MutationReassign swaps an owner's domain string in place.
	MutationReassign MutationKind = "reassign"
	// MutationTransfer flips the Registered flags only, leaving the domain
	// linkage on the old owner. This reproduces the legacy contract.
	MutationTransfer MutationKind = "transfer"
	// MutationTransferCorrected moves the whole domain linkage to the new
	// owner. Selected by configuration; see DESIGN.md.
	MutationTransferCorrected MutationKind = "transfer_corrected"
	// MutationMarkMinted and MutationUnmarkMinted maintain the one-shot
	// faucet flag. Unmark exists only as the compensating step when the
	// faucet's ledger transfer fails after the flag was set.
	MutationMarkMinted   MutationKind = "mark_minted"
	MutationUnmarkMinted MutationKind = "unmark_minted"
)

// Mutation is one staged, validated state change. Stores apply it
// atomically or not at all.
type Mutation struct {
	Kind      MutationKind
	Owner     id.Address
	NewOwner  id.Address // transfer kinds only
	Domain    string     // domain being claimed (register, reassign)
	OldDomain string     // reassign only
	ReceiptID uint64     // register only
}

// RegisterMutation stages a first registration.
func RegisterMutation(owner id.Address, domain string, receiptID uint64) Mutation {
	return Mutation{Kind: MutationRegister, Owner: owner, Domain: domain, ReceiptID: receiptID}
}

// ReassignMutation stages an in-place domain swap.
func ReassignMutation(owner id.Address, oldDomain, newDomain string) Mutation {
	return Mutation{Kind: MutationReassign, Owner: owner, Domain: newDomain, OldDomain: oldDomain}
}

// TransferMutation stages an ownership transfer; corrected selects the
// linkage-moving semantics.
func TransferMutation(owner, newOwner id.Address, corrected bool) Mutation {
	kind := MutationTransfer
	if corrected {
		kind = MutationTransferCorrected
	}
	return Mutation{Kind: kind, Owner: owner, NewOwner: newOwner}
}

// MarkMintedMutation stages the faucet's one-shot flag.
func MarkMintedMutation(addr id.Address) Mutation {
	return Mutation{Kind: MutationMarkMinted, Owner: addr}
}

// UnmarkMintedMutation compensates a failed faucet grant.
func UnmarkMintedMutation(addr id.Address) Mutation {
	return Mutation{Kind: MutationUnmarkMinted, Owner: addr}
}
