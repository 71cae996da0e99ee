package service

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/Sayrarh/Fast/internal/platform/config"
	dErrors "github.com/Sayrarh/Fast/pkg/domain-errors"
	id "github.com/Sayrarh/Fast/pkg/domain"
)

// Policy captures the registrar's economic parameters. The threshold is an
// eligibility gate, not a price: register and reassign both require the
// caller to hold at least Threshold while charging only Fee.
type Policy struct {
	// Account is the registrar's own ledger account.
	Account id.Address
	// Fee is locked per registration or reassignment.
	Fee *uint256.Int
	// Threshold is the minimum balance required to register or reassign.
	Threshold *uint256.Int
	// FaucetAmount is the fixed one-shot faucet grant.
	FaucetAmount *uint256.Int
}

// PolicyFromConfig parses the decimal amount strings from configuration.
func PolicyFromConfig(cfg config.Registrar) (Policy, error) {
	account, err := id.ParseAddress(cfg.Account)
	if err != nil {
		return Policy{}, fmt.Errorf("registrar account: %w", err)
	}
	fee, err := uint256.FromDecimal(cfg.Fee)
	if err != nil {
		return Policy{}, fmt.Errorf("registrar fee: %w", err)
	}
	threshold, err := uint256.FromDecimal(cfg.Threshold)
	if err != nil {
		return Policy{}, fmt.Errorf("registrar threshold: %w", err)
	}
	faucet, err := uint256.FromDecimal(cfg.FaucetAmount)
	if err != nil {
		return Policy{}, fmt.Errorf("faucet amount: %w", err)
	}
	if fee.Gt(threshold) {
		return Policy{}, fmt.Errorf("fee %s exceeds eligibility threshold %s", fee, threshold)
	}
	return Policy{Account: account, Fee: fee, Threshold: threshold, FaucetAmount: faucet}, nil
}

// meetsEligibilityThreshold is the shared economic gate for register and
// reassign. Factored into one predicate so the two checks cannot drift
// apart.
func (r *Registrar) meetsEligibilityThreshold(ctx context.Context, caller id.Address) error {
	balance, err := r.ledger.BalanceOf(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "balance query failed")
	}
	if balance.Lt(r.policy.Threshold) {
		return dErrors.New(dErrors.CodeNotEligible, "balance below eligibility threshold")
	}
	return nil
}
