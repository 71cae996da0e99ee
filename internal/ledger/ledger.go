// Package ledger models the fungible-token collaborator the registrar moves
// fees through. The registrar neither mints nor burns this asset; it only
// checks balances and moves a fixed fee amount.
package ledger

import (
	"context"

	"github.com/holiman/uint256"

	id "github.com/Sayrarh/Fast/pkg/domain"
)

// Ledger is the surface the registrar depends on. Callers are explicit
// arguments: Transfer moves the sender's own funds, TransferFrom moves
// someone else's funds under allowance or operator rights.
type Ledger interface {
	BalanceOf(ctx context.Context, addr id.Address) (*uint256.Int, error)
	Transfer(ctx context.Context, from, to id.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to id.Address, amount *uint256.Int) error
}
