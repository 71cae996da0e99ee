package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/platform/sentinel"
)

// InMemory is a process-local fungible ledger. Transfers follow ERC-20
// semantics: an account moves its own funds, or a spender moves another
// account's funds under a prior allowance. Operator accounts bypass the
// allowance check entirely; the registrar is registered as an operator at
// bootstrap so registration does not require a separate approve call.
type InMemory struct {
	mu         sync.RWMutex
	balances   map[id.Address]*uint256.Int
	allowances map[id.Address]map[id.Address]*uint256.Int
	operators  map[id.Address]bool
}

// NewInMemory builds an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		balances:   make(map[id.Address]*uint256.Int),
		allowances: make(map[id.Address]map[id.Address]*uint256.Int),
		operators:  make(map[id.Address]bool),
	}
}

// Mint credits an account. Only bootstrap and tests create supply.
func (l *InMemory) Mint(addr id.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] = new(uint256.Int).Add(l.balance(addr), amount)
}

// SetOperator grants an account the right to move any balance.
func (l *InMemory) SetOperator(addr id.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.operators[addr] = true
}

// Approve sets spender's allowance over owner's funds.
func (l *InMemory) Approve(ctx context.Context, owner, spender id.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[id.Address]*uint256.Int)
	}
	l.allowances[owner][spender] = new(uint256.Int).Set(amount)
	return nil
}

func (l *InMemory) BalanceOf(ctx context.Context, addr id.Address) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(uint256.Int).Set(l.balance(addr)), nil
}

// Transfer moves from's own funds.
func (l *InMemory) Transfer(ctx context.Context, from, to id.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves from's funds on behalf of spender. The spender must be
// an operator or hold a sufficient allowance, which is consumed.
func (l *InMemory) TransferFrom(ctx context.Context, spender, from, to id.Address, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if spender != from && !l.operators[spender] {
		allowance := l.allowance(from, spender)
		if allowance.Lt(amount) {
			return fmt.Errorf("spender %s over %s: %w", spender, from, sentinel.ErrNotAllowed)
		}
		if err := l.move(from, to, amount); err != nil {
			return err
		}
		if l.allowances[from] == nil {
			l.allowances[from] = make(map[id.Address]*uint256.Int)
		}
		l.allowances[from][spender] = new(uint256.Int).Sub(allowance, amount)
		return nil
	}
	return l.move(from, to, amount)
}

// balance returns the stored balance without copying; callers hold the lock.
func (l *InMemory) balance(addr id.Address) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (l *InMemory) allowance(owner, spender id.Address) *uint256.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return uint256.NewInt(0)
}

func (l *InMemory) move(from, to id.Address, amount *uint256.Int) error {
	fromBal := l.balance(from)
	if fromBal.Lt(amount) {
		return fmt.Errorf("account %s: %w", from, sentinel.ErrInsufficientFunds)
	}
	l.balances[from] = new(uint256.Int).Sub(fromBal, amount)
	l.balances[to] = new(uint256.Int).Add(l.balance(to), amount)
	return nil
}
