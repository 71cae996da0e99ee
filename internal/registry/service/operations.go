package service

import (
	"context"
	"strings"
	"time"

	"github.com/Sayrarh/Fast/internal/events"
	"github.com/Sayrarh/Fast/internal/registry/models"
	dErrors "github.com/Sayrarh/Fast/pkg/domain-errors"
	id "github.com/Sayrarh/Fast/pkg/domain"
	"github.com/Sayrarh/Fast/pkg/requestcontext"
)

// Register claims a domain for a never-registered caller. Preconditions are
// checked in order and the first failure aborts with no state change; the
// fee transfer is not attempted before all local preconditions pass.
func (r *Registrar) Register(ctx context.Context, domain string, caller id.Address) (err error) {
	ctx, span := r.tracer.Start(ctx, "registrar.Register")
	defer span.End()
	defer func(start time.Time) { r.observe("register", start, err) }(time.Now())

	r.opMu.Lock()
	defer r.opMu.Unlock()

	domain = strings.TrimSpace(domain)
	if !id.ValidDomainName(domain) {
		return dErrors.New(dErrors.CodeInvalidInput, "domain name must not be empty")
	}
	active, err := r.store.IsActive(ctx, domain)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check domain")
	}
	if active {
		return dErrors.New(dErrors.CodeAlreadyExists, "domain is already registered")
	}
	if err = r.meetsEligibilityThreshold(ctx, caller); err != nil {
		return err
	}
	rec, err := r.store.Record(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load caller record")
	}
	if rec.Registered {
		return dErrors.New(dErrors.CodeAlreadyRegistered, "identity already holds a domain")
	}

	// External phase. The fee moves first; if the receipt mint then fails
	// the fee is refunded so the whole operation unwinds.
	if err = r.ledger.TransferFrom(ctx, r.policy.Account, caller, r.policy.Account, r.policy.Fee); err != nil {
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "fee transfer failed")
	}
	receiptID, err := r.receipts.AwardUser(ctx, caller)
	if err != nil {
		r.refundFee(ctx, caller)
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "receipt mint failed")
	}

	if err = r.store.Apply(ctx, models.RegisterMutation(caller, domain, receiptID)); err != nil {
		r.refundFee(ctx, caller)
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit registration")
	}

	r.invalidate(ctx, []id.Address{caller}, []string{domain})
	r.emit(ctx, events.Event{
		Type:      events.TypeRegistered,
		Domain:    domain,
		Caller:    caller,
		Timestamp: requestcontext.Now(ctx),
	})
	return nil
}

// Reassign swaps the owner's domain string in place. The authorization check
// precedes all others; the economic gate mirrors registration even though
// the fee charged is smaller than the threshold.
func (r *Registrar) Reassign(ctx context.Context, newDomain string, owner, caller id.Address) (err error) {
	ctx, span := r.tracer.Start(ctx, "registrar.Reassign")
	defer span.End()
	defer func(start time.Time) { r.observe("reassign", start, err) }(time.Now())

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if caller != owner {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the domain owner")
	}
	newDomain = strings.TrimSpace(newDomain)
	if !id.ValidDomainName(newDomain) {
		return dErrors.New(dErrors.CodeInvalidInput, "domain name must not be empty")
	}
	active, err := r.store.IsActive(ctx, newDomain)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check domain")
	}
	if active {
		return dErrors.New(dErrors.CodeAlreadyExists, "domain is already registered")
	}
	if err = r.meetsEligibilityThreshold(ctx, caller); err != nil {
		return err
	}
	rec, err := r.store.Record(ctx, owner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load owner record")
	}
	if !rec.Registered {
		return dErrors.New(dErrors.CodeNotRegistered, "identity holds no domain")
	}
	if owner.IsZero() {
		return dErrors.New(dErrors.CodeZeroIdentity, "owner must not be the zero identity")
	}

	if err = r.ledger.TransferFrom(ctx, r.policy.Account, caller, r.policy.Account, r.policy.Fee); err != nil {
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "fee transfer failed")
	}

	oldDomain := rec.Domain
	if err = r.store.Apply(ctx, models.ReassignMutation(owner, oldDomain, newDomain)); err != nil {
		r.refundFee(ctx, caller)
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit reassignment")
	}

	r.invalidate(ctx, []id.Address{owner}, []string{oldDomain, newDomain})
	r.emit(ctx, events.Event{
		Type:      events.TypeReassigned,
		Domain:    newDomain,
		OldDomain: oldDomain,
		Caller:    caller,
		Timestamp: requestcontext.Now(ctx),
	})
	return nil
}

// TransferOwnership moves the Registered flag from owner to newOwner. In the
// default literal mode the domain linkage intentionally stays on the old
// owner, reproducing the legacy contract; corrected mode moves it.
func (r *Registrar) TransferOwnership(ctx context.Context, newOwner, owner, caller id.Address) (err error) {
	ctx, span := r.tracer.Start(ctx, "registrar.TransferOwnership")
	defer span.End()
	defer func(start time.Time) { r.observe("transfer_ownership", start, err) }(time.Now())

	r.opMu.Lock()
	defer r.opMu.Unlock()

	if caller != owner {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the stated owner")
	}
	rec, err := r.store.Record(ctx, owner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load owner record")
	}
	if !rec.Registered {
		return dErrors.New(dErrors.CodeNotRegistered, "identity holds no domain")
	}
	if r.correctedTransfer {
		newRec, err := r.store.Record(ctx, newOwner)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "load new owner record")
		}
		if newRec.Registered {
			return dErrors.New(dErrors.CodeAlreadyRegistered, "new owner already holds a domain")
		}
	}

	if err = r.store.Apply(ctx, models.TransferMutation(owner, newOwner, r.correctedTransfer)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit ownership transfer")
	}

	r.invalidate(ctx, []id.Address{owner, newOwner}, []string{rec.Domain})
	r.emit(ctx, events.Event{
		Type:      events.TypeOwnershipTransferred,
		Domain:    rec.Domain,
		Caller:    caller,
		NewOwner:  newOwner,
		Timestamp: requestcontext.Now(ctx),
	})
	return nil
}

// MintTestTokens grants the caller a fixed amount from the registrar's own
// balance, once per identity. The minted flag commits before the transfer so
// a reentrant call during the collaborator hop cannot double-spend; a failed
// transfer unwinds the flag.
func (r *Registrar) MintTestTokens(ctx context.Context, caller id.Address) (status string, err error) {
	ctx, span := r.tracer.Start(ctx, "registrar.MintTestTokens")
	defer span.End()
	defer func(start time.Time) { r.observe("mint_test_tokens", start, err) }(time.Now())

	r.opMu.Lock()
	defer r.opMu.Unlock()

	rec, err := r.store.Record(ctx, caller)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load caller record")
	}
	if rec.Minted {
		return "", dErrors.New(dErrors.CodeAlreadyRegistered, "faucet already used")
	}
	balance, err := r.ledger.BalanceOf(ctx, r.policy.Account)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeCollaborator, "balance query failed")
	}
	if balance.Lt(r.policy.FaucetAmount) {
		return "", dErrors.New(dErrors.CodeNotEligible, "registrar balance below faucet amount")
	}

	if err = r.store.Apply(ctx, models.MarkMintedMutation(caller)); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "commit faucet flag")
	}
	if err = r.ledger.Transfer(ctx, r.policy.Account, caller, r.policy.FaucetAmount); err != nil {
		if unmarkErr := r.store.Apply(ctx, models.UnmarkMintedMutation(caller)); unmarkErr != nil {
			r.logger.ErrorContext(ctx, "faucet flag unwind failed",
				"caller", caller.String(), "error", unmarkErr.Error())
		}
		return "", dErrors.Wrap(err, dErrors.CodeCollaborator, "faucet transfer failed")
	}
	return "minted", nil
}

// refundFee is the compensating step when a later sub-step fails after the
// fee already moved. Best effort: a failed refund is logged loudly because
// it means funds are stuck on the registrar account.
func (r *Registrar) refundFee(ctx context.Context, caller id.Address) {
	if err := r.ledger.Transfer(ctx, r.policy.Account, caller, r.policy.Fee); err != nil {
		r.logger.ErrorContext(ctx, "fee refund failed",
			"caller", caller.String(),
			"fee", r.policy.Fee.String(),
			"error", err.Error(),
		)
	}
}
