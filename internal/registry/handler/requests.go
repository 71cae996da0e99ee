package handler

import (
	"strings"

	dErrors "github.com/Sayrarh/Fast/pkg/domain-errors"
	id "github.com/Sayrarh/Fast/pkg/domain"
)

// RegisterRequest is the HTTP request body for POST /registry/domains.
type RegisterRequest struct {
	Domain string `json:"domain"`
}

// Validate normalizes and checks the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Domain = strings.TrimSpace(r.Domain)
	if r.Domain == "" {
		return dErrors.New(dErrors.CodeBadRequest, "domain is required")
	}
	return nil
}

// ReassignRequest is the HTTP request body for POST /registry/domains/reassign.
type ReassignRequest struct {
	NewDomain string `json:"new_domain"`
	Owner     string `json:"owner"`

	parsedOwner id.Address
}

func (r *ReassignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.NewDomain = strings.TrimSpace(r.NewDomain)
	if r.NewDomain == "" {
		return dErrors.New(dErrors.CodeBadRequest, "new_domain is required")
	}
	owner, err := id.ParseAddress(r.Owner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "owner is not a valid address")
	}
	r.parsedOwner = owner
	return nil
}

// ParsedOwner returns the validated owner address.
func (r *ReassignRequest) ParsedOwner() id.Address {
	return r.parsedOwner
}

// TransferRequest is the HTTP request body for POST /registry/owners/transfer.
type TransferRequest struct {
	NewOwner string `json:"new_owner"`
	Owner    string `json:"owner"`

	parsedNewOwner id.Address
	parsedOwner    id.Address
}

func (r *TransferRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	newOwner, err := id.ParseAddress(r.NewOwner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "new_owner is not a valid address")
	}
	owner, err := id.ParseAddress(r.Owner)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "owner is not a valid address")
	}
	r.parsedNewOwner = newOwner
	r.parsedOwner = owner
	return nil
}

// ParsedNewOwner returns the validated transfer target address.
func (r *TransferRequest) ParsedNewOwner() id.Address {
	return r.parsedNewOwner
}

// ParsedOwner returns the validated current owner address.
func (r *TransferRequest) ParsedOwner() id.Address {
	return r.parsedOwner
}
