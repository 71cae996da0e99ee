// Package receipt models the non-fungible receipt collaborator. Each first
// registration awards one receipt token; the id is stored against the owner
// and survives later domain reassignments.
package receipt

import (
	"context"

	id "github.com/Sayrarh/Fast/pkg/domain"
)

// Issuer mints one receipt per call and returns its identifier. Identifiers
// are monotonically increasing starting at zero.
type Issuer interface {
	AwardUser(ctx context.Context, addr id.Address) (uint64, error)
}
