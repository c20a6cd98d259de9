package access

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/ecommerce_api/internal/domain"
)

const AdminRole = "admin"

type Operation string

const (
	OpPlaceOrder    Operation = "order.place"
	OpUpdateOrder   Operation = "order.update"
	OpDeleteOrder   Operation = "order.delete"
	OpManageCatalog Operation = "catalog.manage"
	OpManageUsers   Operation = "users.manage"
	OpUseCart       Operation = "cart.use"
)

// Claim is the caller identity as the transport layer extracted it.
// It is trusted as-is; verification belongs to the Source that built it.
type Claim struct {
	Role    string
	ActorID *uint
}

func (c Claim) HasRole() bool {
	return strings.TrimSpace(c.Role) != ""
}

func (c Claim) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(c.Role), AdminRole)
}

func (c Claim) owns(ownerID *uint) bool {
	return c.ActorID != nil && ownerID != nil && *c.ActorID == *ownerID
}

type Policy interface {
	// Authorize returns nil to allow, or an error wrapping
	// domain.ErrForbidden or domain.ErrUnauthenticated.
	Authorize(claim Claim, op Operation, ownerID *uint) error
}

// RolePolicy trusts the role string: "admin" may do everything, any role may
// place orders, and owners may change their own orders.
type RolePolicy struct{}

func (RolePolicy) Authorize(claim Claim, op Operation, ownerID *uint) error {
	switch op {
	case OpPlaceOrder:
		if !claim.HasRole() {
			return fmt.Errorf("%w: role required", domain.ErrUnauthenticated)
		}
		return nil

	case OpUpdateOrder, OpDeleteOrder:
		if !claim.HasRole() {
			return fmt.Errorf("%w: role required", domain.ErrUnauthenticated)
		}
		if claim.IsAdmin() || claim.owns(ownerID) {
			return nil
		}
		return fmt.Errorf("%w: only admin or owner may change the order", domain.ErrForbidden)

	case OpManageCatalog, OpManageUsers:
		if claim.IsAdmin() {
			return nil
		}
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)

	case OpUseCart:
		if claim.ActorID == nil {
			return fmt.Errorf("%w: user id required", domain.ErrUnauthenticated)
		}
		return nil
	}

	return fmt.Errorf("%w: unknown operation %q", domain.ErrForbidden, op)
}
