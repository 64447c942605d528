package authz

import (
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
)

// Module is the unit of authorization.
type Module string

const (
	ModuleCategories Module = "Categories"
	ModuleProducts   Module = "Products"
	ModuleCustomers  Module = "Customers"
	ModuleOrders     Module = "Orders"
	ModuleUsers      Module = "Users"
)

// Modules lists every module, in display order.
var Modules = []Module{ModuleCategories, ModuleProducts, ModuleCustomers, ModuleOrders, ModuleUsers}

type permission struct {
	create bool
	read   bool
	update bool
	delete bool
}

var full = permission{create: true, read: true, update: true, delete: true}
var readOnly = permission{read: true}

// policy is the role × module × action matrix. Staff may additionally create
// customers and orders; only admins mutate anything else, and the Users
// module is invisible to everyone but admins.
var policy = map[identity.Role]map[Module]permission{
	identity.RoleAdmin: {
		ModuleCategories: full,
		ModuleProducts:   full,
		ModuleCustomers:  full,
		ModuleOrders:     full,
		ModuleUsers:      full,
	},
	identity.RoleStaff: {
		ModuleCategories: readOnly,
		ModuleProducts:   readOnly,
		ModuleCustomers:  {create: true, read: true},
		ModuleOrders:     {create: true, read: true},
		ModuleUsers:      {},
	},
	identity.RoleCustomer: {
		ModuleCategories: readOnly,
		ModuleProducts:   readOnly,
		ModuleCustomers:  readOnly,
		ModuleOrders:     readOnly,
		ModuleUsers:      {},
	},
}

func grants(p *identity.Principal, m Module) permission {
	if p == nil {
		return permission{}
	}
	return policy[p.Role][m]
}

func IsAdmin(p *identity.Principal) bool    { return p != nil && p.Role == identity.RoleAdmin }
func IsStaff(p *identity.Principal) bool    { return p != nil && p.Role == identity.RoleStaff }
func IsCustomer(p *identity.Principal) bool { return p != nil && p.Role == identity.RoleCustomer }

// CanCreate, CanUpdate and CanDelete are advisory probes for UI affordance
// toggling; the Ensure* checks remain the authoritative enforcement.
func CanCreate(p *identity.Principal, m Module) bool { return grants(p, m).create }
func CanUpdate(p *identity.Principal, m Module) bool { return grants(p, m).update }
func CanDelete(p *identity.Principal, m Module) bool { return grants(p, m).delete }

func EnsureCanCreate(p *identity.Principal, m Module) error {
	if p == nil {
		return domain.ErrNotAuthenticated
	}
	if !grants(p, m).create {
		return domain.PermissionDeniedError{Module: string(m), Action: "create"}
	}
	return nil
}

func EnsureCanRead(p *identity.Principal, m Module) error {
	if p == nil {
		return domain.ErrNotAuthenticated
	}
	if !grants(p, m).read {
		return domain.PermissionDeniedError{Module: string(m), Action: "read"}
	}
	return nil
}

func EnsureCanUpdate(p *identity.Principal, m Module) error {
	if p == nil {
		return domain.ErrNotAuthenticated
	}
	if !grants(p, m).update {
		return domain.PermissionDeniedError{Module: string(m), Action: "update"}
	}
	return nil
}

func EnsureCanDelete(p *identity.Principal, m Module) error {
	if p == nil {
		return domain.ErrNotAuthenticated
	}
	if !grants(p, m).delete {
		return domain.PermissionDeniedError{Module: string(m), Action: "delete"}
	}
	return nil
}

// EnsureSelfOwnership rejects Customer principals reaching for another
// customer's records. Admin and Staff pass through.
func EnsureSelfOwnership(p *identity.Principal, customerID int64) error {
	if p == nil {
		return domain.ErrNotAuthenticated
	}
	if p.Role == identity.RoleCustomer && !p.OwnsCustomer(customerID) {
		return domain.PermissionDeniedError{Reason: "you can only access your own data"}
	}
	return nil
}
