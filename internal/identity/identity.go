package identity

import "fmt"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleStaff    Role = "Staff"
	RoleCustomer Role = "Customer"
)

// ParseRole validates a stored role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Principal is the authenticated identity performing an operation. It is an
// immutable value passed explicitly into every service call; a nil *Principal
// means "not authenticated". There is no process-global current user.
type Principal struct {
	UserID     int64
	Username   string
	Role       Role
	CustomerID *int64
}

// OwnsCustomer reports whether the principal is linked to the given customer.
func (p *Principal) OwnsCustomer(customerID int64) bool {
	return p != nil && p.CustomerID != nil && *p.CustomerID == customerID
}
