package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
)

func principal(role identity.Role, customerID *int64) *identity.Principal {
	return &identity.Principal{UserID: 1, Username: "tester", Role: role, CustomerID: customerID}
}

func TestPolicyMatrix(t *testing.T) {
	admin := principal(identity.RoleAdmin, nil)
	staff := principal(identity.RoleStaff, nil)
	cid := int64(7)
	customer := principal(identity.RoleCustomer, &cid)

	type row struct {
		who     *identity.Principal
		module  Module
		create  bool
		read    bool
		update  bool
		deleteP bool
	}
	var cases []row
	for _, m := range Modules {
		cases = append(cases, row{admin, m, true, true, true, true})
	}
	for _, m := range Modules {
		switch m {
		case ModuleCustomers, ModuleOrders:
			cases = append(cases, row{staff, m, true, true, false, false})
		case ModuleUsers:
			cases = append(cases, row{staff, m, false, false, false, false})
		default:
			cases = append(cases, row{staff, m, false, true, false, false})
		}
	}
	for _, m := range Modules {
		readable := m != ModuleUsers
		cases = append(cases, row{customer, m, false, readable, false, false})
	}

	for _, tc := range cases {
		name := string(tc.who.Role) + "/" + string(tc.module)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.create, CanCreate(tc.who, tc.module), "create probe")
			assert.Equal(t, tc.update, CanUpdate(tc.who, tc.module), "update probe")
			assert.Equal(t, tc.deleteP, CanDelete(tc.who, tc.module), "delete probe")

			assert.Equal(t, tc.create, EnsureCanCreate(tc.who, tc.module) == nil, "ensure create")
			assert.Equal(t, tc.read, EnsureCanRead(tc.who, tc.module) == nil, "ensure read")
			assert.Equal(t, tc.update, EnsureCanUpdate(tc.who, tc.module) == nil, "ensure update")
			assert.Equal(t, tc.deleteP, EnsureCanDelete(tc.who, tc.module) == nil, "ensure delete")
		})
	}
}

func TestDeniedErrorKind(t *testing.T) {
	staff := principal(identity.RoleStaff, nil)
	err := EnsureCanDelete(staff, ModuleOrders)
	require.Error(t, err)
	var denied domain.PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "Orders", denied.Module)
	assert.Equal(t, "delete", denied.Action)
	assert.True(t, domain.IsDomainError(err))
}

func TestUnauthenticated(t *testing.T) {
	for _, m := range Modules {
		assert.ErrorIs(t, EnsureCanRead(nil, m), domain.ErrNotAuthenticated)
		assert.ErrorIs(t, EnsureCanCreate(nil, m), domain.ErrNotAuthenticated)
		assert.ErrorIs(t, EnsureCanUpdate(nil, m), domain.ErrNotAuthenticated)
		assert.ErrorIs(t, EnsureCanDelete(nil, m), domain.ErrNotAuthenticated)
		assert.False(t, CanCreate(nil, m))
	}
	assert.ErrorIs(t, EnsureSelfOwnership(nil, 1), domain.ErrNotAuthenticated)
}

func TestSelfOwnership(t *testing.T) {
	cid := int64(7)
	customer := principal(identity.RoleCustomer, &cid)

	assert.NoError(t, EnsureSelfOwnership(customer, 7))
	err := EnsureSelfOwnership(customer, 9)
	require.Error(t, err)
	var denied domain.PermissionDeniedError
	require.True(t, errors.As(err, &denied))

	// Admin and Staff are exempt from the self check.
	assert.NoError(t, EnsureSelfOwnership(principal(identity.RoleAdmin, nil), 9))
	assert.NoError(t, EnsureSelfOwnership(principal(identity.RoleStaff, nil), 9))
}

func TestRoleProbes(t *testing.T) {
	assert.True(t, IsAdmin(principal(identity.RoleAdmin, nil)))
	assert.True(t, IsStaff(principal(identity.RoleStaff, nil)))
	cid := int64(1)
	assert.True(t, IsCustomer(principal(identity.RoleCustomer, &cid)))
	assert.False(t, IsAdmin(nil))
}
