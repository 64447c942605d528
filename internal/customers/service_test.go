package customers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
)

var (
	admin = &identity.Principal{UserID: 1, Username: "admin", Role: identity.RoleAdmin}
	staff = &identity.Principal{UserID: 2, Username: "staff", Role: identity.RoleStaff}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return NewService(db)
}

func TestCustomerLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, staff, CustomerForm{Name: "Dana Reyes", Phone: "555-0101", Email: "dana@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, admin, created.ID, CustomerForm{Name: "Dana Reyes", Phone: "555-0199", Email: "dana@example.com"}))
	got, err := s.Get(ctx, staff, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", got.Phone)

	require.NoError(t, s.Delete(ctx, admin, created.ID))
	rows, err := s.List(ctx, staff)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCustomerSearch(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, staff, CustomerForm{Name: "Omar Lindqvist", Phone: "555-0202", Email: "omar@example.com"})
	require.NoError(t, err)
	_, err = s.Create(ctx, staff, CustomerForm{Name: "Priya Shah", Phone: "555-0303", Email: "priya@shop.test"})
	require.NoError(t, err)

	byName, err := s.Search(ctx, staff, "Lindqvist")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byPhone, err := s.Search(ctx, staff, "0303")
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Priya Shah", byPhone[0].Name)

	byEmail, err := s.Search(ctx, staff, "shop.test")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
}

func TestCustomerSelfOwnership(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	mine, err := s.Create(ctx, staff, CustomerForm{Name: "Mine"})
	require.NoError(t, err)
	other, err := s.Create(ctx, staff, CustomerForm{Name: "Other"})
	require.NoError(t, err)

	me := &identity.Principal{UserID: 9, Username: "mine", Role: identity.RoleCustomer, CustomerID: &mine.ID}
	got, err := s.Get(ctx, me, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)

	_, err = s.Get(ctx, me, other.ID)
	var denied domain.PermissionDeniedError
	require.True(t, errors.As(err, &denied))
}

func TestCustomerPermissions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created, err := s.Create(ctx, staff, CustomerForm{Name: "Keep"})
	require.NoError(t, err)

	var denied domain.PermissionDeniedError
	err = s.Update(ctx, staff, created.ID, CustomerForm{Name: "Changed"})
	require.True(t, errors.As(err, &denied), "update is admin only")

	err = s.Delete(ctx, staff, created.ID)
	require.True(t, errors.As(err, &denied), "delete is admin only")

	cID := int64(777)
	cust := &identity.Principal{UserID: 8, Username: "c", Role: identity.RoleCustomer, CustomerID: &cID}
	_, err = s.Create(ctx, cust, CustomerForm{Name: "Nope"})
	require.True(t, errors.As(err, &denied))

	err = s.Delete(ctx, admin, 424242)
	var missing domain.NotFoundError
	require.True(t, errors.As(err, &missing))
}
