package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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

func TestUserCreateHashesPassword(t *testing.T) {
	s := newTestService(t)
	created, err := s.Create(context.Background(), admin, UserForm{
		Username: "jmuller",
		Password: "s3cretpw",
		Role:     "Staff",
		Realname: "J. Muller",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpw", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("s3cretpw")))
}

func TestUserDuplicateUsername(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, admin, UserForm{Username: "jmuller", Password: "s3cretpw", Role: "Staff"})
	require.NoError(t, err)

	_, err = s.Create(ctx, admin, UserForm{Username: "jmuller", Password: "otherpw1", Role: "Staff"})
	var dup domain.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "username", dup.Field)
}

func TestUserRoleLinkInvariants(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	customerID := int64(42)

	// Customer role without a linked record.
	_, err := s.Create(ctx, admin, UserForm{Username: "c1", Password: "passw0rd", Role: "Customer"})
	var invalid domain.InvalidFieldError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "customer_id", invalid.Field)

	// Staff role with one.
	_, err = s.Create(ctx, admin, UserForm{Username: "s1", Password: "passw0rd", Role: "Staff", CustomerID: &customerID})
	require.True(t, errors.As(err, &invalid))

	// Correct pairings pass.
	_, err = s.Create(ctx, admin, UserForm{Username: "c1", Password: "passw0rd", Role: "Customer", CustomerID: &customerID})
	require.NoError(t, err)
	_, err = s.Create(ctx, admin, UserForm{Username: "s1", Password: "passw0rd", Role: "Staff"})
	require.NoError(t, err)

	_, err = s.Create(ctx, admin, UserForm{Username: "x1", Password: "passw0rd", Role: "Superuser"})
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "role", invalid.Field)
}

func TestUserUpdateKeepsPasswordWhenBlank(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created, err := s.Create(ctx, admin, UserForm{Username: "jmuller", Password: "s3cretpw", Role: "Staff"})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, admin, created.ID, UserForm{Username: "jmuller", Role: "Staff", Realname: "Renamed"}))
	got, err := s.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Realname)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("s3cretpw")))

	require.NoError(t, s.Update(ctx, admin, created.ID, UserForm{Username: "jmuller", Password: "newpassw", Role: "Staff"}))
	got, err = s.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(got.Password), []byte("newpassw")))
}

func TestUserModuleIsAdminOnly(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	var denied domain.PermissionDeniedError
	_, err := s.List(ctx, staff)
	require.True(t, errors.As(err, &denied), "even reads are admin only")

	_, err = s.Create(ctx, staff, UserForm{Username: "nope", Password: "passw0rd", Role: "Staff"})
	require.True(t, errors.As(err, &denied))

	_, err = s.List(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestUserCannotDeleteSelf(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created, err := s.Create(ctx, admin, UserForm{Username: "admin2", Password: "passw0rd", Role: "Admin"})
	require.NoError(t, err)

	me := &identity.Principal{UserID: created.ID, Username: "admin2", Role: identity.RoleAdmin}
	err = s.Delete(ctx, me, created.ID)
	var invalid domain.InvalidFieldError
	require.True(t, errors.As(err, &invalid))

	require.NoError(t, s.Delete(ctx, admin, created.ID))
	rows, err := s.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
