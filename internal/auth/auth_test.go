package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

func newAuthenticator(t *testing.T) (*Authenticator, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return NewAuthenticator(db, "test-secret", time.Hour), db
}

func seedUser(t *testing.T, db *gorm.DB, username, password, role string, status string) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		ID:       common.UUIDint64(),
		Username: username,
		Password: string(hash),
		Role:     role,
		Status:   status,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestLogin(t *testing.T) {
	a, db := newAuthenticator(t)
	ctx := context.Background()
	seeded := seedUser(t, db, "admin", "letmein99", "Admin", common.ENABLED)

	p, err := a.Login(ctx, "admin", "letmein99")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, p.UserID)
	assert.Equal(t, identity.RoleAdmin, p.Role)

	var after domain.User
	require.NoError(t, db.First(&after, seeded.ID).Error)
	assert.False(t, after.LastLogin.IsZero(), "last_login is stamped")
}

func TestLoginRejections(t *testing.T) {
	a, db := newAuthenticator(t)
	ctx := context.Background()
	seedUser(t, db, "admin", "letmein99", "Admin", common.ENABLED)
	seedUser(t, db, "gone", "letmein99", "Staff", common.DISABLED)

	_, err := a.Login(ctx, "admin", "wrongpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = a.Login(ctx, "nobody", "letmein99")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Disabled accounts look exactly like unknown ones.
	_, err = a.Login(ctx, "gone", "letmein99")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	a, _ := newAuthenticator(t)
	cid := int64(77)
	p := &identity.Principal{UserID: 12345, Username: "carol", Role: identity.RoleCustomer, CustomerID: &cid}

	token, err := a.IssueToken(p)
	require.NoError(t, err)

	got, err := a.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)
	assert.Equal(t, p.Username, got.Username)
	assert.Equal(t, p.Role, got.Role)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, cid, *got.CustomerID)
}

func TestTokenTamperAndExpiry(t *testing.T) {
	a, _ := newAuthenticator(t)
	p := &identity.Principal{UserID: 1, Username: "admin", Role: identity.RoleAdmin}

	token, err := a.IssueToken(p)
	require.NoError(t, err)

	other := NewAuthenticator(nil, "other-secret", time.Hour)
	_, err = other.ParseToken(token)
	assert.Error(t, err, "wrong secret is rejected")

	expired := NewAuthenticator(nil, "test-secret", -time.Minute)
	token, err = expired.IssueToken(p)
	require.NoError(t, err)
	_, err = a.ParseToken(token)
	assert.Error(t, err, "expired token is rejected")
}
