package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

var (
	admin    = &identity.Principal{UserID: 1, Username: "admin", Role: identity.RoleAdmin}
	staff    = &identity.Principal{UserID: 2, Username: "staff", Role: identity.RoleStaff}
	customer = &identity.Principal{UserID: 3, Username: "carol", Role: identity.RoleCustomer}
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return NewService(db)
}

func TestCategoryLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.CreateCategory(ctx, admin, CategoryForm{Name: "Cables"})
	require.NoError(t, err)
	assert.Equal(t, common.ENABLED, created.Status)

	require.NoError(t, s.UpdateCategory(ctx, admin, created.ID, CategoryForm{Name: "Cables & Hubs"}))
	got, err := s.GetCategory(ctx, staff, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cables & Hubs", got.Name)

	require.NoError(t, s.DeleteCategory(ctx, admin, created.ID))
	rows, err := s.ListCategories(ctx, staff)
	require.NoError(t, err)
	assert.Empty(t, rows, "disabled categories are not listed")

	// Soft delete: the row is still readable by id.
	got, err = s.GetCategory(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, common.DISABLED, got.Status)
}

func TestCategoryListSortedAndSearched(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"Stands", "Cases", "Chargers"} {
		_, err := s.CreateCategory(ctx, admin, CategoryForm{Name: name})
		require.NoError(t, err)
	}

	rows, err := s.ListCategories(ctx, customer)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Cases", rows[0].Name)
	assert.Equal(t, "Chargers", rows[1].Name)
	assert.Equal(t, "Stands", rows[2].Name)

	found, err := s.SearchCategories(ctx, customer, "Ca")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Cases", found[0].Name)
}

func TestCategoryPermissions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	created, err := s.CreateCategory(ctx, admin, CategoryForm{Name: "Audio"})
	require.NoError(t, err)

	var denied domain.PermissionDeniedError
	_, err = s.CreateCategory(ctx, customer, CategoryForm{Name: "Nope"})
	require.True(t, errors.As(err, &denied))

	err = s.UpdateCategory(ctx, staff, created.ID, CategoryForm{Name: "Audio Gear"})
	require.True(t, errors.As(err, &denied), "update is admin only")

	err = s.DeleteCategory(ctx, staff, created.ID)
	require.True(t, errors.As(err, &denied), "delete is admin only")

	_, err = s.ListCategories(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func productForm(code, name string, price float64, qty int) ProductForm {
	return ProductForm{
		CategoryID: 1,
		Code:       code,
		Name:       name,
		Price:      decimal.NewFromFloat(price),
		Quantity:   qty,
	}
}

func TestProductDuplicateCode(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	first, err := s.CreateProduct(ctx, admin, productForm("USB-C-1M", "USB-C Cable 1m", 9.99, 10))
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, admin, productForm("USB-C-1M", "Another cable", 7.99, 5))
	var dup domain.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "code", dup.Field)
	assert.Equal(t, "USB-C-1M", dup.Value)

	// Updating a product to its own code is not a conflict.
	err = s.UpdateProduct(ctx, admin, first.ID, productForm("USB-C-1M", "USB-C Cable 1m braided", 10.99, 10))
	require.NoError(t, err)

	second, err := s.CreateProduct(ctx, admin, productForm("USB-C-2M", "USB-C Cable 2m", 12.99, 10))
	require.NoError(t, err)
	err = s.UpdateProduct(ctx, admin, second.ID, productForm("USB-C-1M", "clash", 12.99, 10))
	require.True(t, errors.As(err, &dup))
}

func TestProductUpdateDoesNotTouchStock(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, admin, productForm("CASE-11", "Phone case", 14.5, 8))
	require.NoError(t, err)

	form := productForm("CASE-11", "Phone case v2", 15.5, 999)
	require.NoError(t, s.UpdateProduct(ctx, admin, p.ID, form))

	got, err := s.GetProduct(ctx, staff, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Phone case v2", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromFloat(15.5)))
	assert.Equal(t, 8, got.Quantity, "catalog update must not change stock")
}

func TestProductSearchMatchesNameAndCode(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateProduct(ctx, admin, productForm("HDMI-2", "HDMI Cable", 6, 4))
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, admin, productForm("STAND-1", "Laptop stand", 25, 2))
	require.NoError(t, err)

	byName, err := s.SearchProducts(ctx, customer, "stand")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byCode, err := s.SearchProducts(ctx, customer, "HDMI")
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, "HDMI Cable", byCode[0].Name)
}

func TestAdjustStock(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, admin, productForm("MOUSE-1", "Wireless mouse", 19, 3))
	require.NoError(t, err)

	require.NoError(t, s.AdjustStock(ctx, admin, p.ID, 5))
	got, err := s.GetProduct(ctx, admin, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	err = s.AdjustStock(ctx, admin, p.ID, -9)
	var short domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	got, _ = s.GetProduct(ctx, admin, p.ID)
	assert.Equal(t, 8, got.Quantity)
}

func TestLowStock(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateProduct(ctx, admin, productForm("A", "Almost out", 5, 1))
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, admin, productForm("B", "Plenty", 5, 50))
	require.NoError(t, err)

	rows, err := s.LowStock(ctx, staff, 3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Almost out", rows[0].Name)

	_, err = s.LowStock(ctx, nil, 3)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
