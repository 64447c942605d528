package catalog

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/authz"
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

type ProductForm struct {
	CategoryID  int64           `json:"category_id,string" validate:"required"`
	Code        string          `json:"code" validate:"required,max=50"`
	Name        string          `json:"name" validate:"required,max=200"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	Description string          `json:"description" validate:"max=1000"`
}

func (s *Service) ListProducts(ctx context.Context, who *identity.Principal) ([]domain.Product, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleProducts); err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	return rows, nil
}

func (s *Service) GetProduct(ctx context.Context, who *identity.Principal, id int64) (*domain.Product, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleProducts); err != nil {
		return nil, err
	}
	var row domain.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Entity: "product", ID: id}
		}
		return nil, errors.Wrap(err, "query product")
	}
	return &row, nil
}

// SearchProducts matches the keyword against name and code.
func (s *Service) SearchProducts(ctx context.Context, who *identity.Principal, keyword string) ([]domain.Product, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleProducts); err != nil {
		return nil, err
	}
	var rows []domain.Product
	like := "%" + keyword + "%"
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Where("name LIKE ? OR code LIKE ?", like, like).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return rows, nil
}

// ListProductsByCategory returns the active products of one category.
func (s *Service) ListProductsByCategory(ctx context.Context, who *identity.Principal, categoryID int64) ([]domain.Product, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleProducts); err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := s.db.WithContext(ctx).
		Where("status = ? and category_id = ?", common.ENABLED, categoryID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query category products")
	}
	return rows, nil
}

func (s *Service) CreateProduct(ctx context.Context, who *identity.Principal, form ProductForm) (*domain.Product, error) {
	if err := authz.EnsureCanCreate(who, authz.ModuleProducts); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, form.Code, 0); err != nil {
		return nil, err
	}
	row := domain.Product{
		ID:          common.UUIDint64(),
		CategoryID:  form.CategoryID,
		Code:        form.Code,
		Name:        form.Name,
		Price:       form.Price,
		Quantity:    form.Quantity,
		Description: form.Description,
		Status:      common.ENABLED,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "insert product")
	}
	zap.L().Info("product created",
		zap.Int64("id", row.ID),
		zap.String("code", row.Code),
		zap.String("by", who.Username))
	return &row, nil
}

// UpdateProduct rewrites the catalog fields. Quantity is deliberately not
// part of the form: stock moves only through order transactions.
func (s *Service) UpdateProduct(ctx context.Context, who *identity.Principal, id int64, form ProductForm) error {
	if err := authz.EnsureCanUpdate(who, authz.ModuleProducts); err != nil {
		return err
	}
	if _, err := s.GetProduct(ctx, who, id); err != nil {
		return err
	}
	if err := s.ensureCodeFree(ctx, form.Code, id); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"category_id": form.CategoryID,
		"code":        form.Code,
		"name":        form.Name,
		"price":       form.Price,
		"description": form.Description,
		"updated_at":  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "update product")
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, who *identity.Principal, id int64) error {
	if err := authz.EnsureCanDelete(who, authz.ModuleProducts); err != nil {
		return err
	}
	if _, err := s.GetProduct(ctx, who, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).
		Update("status", common.DISABLED).Error; err != nil {
		return errors.Wrap(err, "disable product")
	}
	zap.L().Info("product disabled", zap.Int64("id", id), zap.String("by", who.Username))
	return nil
}

// AdjustStock applies a manual correction outside the order flow, for
// stocktake fixes. Admin only; the result may not go negative.
func (s *Service) AdjustStock(ctx context.Context, who *identity.Principal, id int64, delta int) error {
	if err := authz.EnsureCanUpdate(who, authz.ModuleProducts); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.Product
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Entity: "product", ID: id}
			}
			return errors.Wrap(err, "query product")
		}
		if row.Quantity+delta < 0 {
			return domain.InsufficientStockError{
				ProductID:   row.ID,
				ProductName: row.Name,
				Available:   row.Quantity,
				Requested:   -delta,
			}
		}
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).
			Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
			return errors.Wrap(err, "adjust stock")
		}
		return nil
	})
}

// LowStock returns active products at or under the threshold.
func (s *Service) LowStock(ctx context.Context, who *identity.Principal, threshold int) ([]domain.Product, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleProducts); err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := s.db.WithContext(ctx).
		Where("status = ? and quantity <= ?", common.ENABLED, threshold).
		Order("quantity ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query low stock")
	}
	return rows, nil
}

func (s *Service) ensureCodeFree(ctx context.Context, code string, selfID int64) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&domain.Product{}).Where("code = ?", code)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "check product code")
	}
	if count > 0 {
		return domain.DuplicateKeyError{Field: "code", Value: code}
	}
	return nil
}
