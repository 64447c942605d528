package catalog

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/authz"
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

// Service exposes category and product maintenance. Reads return active
// rows only; delete is a soft delete that flips the status flag.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CategoryForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (s *Service) ListCategories(ctx context.Context, who *identity.Principal) ([]domain.Category, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleCategories); err != nil {
		return nil, err
	}
	var rows []domain.Category
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	return rows, nil
}

func (s *Service) GetCategory(ctx context.Context, who *identity.Principal, id int64) (*domain.Category, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleCategories); err != nil {
		return nil, err
	}
	var row domain.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Entity: "category", ID: id}
		}
		return nil, errors.Wrap(err, "query category")
	}
	return &row, nil
}

func (s *Service) SearchCategories(ctx context.Context, who *identity.Principal, keyword string) ([]domain.Category, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleCategories); err != nil {
		return nil, err
	}
	var rows []domain.Category
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Where("name LIKE ?", "%"+keyword+"%").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "search categories")
	}
	return rows, nil
}

func (s *Service) CreateCategory(ctx context.Context, who *identity.Principal, form CategoryForm) (*domain.Category, error) {
	if err := authz.EnsureCanCreate(who, authz.ModuleCategories); err != nil {
		return nil, err
	}
	row := domain.Category{
		ID:        common.UUIDint64(),
		Name:      form.Name,
		Status:    common.ENABLED,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "insert category")
	}
	zap.L().Info("category created", zap.Int64("id", row.ID), zap.String("by", who.Username))
	return &row, nil
}

func (s *Service) UpdateCategory(ctx context.Context, who *identity.Principal, id int64, form CategoryForm) error {
	if err := authz.EnsureCanUpdate(who, authz.ModuleCategories); err != nil {
		return err
	}
	if _, err := s.GetCategory(ctx, who, id); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"name":       form.Name,
		"updated_at": time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "update category")
	}
	return nil
}

// DeleteCategory disables the category; existing products keep their
// reference.
func (s *Service) DeleteCategory(ctx context.Context, who *identity.Principal, id int64) error {
	if err := authz.EnsureCanDelete(who, authz.ModuleCategories); err != nil {
		return err
	}
	if _, err := s.GetCategory(ctx, who, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&domain.Category{}).Where("id = ?", id).
		Update("status", common.DISABLED).Error; err != nil {
		return errors.Wrap(err, "disable category")
	}
	zap.L().Info("category disabled", zap.Int64("id", id), zap.String("by", who.Username))
	return nil
}
