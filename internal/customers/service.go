package customers

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

// Service maintains the customer directory. Customer-role principals can
// read their own record only; the directory itself is Staff/Admin territory.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CustomerForm struct {
	Name  string `json:"name" validate:"required,max=150"`
	Phone string `json:"phone" validate:"max=30"`
	Email string `json:"email" validate:"omitempty,email,max=200"`
}

func (s *Service) List(ctx context.Context, who *identity.Principal) ([]domain.Customer, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleCustomers); err != nil {
		return nil, err
	}
	var rows []domain.Customer
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query customers")
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, who *identity.Principal, id int64) (*domain.Customer, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleCustomers); err != nil {
		return nil, err
	}
	if err := authz.EnsureSelfOwnership(who, id); err != nil {
		return nil, err
	}
	var row domain.Customer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Entity: "customer", ID: id}
		}
		return nil, errors.Wrap(err, "query customer")
	}
	return &row, nil
}

// Search matches the keyword against name, phone and email.
func (s *Service) Search(ctx context.Context, who *identity.Principal, keyword string) ([]domain.Customer, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleCustomers); err != nil {
		return nil, err
	}
	var rows []domain.Customer
	like := "%" + keyword + "%"
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "search customers")
	}
	return rows, nil
}

func (s *Service) Create(ctx context.Context, who *identity.Principal, form CustomerForm) (*domain.Customer, error) {
	if err := authz.EnsureCanCreate(who, authz.ModuleCustomers); err != nil {
		return nil, err
	}
	row := domain.Customer{
		ID:        common.UUIDint64(),
		Name:      form.Name,
		Phone:     form.Phone,
		Email:     form.Email,
		Status:    common.ENABLED,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "insert customer")
	}
	zap.L().Info("customer created", zap.Int64("id", row.ID), zap.String("by", who.Username))
	return &row, nil
}

func (s *Service) Update(ctx context.Context, who *identity.Principal, id int64, form CustomerForm) error {
	if err := authz.EnsureCanUpdate(who, authz.ModuleCustomers); err != nil {
		return err
	}
	var row domain.Customer
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError{Entity: "customer", ID: id}
		}
		return errors.Wrap(err, "query customer")
	}
	updates := map[string]interface{}{
		"name":       form.Name,
		"phone":      form.Phone,
		"email":      form.Email,
		"updated_at": time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "update customer")
	}
	return nil
}

// Delete disables the customer. Past orders keep their reference.
func (s *Service) Delete(ctx context.Context, who *identity.Principal, id int64) error {
	if err := authz.EnsureCanDelete(who, authz.ModuleCustomers); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", id).
		Update("status", common.DISABLED)
	if result.Error != nil {
		return errors.Wrap(result.Error, "disable customer")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Entity: "customer", ID: id}
	}
	zap.L().Info("customer disabled", zap.Int64("id", id), zap.String("by", who.Username))
	return nil
}
