package users

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/authz"
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

// Service manages operator accounts. The whole module is Admin-only,
// including reads. Account invariants: usernames are unique, Customer
// accounts must link a customer record, Admin and Staff accounts must not.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type UserForm struct {
	Username   string `json:"username" validate:"required,max=50"`
	Password   string `json:"password" validate:"omitempty,min=6,max=100"`
	Role       string `json:"role" validate:"required"`
	CustomerID *int64 `json:"customer_id,string,omitempty"`
	Realname   string `json:"realname" validate:"max=150"`
}

func (s *Service) List(ctx context.Context, who *identity.Principal) ([]domain.User, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleUsers); err != nil {
		return nil, err
	}
	var rows []domain.User
	if err := s.db.WithContext(ctx).
		Where("status = ?", common.ENABLED).
		Order("username ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query users")
	}
	return rows, nil
}

func (s *Service) Get(ctx context.Context, who *identity.Principal, id int64) (*domain.User, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleUsers); err != nil {
		return nil, err
	}
	var row domain.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Entity: "user", ID: id}
		}
		return nil, errors.Wrap(err, "query user")
	}
	return &row, nil
}

func (s *Service) Create(ctx context.Context, who *identity.Principal, form UserForm) (*domain.User, error) {
	if err := authz.EnsureCanCreate(who, authz.ModuleUsers); err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(form.Role)
	if err != nil {
		return nil, domain.InvalidFieldError{Field: "role", Reason: err.Error()}
	}
	if err := checkRoleLink(role, form.CustomerID); err != nil {
		return nil, err
	}
	if form.Password == "" {
		return nil, domain.InvalidFieldError{Field: "password", Reason: "required"}
	}
	if err := s.ensureUsernameFree(ctx, form.Username, 0); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	row := domain.User{
		ID:         common.UUIDint64(),
		Username:   form.Username,
		Password:   string(hash),
		Role:       string(role),
		CustomerID: form.CustomerID,
		Realname:   form.Realname,
		Status:     common.ENABLED,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "insert user")
	}
	zap.L().Info("user created",
		zap.Int64("id", row.ID),
		zap.String("username", row.Username),
		zap.String("role", row.Role),
		zap.String("by", who.Username))
	return &row, nil
}

// Update rewrites the account. An empty form password keeps the stored hash.
func (s *Service) Update(ctx context.Context, who *identity.Principal, id int64, form UserForm) error {
	if err := authz.EnsureCanUpdate(who, authz.ModuleUsers); err != nil {
		return err
	}
	role, err := identity.ParseRole(form.Role)
	if err != nil {
		return domain.InvalidFieldError{Field: "role", Reason: err.Error()}
	}
	if err := checkRoleLink(role, form.CustomerID); err != nil {
		return err
	}
	if _, err := s.Get(ctx, who, id); err != nil {
		return err
	}
	if err := s.ensureUsernameFree(ctx, form.Username, id); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"username":    form.Username,
		"role":        string(role),
		"customer_id": form.CustomerID,
		"realname":    form.Realname,
		"updated_at":  time.Now().UTC(),
	}
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hash password")
		}
		updates["password"] = string(hash)
	}
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "update user")
	}
	return nil
}

// Delete disables the account. An admin cannot disable itself.
func (s *Service) Delete(ctx context.Context, who *identity.Principal, id int64) error {
	if err := authz.EnsureCanDelete(who, authz.ModuleUsers); err != nil {
		return err
	}
	if who.UserID == id {
		return domain.InvalidFieldError{Field: "id", Reason: "cannot delete your own account"}
	}
	result := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Update("status", common.DISABLED)
	if result.Error != nil {
		return errors.Wrap(result.Error, "disable user")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Entity: "user", ID: id}
	}
	zap.L().Info("user disabled", zap.Int64("id", id), zap.String("by", who.Username))
	return nil
}

func checkRoleLink(role identity.Role, customerID *int64) error {
	if role == identity.RoleCustomer && customerID == nil {
		return domain.InvalidFieldError{Field: "customer_id", Reason: "customer accounts must link a customer record"}
	}
	if role != identity.RoleCustomer && customerID != nil {
		return domain.InvalidFieldError{Field: "customer_id", Reason: "only customer accounts may link a customer record"}
	}
	return nil
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string, selfID int64) error {
	var count int64
	q := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "check username")
	}
	if count > 0 {
		return domain.DuplicateKeyError{Field: "username", Value: username}
	}
	return nil
}
