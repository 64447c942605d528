package app

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "shopd@2024"

	var user domain.User
	err := a.gormDB.Where("username = ?", superUsername).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(err))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Password:  string(hashed),
			Role:      string(identity.RoleAdmin),
			Realname:  "administrator",
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(user.Password) == ""
	resetRole := user.Role != string(identity.RoleAdmin)
	resetStatus := !strings.EqualFold(user.Status, common.ENABLED)

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(err))
			return
		}
		updates["password"] = string(hashed)
	}
	if resetRole {
		updates["role"] = string(identity.RoleAdmin)
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusEnabled", resetStatus))
}

// defaultSettings are the runtime knobs created on first boot.
var defaultSettings = []domain.SysConfig{
	{Sort: 1, Type: "system", Name: "LowStockThreshold", Value: "5", Remark: "Products at or under this quantity are flagged by the low-stock scan"},
	{Sort: 2, Type: "system", Name: "AuditRetentionDays", Value: "90", Remark: "Days to keep operation log rows before the daily purge"},
	{Sort: 3, Type: "system", Name: "StoreName", Value: "Shop Accessories", Remark: "Display name used in exports"},
}

func (a *Application) checkSettings() {
	for _, item := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", item.Type, item.Name).
			Count(&count)
		if count == 0 {
			item.ID = common.UUIDint64()
			a.gormDB.Create(&item)
			zap.L().Info("initialized config",
				zap.String("key", item.Type+"."+item.Name),
				zap.String("default", item.Value))
		}
	}
}

// checkCategories seeds a starter category set
func (a *Application) checkCategories() {
	defaultCategories := []string{"Cables", "Cases", "Chargers", "Audio", "Stands"}

	for _, name := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).Where("name = ?", name).Count(&count)
		if count == 0 {
			if err := a.gormDB.Create(&domain.Category{
				ID:     common.UUIDint64(),
				Name:   name,
				Status: common.ENABLED,
			}).Error; err != nil {
				zap.L().Error("failed to create default category", zap.String("name", name), zap.Error(err))
			} else {
				zap.L().Info("initialized default category", zap.String("name", name))
			}
		}
	}
}

// checkProducts seeds demo catalog items
func (a *Application) checkProducts() {
	var cables domain.Category
	if err := a.gormDB.Where("name = ?", "Cables").First(&cables).Error; err != nil {
		return
	}

	defaultProducts := []domain.Product{
		{Code: "USB-C-1M", Name: "USB-C Cable 1m", Price: decimal.NewFromFloat(9.99), Quantity: 100},
		{Code: "USB-C-2M", Name: "USB-C Cable 2m", Price: decimal.NewFromFloat(12.99), Quantity: 60},
		{Code: "HDMI-2M", Name: "HDMI Cable 2m", Price: decimal.NewFromFloat(14.50), Quantity: 40},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("code = ?", p.Code).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.CategoryID = cables.ID
			p.Status = common.ENABLED
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("code", p.Code), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("code", p.Code))
			}
		}
	}
}
