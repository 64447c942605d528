package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/domain"
)

const settingsCacheTTL = 30 * time.Second

// SettingsManager reads runtime knobs from the sys_config table with a
// short-lived cache so hot paths avoid a query per lookup.
type SettingsManager struct {
	db       *gorm.DB
	mu       sync.RWMutex
	cache    map[string]string
	cachedAt time.Time
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: map[string]string{}}
}

func (m *SettingsManager) value(category, name string) string {
	m.mu.RLock()
	fresh := time.Since(m.cachedAt) < settingsCacheTTL
	v, ok := m.cache[category+"."+name]
	m.mu.RUnlock()
	if fresh && ok {
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.cachedAt) >= settingsCacheTTL {
		var rows []domain.SysConfig
		if err := m.db.Find(&rows).Error; err == nil {
			m.cache = make(map[string]string, len(rows))
			for _, row := range rows {
				m.cache[row.Type+"."+row.Name] = row.Value
			}
			m.cachedAt = time.Now()
		}
	}
	return m.cache[category+"."+name]
}

func (m *SettingsManager) GetString(category, name string) string {
	return m.value(category, name)
}

func (m *SettingsManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.value(category, name))
}

func (m *SettingsManager) GetInt(category, name string) int {
	return cast.ToInt(m.value(category, name))
}

func (m *SettingsManager) GetBool(category, name string) bool {
	return cast.ToBool(m.value(category, name))
}

// Set persists a knob and drops the cache.
func (m *SettingsManager) Set(category, name, value string) error {
	err := m.db.Model(&domain.SysConfig{}).
		Where("type = ? and name = ?", category, name).
		Update("value", value).Error
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cachedAt = time.Time{}
	m.mu.Unlock()
	return nil
}
