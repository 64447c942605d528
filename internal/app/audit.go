package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openretail/shopd/internal/auth"
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/orders"
	"github.com/openretail/shopd/pkg/common"
	"github.com/openretail/shopd/pkg/metrics"
)

// subscribeAuditLog records order lifecycle events and logins as operation
// log rows. Subscribers run after the owning transaction committed; a
// failed audit write never affects the operation itself.
func (a *Application) subscribeAuditLog() {
	subscribe := func(topic, action, counter string, describe func(id int64) string) {
		err := a.bus.Subscribe(topic, func(username string, id int64) {
			a.writeOpLog(username, action, describe(id))
			metrics.CounterInc(counter)
		})
		if err != nil {
			zap.L().Error("audit subscription failed", zap.String("topic", topic), zap.Error(err))
		}
	}

	subscribe(orders.TopicOrderCreated, "order.create", "orders_created", func(id int64) string {
		return fmt.Sprintf("created order %d", id)
	})
	subscribe(orders.TopicOrderUpdated, "order.update", "orders_updated", func(id int64) string {
		return fmt.Sprintf("updated order %d", id)
	})
	subscribe(orders.TopicOrderDeleted, "order.delete", "orders_deleted", func(id int64) string {
		return fmt.Sprintf("deleted order %d", id)
	})
	subscribe(auth.TopicLogin, "auth.login", "logins", func(id int64) string {
		return fmt.Sprintf("user %d logged in", id)
	})
}

func (a *Application) writeOpLog(username, action, desc string) {
	err := a.gormDB.Create(&domain.SysOpLog{
		ID:        common.UUIDint64(),
		Username:  username,
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}).Error
	if err != nil {
		zap.L().Error("write op log failed", zap.String("action", action), zap.Error(err))
	}
}
