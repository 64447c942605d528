package orders

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/openretail/shopd/internal/authz"
	"github.com/openretail/shopd/internal/domain"
	"github.com/openretail/shopd/internal/identity"
	"github.com/openretail/shopd/internal/inventory"
	"github.com/openretail/shopd/pkg/common"
)

// Event topics published after a successful commit.
const (
	TopicOrderCreated = "order.created"
	TopicOrderUpdated = "order.updated"
	TopicOrderDeleted = "order.deleted"
)

// Service is the order transaction engine. Each mutating operation owns
// exactly one database transaction: stock deltas, order rows and line rows
// commit together or not at all.
type Service struct {
	db     *gorm.DB
	ledger *inventory.Ledger
	bus    EventBus.Bus
}

func NewService(db *gorm.DB, ledger *inventory.Ledger, bus EventBus.Bus) *Service {
	return &Service{db: db, ledger: ledger, bus: bus}
}

// List returns every order, newest first. Customer principals only see
// their own orders.
func (s *Service) List(ctx context.Context, who *identity.Principal) ([]OrderView, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleOrders); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if authz.IsCustomer(who) {
		if who.CustomerID == nil {
			return []OrderView{}, nil
		}
		q = q.Where("customer_id = ?", *who.CustomerID)
	}
	var rows []domain.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	return s.assemble(ctx, rows)
}

// ListByCustomer returns one customer's orders, newest first. Customer
// principals may only list their own.
func (s *Service) ListByCustomer(ctx context.Context, who *identity.Principal, customerID int64) ([]OrderView, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleOrders); err != nil {
		return nil, err
	}
	if err := authz.EnsureSelfOwnership(who, customerID); err != nil {
		return nil, err
	}
	var rows []domain.Order
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query customer orders")
	}
	return s.assemble(ctx, rows)
}

// Get returns a single order view.
func (s *Service) Get(ctx context.Context, who *identity.Principal, id int64) (*OrderView, error) {
	if err := authz.EnsureCanRead(who, authz.ModuleOrders); err != nil {
		return nil, err
	}
	var order domain.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Entity: "order", ID: id}
		}
		return nil, errors.Wrap(err, "query order")
	}
	if authz.IsCustomer(who) {
		var owner int64
		if order.CustomerID != nil {
			owner = *order.CustomerID
		}
		if err := authz.EnsureSelfOwnership(who, owner); err != nil {
			return nil, err
		}
	}
	views, err := s.assemble(ctx, []domain.Order{order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create validates the proposal, consumes stock and persists the order and
// its lines in one transaction. The total is computed from the proposal's
// unit-price snapshots, not from current catalog prices.
func (s *Service) Create(ctx context.Context, who *identity.Principal, proposal OrderProposal) (*OrderView, error) {
	if err := authz.EnsureCanCreate(who, authz.ModuleOrders); err != nil {
		return nil, err
	}
	if len(proposal.Lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	orderID := common.UUIDint64()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.Reserve(tx, stockLines(proposal.Lines)); err != nil {
			return err
		}
		order := domain.Order{
			ID:              orderID,
			CustomerID:      proposal.CustomerID,
			CreatedByUserID: who.UserID,
			Note:            proposal.Note,
			TotalAmount:     linesTotal(proposal.Lines),
			CreatedAt:       time.Now().UTC(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return errors.Wrap(err, "insert order")
		}
		return insertLines(tx, orderID, proposal.Lines)
	})
	if err != nil {
		return nil, err
	}

	s.publish(TopicOrderCreated, who, orderID)
	zap.L().Info("order created",
		zap.Int64("order_id", orderID),
		zap.String("created_by", who.Username),
		zap.Int("lines", len(proposal.Lines)))

	return s.view(ctx, orderID)
}

// Update replaces the order's line set. The old lines' stock is released
// before the revised lines are validated, so a revision may re-request
// stock the order itself was holding.
func (s *Service) Update(ctx context.Context, who *identity.Principal, rev OrderRevision) error {
	if err := authz.EnsureCanUpdate(who, authz.ModuleOrders); err != nil {
		return err
	}
	if len(rev.Lines) == 0 {
		return domain.ErrEmptyOrder
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.Where("id = ?", rev.OrderID).First(&order).Error; err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Entity: "order", ID: rev.OrderID}
			}
			return errors.Wrap(err, "query order")
		}

		var oldLines []domain.OrderLine
		if err := tx.Where("order_id = ?", order.ID).Find(&oldLines).Error; err != nil {
			return errors.Wrap(err, "query order lines")
		}
		release := make([]inventory.StockLine, 0, len(oldLines))
		for _, ln := range oldLines {
			release = append(release, inventory.StockLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
		}
		if err := s.ledger.Release(tx, release); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&domain.OrderLine{}).Error; err != nil {
			return errors.Wrap(err, "delete order lines")
		}

		if err := s.ledger.Reserve(tx, stockLines(rev.Lines)); err != nil {
			return err
		}
		updates := map[string]interface{}{
			"customer_id":  rev.CustomerID,
			"note":         rev.Note,
			"total_amount": linesTotal(rev.Lines),
			"updated_at":   time.Now().UTC(),
		}
		if err := tx.Model(&domain.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update order")
		}
		return insertLines(tx, order.ID, rev.Lines)
	})
	if err != nil {
		return err
	}

	s.publish(TopicOrderUpdated, who, rev.OrderID)
	zap.L().Info("order updated",
		zap.Int64("order_id", rev.OrderID),
		zap.String("updated_by", who.Username))
	return nil
}

// Delete removes the order and its lines and reverses their stock effect.
func (s *Service) Delete(ctx context.Context, who *identity.Principal, id int64) error {
	if err := authz.EnsureCanDelete(who, authz.ModuleOrders); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Entity: "order", ID: id}
			}
			return errors.Wrap(err, "query order")
		}
		var lines []domain.OrderLine
		if err := tx.Where("order_id = ?", order.ID).Find(&lines).Error; err != nil {
			return errors.Wrap(err, "query order lines")
		}
		release := make([]inventory.StockLine, 0, len(lines))
		for _, ln := range lines {
			release = append(release, inventory.StockLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
		}
		if err := s.ledger.Release(tx, release); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&domain.OrderLine{}).Error; err != nil {
			return errors.Wrap(err, "delete order lines")
		}
		if err := tx.Where("id = ?", order.ID).Delete(&domain.Order{}).Error; err != nil {
			return errors.Wrap(err, "delete order")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(TopicOrderDeleted, who, id)
	zap.L().Info("order deleted",
		zap.Int64("order_id", id),
		zap.String("deleted_by", who.Username))
	return nil
}

func (s *Service) publish(topic string, who *identity.Principal, orderID int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, who.Username, orderID)
}

func (s *Service) view(ctx context.Context, id int64) (*OrderView, error) {
	var order domain.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	views, err := s.assemble(ctx, []domain.Order{order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func stockLines(lines []OrderLineInput) []inventory.StockLine {
	out := make([]inventory.StockLine, 0, len(lines))
	for _, ln := range lines {
		out = append(out, inventory.StockLine{ProductID: ln.ProductID, Quantity: ln.Quantity})
	}
	return out
}

func linesTotal(lines []OrderLineInput) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return total
}

func insertLines(tx *gorm.DB, orderID int64, lines []OrderLineInput) error {
	for _, ln := range lines {
		row := domain.OrderLine{
			ID:        common.UUIDint64(),
			OrderID:   orderID,
			ProductID: ln.ProductID,
			UnitPrice: ln.UnitPrice,
			Quantity:  ln.Quantity,
			LineTotal: ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity))),
		}
		if err := tx.Create(&row).Error; err != nil {
			return errors.Wrap(err, "insert order line")
		}
	}
	return nil
}
