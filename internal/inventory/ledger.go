package inventory

import (
	goerrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openretail/shopd/internal/domain"
)

// StockLine is one product/quantity pair to reserve or release.
type StockLine struct {
	ProductID int64
	Quantity  int
}

// Ledger reads and adjusts product stock inside a caller-supplied
// transaction. Every product row it touches is locked FOR UPDATE for the
// life of that transaction, so two concurrent orders competing for the same
// stock serialize instead of both passing validation and driving the count
// negative. The lock clause is skipped on sqlite, whose single-writer model
// already serializes writers (and which rejects the FOR UPDATE syntax).
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// LockProduct loads a product row under a row lock held until tx ends.
func (l *Ledger) LockProduct(tx *gorm.DB, productID int64) (*domain.Product, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p domain.Product
	if err := q.Where("id = ?", productID).First(&p).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ProductNotFoundError{ProductID: productID}
		}
		return nil, errors.Wrap(err, "lock product")
	}
	return &p, nil
}

// Adjust shifts a product's stock count by delta (negative to consume).
func (l *Ledger) Adjust(tx *gorm.DB, productID int64, delta int) error {
	err := tx.Model(&domain.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
	return errors.Wrap(err, "adjust stock")
}

// Reserve validates every line first and only then decrements stock, so a
// failure on any line leaves no product touched. Lines are processed in
// input order.
func (l *Ledger) Reserve(tx *gorm.DB, lines []StockLine) error {
	for _, ln := range lines {
		product, err := l.LockProduct(tx, ln.ProductID)
		if err != nil {
			return err
		}
		if ln.Quantity <= 0 {
			return domain.InvalidQuantityError{ProductID: ln.ProductID, Quantity: ln.Quantity}
		}
		if product.Quantity < ln.Quantity {
			return domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   ln.Quantity,
			}
		}
	}
	for _, ln := range lines {
		if err := l.Adjust(tx, ln.ProductID, -ln.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Release restores stock previously consumed by the given lines. Missing
// products are skipped: a line whose product was since removed has nothing
// left to restore.
func (l *Ledger) Release(tx *gorm.DB, lines []StockLine) error {
	for _, ln := range lines {
		_, err := l.LockProduct(tx, ln.ProductID)
		if err != nil {
			var missing domain.ProductNotFoundError
			if goerrors.As(err, &missing) {
				continue
			}
			return err
		}
		if err := l.Adjust(tx, ln.ProductID, ln.Quantity); err != nil {
			return err
		}
	}
	return nil
}
