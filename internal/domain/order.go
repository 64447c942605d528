package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a sales order header. TotalAmount always equals the sum of its
// lines' totals; CustomerID is nil for walk-in sales.
type Order struct {
	ID              int64           `gorm:"primaryKey" json:"id,string"`
	CustomerID      *int64          `gorm:"index" json:"customer_id,string,omitempty"`
	CreatedByUserID int64           `gorm:"index" json:"created_by_user_id,string"`
	Note            string          `gorm:"size:500" json:"note"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// OrderLine is one product entry within an order. UnitPrice is a snapshot
// taken at order time and does not follow later catalog price changes.
type OrderLine struct {
	ID        int64           `gorm:"primaryKey" json:"id,string"`
	OrderID   int64           `gorm:"index" json:"order_id,string"`
	ProductID int64           `gorm:"index" json:"product_id,string"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2)" json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,2)" json:"line_total"`
}

// TableName Specify table name
func (OrderLine) TableName() string {
	return "order_lines"
}
