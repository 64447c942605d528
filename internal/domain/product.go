package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Quantity is the on-hand stock count and is
// mutated only by the inventory ledger inside an order transaction.
type Product struct {
	ID          int64           `gorm:"primaryKey" json:"id,string"`
	CategoryID  int64           `gorm:"index" json:"category_id,string"`
	Code        string          `gorm:"size:50;uniqueIndex" json:"code"`
	Name        string          `gorm:"size:200;index" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2)" json:"price"`
	Quantity    int             `json:"quantity"`
	Description string          `gorm:"size:1000" json:"description"`
	Status      string          `gorm:"size:20;index;default:'enabled'" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}
