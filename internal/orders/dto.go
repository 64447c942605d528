package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkInCustomerName is shown on orders that carry no customer reference.
const WalkInCustomerName = "Walk-in"

// OrderLineInput is one proposed product/quantity/price line. UnitPrice is
// the point-in-time price snapshot supplied by the caller; it is not
// re-read from the catalog.
type OrderLineInput struct {
	ProductID int64           `json:"product_id,string" validate:"required"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderProposal is the input to Create.
type OrderProposal struct {
	CustomerID *int64           `json:"customer_id,string,omitempty"`
	Note       string           `json:"note" validate:"max=500"`
	Lines      []OrderLineInput `json:"lines"`
}

// OrderRevision is the input to Update: the revised line set replaces the
// order's current lines wholesale.
type OrderRevision struct {
	OrderID    int64            `json:"order_id,string" validate:"required"`
	CustomerID *int64           `json:"customer_id,string,omitempty"`
	Note       string           `json:"note" validate:"max=500"`
	Lines      []OrderLineInput `json:"lines"`
}

// OrderLineView is the flattened, join-resolved view of one order line.
type OrderLineView struct {
	LineID      int64           `json:"line_id,string"`
	ProductID   int64           `json:"product_id,string"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderView is the read model handed to the presentation layer: the order
// plus customer and creator display names and resolved product names, so no
// caller ever performs its own joins.
type OrderView struct {
	OrderID       int64           `json:"order_id,string"`
	CustomerID    *int64          `json:"customer_id,string,omitempty"`
	CustomerName  string          `json:"customer_name"`
	Note          string          `json:"note"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
	Lines         []OrderLineView `json:"lines"`
	TotalQuantity int             `json:"total_quantity"`
}
