package orders

import (
	"context"

	"github.com/pkg/errors"

	"github.com/openretail/shopd/internal/domain"
)

// assemble builds flattened views for a batch of orders with one query per
// related table: lines, products, customers and creators are fetched by id
// set, never navigated lazily.
func (s *Service) assemble(ctx context.Context, rows []domain.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}

	orderIDs := make([]int64, 0, len(rows))
	customerIDs := make([]int64, 0, len(rows))
	creatorIDs := make([]int64, 0, len(rows))
	for _, o := range rows {
		orderIDs = append(orderIDs, o.ID)
		if o.CustomerID != nil {
			customerIDs = append(customerIDs, *o.CustomerID)
		}
		creatorIDs = append(creatorIDs, o.CreatedByUserID)
	}

	var lines []domain.OrderLine
	if err := s.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("id").Find(&lines).Error; err != nil {
		return nil, errors.Wrap(err, "query order lines")
	}
	productIDs := make([]int64, 0, len(lines))
	for _, ln := range lines {
		productIDs = append(productIDs, ln.ProductID)
	}

	products := map[int64]domain.Product{}
	if len(productIDs) > 0 {
		var list []domain.Product
		if err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&list).Error; err != nil {
			return nil, errors.Wrap(err, "query products")
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}

	customers := map[int64]domain.Customer{}
	if len(customerIDs) > 0 {
		var list []domain.Customer
		if err := s.db.WithContext(ctx).Where("id IN ?", customerIDs).Find(&list).Error; err != nil {
			return nil, errors.Wrap(err, "query customers")
		}
		for _, cu := range list {
			customers[cu.ID] = cu
		}
	}

	creators := map[int64]domain.User{}
	if len(creatorIDs) > 0 {
		var list []domain.User
		if err := s.db.WithContext(ctx).Where("id IN ?", creatorIDs).Find(&list).Error; err != nil {
			return nil, errors.Wrap(err, "query users")
		}
		for _, u := range list {
			creators[u.ID] = u
		}
	}

	linesByOrder := map[int64][]domain.OrderLine{}
	for _, ln := range lines {
		linesByOrder[ln.OrderID] = append(linesByOrder[ln.OrderID], ln)
	}

	for _, o := range rows {
		view := OrderView{
			OrderID:      o.ID,
			CustomerID:   o.CustomerID,
			CustomerName: WalkInCustomerName,
			Note:         o.Note,
			TotalAmount:  o.TotalAmount,
			CreatedAt:    o.CreatedAt,
			CreatedBy:    creators[o.CreatedByUserID].Username,
		}
		if o.CustomerID != nil {
			if cu, ok := customers[*o.CustomerID]; ok {
				view.CustomerName = cu.Name
			}
		}
		for _, ln := range linesByOrder[o.ID] {
			product := products[ln.ProductID]
			view.Lines = append(view.Lines, OrderLineView{
				LineID:      ln.ID,
				ProductID:   ln.ProductID,
				ProductName: product.Name,
				ProductCode: product.Code,
				UnitPrice:   ln.UnitPrice,
				Quantity:    ln.Quantity,
				LineTotal:   ln.LineTotal,
			})
			view.TotalQuantity += ln.Quantity
		}
		views = append(views, view)
	}
	return views, nil
}
