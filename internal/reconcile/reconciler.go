// Package reconcile joins cleaned orders against the product and
// customer reference tables and attaches the returned-order flag. The
// output is the skeleton of the fact table; financial derivation
// happens afterwards in the derive package.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"bizpulse/internal/errors"
	"bizpulse/pkg/contracts/domain"
)

// Result holds the joined fact rows plus the referential-integrity
// counters the KPI table must surface.
type Result struct {
	Rows            []domain.EnrichedOrder
	OrphanProducts  int
	OrphanCustomers int
}

// Reconciler performs the many-to-one joins of the pipeline.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Join builds one EnrichedOrder per order. Every order refers to at most
// one product and one customer; a duplicated key in either reference
// table breaks that contract and fails the run with an integrity error
// rather than silently duplicating fact rows. Orders whose references
// have no match keep empty joined fields and are counted as orphans, not
// dropped.
func (r *Reconciler) Join(
	ctx context.Context,
	orders []domain.Order,
	products []domain.Product,
	customers []domain.Customer,
	returns []domain.ReturnRecord,
) (*Result, error) {
	productIdx, err := indexProducts(products)
	if err != nil {
		return nil, err
	}
	customerIdx, err := indexCustomers(customers)
	if err != nil {
		return nil, err
	}

	// Returns collapse to a distinct set of order IDs; a return row
	// referencing an unknown order never creates a fact row.
	returnedIDs := lo.SliceToMap(returns, func(ret domain.ReturnRecord) (string, bool) {
		return ret.OrderID, true
	})

	result := &Result{Rows: make([]domain.EnrichedOrder, 0, len(orders))}

	for _, order := range orders {
		row := domain.EnrichedOrder{
			Order:      order,
			IsReturned: returnedIDs[order.OrderID],
		}

		if product, ok := productIdx[order.ProductID]; ok {
			row.ProductName = product.Name
			row.Category = product.Category
			row.Supplier = product.Supplier
			row.Cost = product.Cost
			row.TaxRate = product.TaxRate
			row.HasProduct = true
		} else {
			result.OrphanProducts++
		}

		if customer, ok := customerIdx[order.CustomerID]; ok {
			row.CustomerName = customer.Name
			row.City = customer.City
			row.Region = customer.Region
			row.Segment = customer.Segment
			row.HasCustomer = true
		} else {
			result.OrphanCustomers++
		}

		result.Rows = append(result.Rows, row)
	}

	r.logger.InfoContext(ctx, "reconciled orders",
		slog.Int("fact_rows", len(result.Rows)),
		slog.Int("orphan_products", result.OrphanProducts),
		slog.Int("orphan_customers", result.OrphanCustomers),
		slog.Int("returned_orders", len(returnedIDs)))

	return result, nil
}

// indexProducts builds the product lookup, rejecting duplicated keys.
func indexProducts(products []domain.Product) (map[string]domain.Product, error) {
	idx := make(map[string]domain.Product, len(products))
	for _, p := range products {
		if _, dup := idx[p.ProductID]; dup {
			return nil, errors.NewIntegrityError(
				fmt.Sprintf("duplicate product_id %q in Products sheet", p.ProductID), nil).
				WithContext("product_id", p.ProductID)
		}
		idx[p.ProductID] = p
	}
	return idx, nil
}

// indexCustomers builds the customer lookup, rejecting duplicated keys.
func indexCustomers(customers []domain.Customer) (map[string]domain.Customer, error) {
	idx := make(map[string]domain.Customer, len(customers))
	for _, c := range customers {
		if _, dup := idx[c.CustomerID]; dup {
			return nil, errors.NewIntegrityError(
				fmt.Sprintf("duplicate customer_id %q in Customers sheet", c.CustomerID), nil).
				WithContext("customer_id", c.CustomerID)
		}
		idx[c.CustomerID] = c
	}
	return idx, nil
}
