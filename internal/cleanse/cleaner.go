// Package cleanse turns raw workbook sheets into typed, normalized
// record sets. It owns all type coercion, text normalization, row
// validity filtering, imputation, and order deduplication.
package cleanse

import (
	"context"
	"log/slog"

	"bizpulse/internal/config"
	"bizpulse/internal/stats"
	"bizpulse/internal/workbook"
	"bizpulse/pkg/contracts/domain"
)

// Cleaner normalizes and types the five raw input sheets.
type Cleaner struct {
	logger *slog.Logger
	policy config.DedupPolicy
}

// NewCleaner creates a cleaner with the given dedup policy.
func NewCleaner(logger *slog.Logger, policy config.DedupPolicy) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == "" {
		policy = config.DedupKeepFirst
	}
	return &Cleaner{logger: logger, policy: policy}
}

// OrderStats carries the aggregate counters for order cleaning. Dropped
// rows are not reported individually, but the counts are observable.
type OrderStats struct {
	InputRows         int     `json:"input_rows"`
	DroppedInvalid    int     `json:"dropped_invalid"`
	DroppedDuplicates int     `json:"dropped_duplicates"`
	ImputedPrices     int     `json:"imputed_prices"`
	ImputedDiscounts  int     `json:"imputed_discounts"`
	ClampedDiscounts  int     `json:"clamped_discounts"`
	MedianUnitPrice   float64 `json:"median_unit_price"`
}

// orderCandidate is an order row that survived the validity filter but
// may still need price imputation or deduplication.
type orderCandidate struct {
	order        domain.Order
	priceMissing bool
}

// Orders cleans the Orders sheet: type coercion, validity filtering,
// median unit-price imputation, and order_id deduplication. The median
// is computed once per run from the valid prices of this dataset and
// returned in the stats so downstream consumers can see the imputation
// reference value.
func (c *Cleaner) Orders(ctx context.Context, sheet *workbook.Sheet) ([]domain.Order, OrderStats, error) {
	st := OrderStats{InputRows: len(sheet.Rows)}

	candidates := make([]orderCandidate, 0, len(sheet.Rows))
	validPrices := make([]float64, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		orderID := sheet.Cell(row, "order_id")
		customerID := sheet.Cell(row, "customer_id")
		productID := sheet.Cell(row, "product_id")
		orderDate := ParseDate(sheet.Cell(row, "order_date"))
		qty, qtyOK := ParseInt(sheet.Cell(row, "qty"))

		// Identity fields and the order date are never imputed; a row
		// missing any of them is excluded entirely. Same for bad qty.
		if orderID == "" || customerID == "" || productID == "" || orderDate.IsZero() || !qtyOK || qty <= 0 {
			st.DroppedInvalid++
			continue
		}

		// A missing price is imputable; a negative one violates the
		// price invariant and excludes the row instead.
		price := ParseFloat(sheet.Cell(row, "unit_price"))
		priceMissing := IsMissing(price)
		if !priceMissing && price < 0 {
			st.DroppedInvalid++
			continue
		}
		if priceMissing {
			price = 0
		} else {
			validPrices = append(validPrices, price)
		}

		// Discounts outside 0..100 are clamped into range rather than
		// dropping the row.
		discount := ParseFloat(sheet.Cell(row, "discount_pct"))
		switch {
		case IsMissing(discount):
			discount = 0
			st.ImputedDiscounts++
		case discount < 0:
			discount = 0
			st.ClampedDiscounts++
		case discount > 100:
			discount = 100
			st.ClampedDiscounts++
		}

		candidates = append(candidates, orderCandidate{
			order: domain.Order{
				OrderID:     orderID,
				OrderDate:   orderDate,
				CustomerID:  customerID,
				ProductID:   productID,
				Qty:         qty,
				UnitPrice:   price,
				DiscountPct: discount,
				PaymentMode: domain.ParsePaymentMode(sheet.Cell(row, "payment_mode")),
			},
			priceMissing: priceMissing,
		})
	}

	// Impute missing unit prices with the run-wide median of valid ones.
	st.MedianUnitPrice = stats.Median(validPrices)
	for i := range candidates {
		if candidates[i].priceMissing {
			candidates[i].order.UnitPrice = st.MedianUnitPrice
			st.ImputedPrices++
		}
	}

	orders := c.dedupOrders(candidates, &st)

	c.logger.InfoContext(ctx, "cleaned orders",
		slog.Int("input_rows", st.InputRows),
		slog.Int("kept", len(orders)),
		slog.Int("dropped_invalid", st.DroppedInvalid),
		slog.Int("dropped_duplicates", st.DroppedDuplicates),
		slog.Int("imputed_prices", st.ImputedPrices),
		slog.Int("clamped_discounts", st.ClampedDiscounts),
		slog.Float64("median_unit_price", st.MedianUnitPrice))

	return orders, st, nil
}

// dedupOrders collapses rows sharing an order_id to one per the
// configured policy, preserving first-occurrence order in the output.
func (c *Cleaner) dedupOrders(candidates []orderCandidate, st *OrderStats) []domain.Order {
	seen := make(map[string]int, len(candidates))
	orders := make([]domain.Order, 0, len(candidates))

	for _, cand := range candidates {
		idx, dup := seen[cand.order.OrderID]
		if !dup {
			seen[cand.order.OrderID] = len(orders)
			orders = append(orders, cand.order)
			continue
		}

		st.DroppedDuplicates++
		if c.policy == config.DedupKeepMaxNet {
			kept := orders[idx]
			if grossValue(cand.order) > grossValue(kept) {
				orders[idx] = cand.order
			}
		}
		// DedupKeepFirst: the row already in place wins.
	}

	return orders
}

func grossValue(o domain.Order) float64 {
	return float64(o.Qty) * o.UnitPrice
}

// Products cleans the Products sheet. Rows without a product_id cannot
// join and are skipped. Missing cost and tax_rate default to 0 per the
// derivation rules.
func (c *Cleaner) Products(ctx context.Context, sheet *workbook.Sheet) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(sheet.Rows))
	skipped := 0

	for _, row := range sheet.Rows {
		productID := sheet.Cell(row, "product_id")
		if productID == "" {
			skipped++
			continue
		}

		cost := ParseFloat(sheet.Cell(row, "cost"))
		if IsMissing(cost) || cost < 0 {
			cost = 0
		}
		taxRate := ParseFloat(sheet.Cell(row, "tax_rate"))
		if IsMissing(taxRate) || taxRate < 0 {
			taxRate = 0
		}

		products = append(products, domain.Product{
			ProductID: productID,
			Name:      NormalizeText(sheet.Cell(row, "product_name")),
			Category:  NormalizeText(sheet.Cell(row, "category")),
			Supplier:  sheet.Cell(row, "supplier"),
			Cost:      cost,
			TaxRate:   taxRate,
		})
	}

	c.logger.InfoContext(ctx, "cleaned products",
		slog.Int("kept", len(products)), slog.Int("skipped", skipped))

	return products, nil
}

// Customers cleans the Customers sheet, normalizing the grouping text
// fields (city, region, segment) so values differing only in case or
// whitespace collapse to one group key.
func (c *Cleaner) Customers(ctx context.Context, sheet *workbook.Sheet) ([]domain.Customer, error) {
	customers := make([]domain.Customer, 0, len(sheet.Rows))
	skipped := 0

	for _, row := range sheet.Rows {
		customerID := sheet.Cell(row, "customer_id")
		if customerID == "" {
			skipped++
			continue
		}

		customers = append(customers, domain.Customer{
			CustomerID: customerID,
			Name:       sheet.Cell(row, "customer_name"),
			City:       NormalizeText(sheet.Cell(row, "city")),
			Region:     NormalizeText(sheet.Cell(row, "region")),
			Segment:    NormalizeText(sheet.Cell(row, "segment")),
			SignupDate: ParseDate(sheet.Cell(row, "signup_date")),
		})
	}

	c.logger.InfoContext(ctx, "cleaned customers",
		slog.Int("kept", len(customers)), slog.Int("skipped", skipped))

	return customers, nil
}

// Returns cleans the Returns sheet. Rows without an order_id are
// useless for the returned-flag join and are skipped.
func (c *Cleaner) Returns(ctx context.Context, sheet *workbook.Sheet) ([]domain.ReturnRecord, error) {
	returns := make([]domain.ReturnRecord, 0, len(sheet.Rows))
	skipped := 0

	for _, row := range sheet.Rows {
		orderID := sheet.Cell(row, "order_id")
		if orderID == "" {
			skipped++
			continue
		}

		returns = append(returns, domain.ReturnRecord{
			OrderID:    orderID,
			ReturnDate: ParseDate(sheet.Cell(row, "return_date")),
			Reason:     sheet.Cell(row, "return_reason"),
		})
	}

	c.logger.InfoContext(ctx, "cleaned returns",
		slog.Int("kept", len(returns)), slog.Int("skipped", skipped))

	return returns, nil
}

// Targets cleans the Targets sheet. Month keys normalize to "YYYY-MM"
// and regions go through the same text normalization as customers so
// the (month, region) join keys line up. Unparsable target_sales
// becomes 0, which reports as "no target" downstream.
func (c *Cleaner) Targets(ctx context.Context, sheet *workbook.Sheet) ([]domain.Target, error) {
	targets := make([]domain.Target, 0, len(sheet.Rows))
	skipped := 0

	for _, row := range sheet.Rows {
		month := NormalizeMonth(sheet.Cell(row, "month"))
		region := NormalizeText(sheet.Cell(row, "region"))
		if month == "" || region == "" {
			skipped++
			continue
		}

		sales := ParseFloat(sheet.Cell(row, "target_sales"))
		if IsMissing(sales) || sales < 0 {
			sales = 0
		}

		targets = append(targets, domain.Target{
			Month:       month,
			Region:      region,
			TargetSales: sales,
		})
	}

	c.logger.InfoContext(ctx, "cleaned targets",
		slog.Int("kept", len(targets)), slog.Int("skipped", skipped))

	return targets, nil
}
