package cleanse

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizpulse/internal/config"
	"bizpulse/internal/workbook"
	"bizpulse/pkg/contracts/domain"
)

var orderColumns = []string{"order_id", "order_date", "customer_id", "product_id", "qty", "unit_price", "discount_pct", "payment_mode"}

func orderSheet(rows [][]string) *workbook.Sheet {
	return workbook.NewSheet(domain.SheetOrders, orderColumns, rows)
}

func TestCleaner_Orders_ValidityFilter(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := orderSheet([][]string{
		{"1", "2025-01-05", "C1", "P1", "2", "100", "10", "UPI"},
		{"", "2025-01-05", "C1", "P1", "2", "100", "10", "UPI"},    // missing order_id
		{"2", "not-a-date", "C1", "P1", "2", "100", "10", "UPI"},   // bad date
		{"3", "2025-01-05", "", "P1", "2", "100", "10", "UPI"},     // missing customer
		{"4", "2025-01-05", "C1", "", "2", "100", "10", "UPI"},     // missing product
		{"5", "2025-01-05", "C1", "P1", "-1", "100", "10", "UPI"},  // negative qty
		{"6", "2025-01-05", "C1", "P1", "0", "100", "10", "UPI"},   // zero qty
		{"7", "2025-01-05", "C1", "P1", "abc", "100", "10", "UPI"}, // unparsable qty
	})

	orders, st, err := cleaner.Orders(context.Background(), sheet)
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, "1", orders[0].OrderID)
	assert.Equal(t, 8, st.InputRows)
	assert.Equal(t, 7, st.DroppedInvalid)

	// Post-clean invariant: qty > 0 and a concrete unit price everywhere.
	for _, o := range orders {
		assert.Greater(t, o.Qty, 0)
		assert.GreaterOrEqual(t, o.UnitPrice, 0.0)
	}
}

func TestCleaner_Orders_MedianImputation(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := orderSheet([][]string{
		{"1", "2025-01-05", "C1", "P1", "1", "100", "0", "Card"},
		{"2", "2025-01-06", "C1", "P1", "1", "200", "0", "Card"},
		{"3", "2025-01-07", "C1", "P1", "1", "300", "0", "Card"},
		{"4", "2025-01-08", "C1", "P1", "1", "None", "0", "Card"},
		{"5", "2025-01-09", "C1", "P1", "1", "", "0", "Card"},
	})

	orders, st, err := cleaner.Orders(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, orders, 5)

	assert.Equal(t, 200.0, st.MedianUnitPrice)
	assert.Equal(t, 2, st.ImputedPrices)
	assert.Equal(t, 200.0, orders[3].UnitPrice)
	assert.Equal(t, 200.0, orders[4].UnitPrice)
}

func TestCleaner_Orders_NegativePriceExcluded(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := orderSheet([][]string{
		{"1", "2025-01-05", "C1", "P1", "1", "100", "0", "Card"},
		{"2", "2025-01-06", "C1", "P1", "1", "-5", "0", "Card"}, // negative price
		{"3", "2025-01-07", "C1", "P1", "1", "", "0", "Card"},   // missing price
	})

	orders, st, err := cleaner.Orders(context.Background(), sheet)
	require.NoError(t, err)

	// Only the missing price is imputable; the negative one violates
	// the price invariant and the whole row goes.
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].OrderID)
	assert.Equal(t, "3", orders[1].OrderID)
	assert.Equal(t, 1, st.DroppedInvalid)
	assert.Equal(t, 1, st.ImputedPrices)
	// Median comes from valid prices only
	assert.Equal(t, 100.0, st.MedianUnitPrice)
	assert.Equal(t, 100.0, orders[1].UnitPrice)
}

func TestCleaner_Orders_DiscountImputedToZero(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := orderSheet([][]string{
		{"1", "2025-01-05", "C1", "P1", "1", "100", "", "Card"},
		{"2", "2025-01-05", "C1", "P1", "1", "100", "None", "COD"},
	})

	orders, st, err := cleaner.Orders(context.Background(), sheet)
	require.NoError(t, err)

	assert.Equal(t, 2, st.ImputedDiscounts)
	assert.Equal(t, 0.0, orders[0].DiscountPct)
	assert.Equal(t, 0.0, orders[1].DiscountPct)
}

func TestCleaner_Orders_DiscountClampedToRange(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := orderSheet([][]string{
		{"1", "2025-01-05", "C1", "P1", "1", "100", "-10", "Card"},
		{"2", "2025-01-06", "C1", "P1", "1", "100", "150", "Card"},
		{"3", "2025-01-07", "C1", "P1", "1", "100", "100", "Card"},
	})

	orders, st, err := cleaner.Orders(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, orders, 3)

	assert.Equal(t, 0.0, orders[0].DiscountPct)
	assert.Equal(t, 100.0, orders[1].DiscountPct)
	assert.Equal(t, 100.0, orders[2].DiscountPct)
	assert.Equal(t, 2, st.ClampedDiscounts)
	assert.Equal(t, 0, st.ImputedDiscounts)
}

func TestCleaner_Orders_ThousandsSeparatorPrice(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := orderSheet([][]string{
		{"1", "2025-01-05", "C1", "P1", "1", "55,000", "0", "Card"},
	})

	orders, _, err := cleaner.Orders(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 55000.0, orders[0].UnitPrice)
}

func TestCleaner_Orders_Dedup(t *testing.T) {
	rows := [][]string{
		{"1", "2025-01-05", "C1", "P1", "1", "100", "0", "Card"}, // gross 100
		{"1", "2025-01-06", "C2", "P2", "5", "100", "0", "UPI"},  // gross 500
		{"2", "2025-01-07", "C1", "P1", "1", "50", "0", "Card"},
	}

	t.Run("keep first", func(t *testing.T) {
		cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)
		orders, st, err := cleaner.Orders(context.Background(), orderSheet(rows))
		require.NoError(t, err)

		require.Len(t, orders, 2)
		assert.Equal(t, 1, st.DroppedDuplicates)
		assert.Equal(t, "C1", orders[0].CustomerID)
		assert.Equal(t, 1, orders[0].Qty)
	})

	t.Run("keep max net", func(t *testing.T) {
		cleaner := NewCleaner(slog.Default(), config.DedupKeepMaxNet)
		orders, st, err := cleaner.Orders(context.Background(), orderSheet(rows))
		require.NoError(t, err)

		require.Len(t, orders, 2)
		assert.Equal(t, 1, st.DroppedDuplicates)
		// Higher-value duplicate wins but keeps its slot in row order.
		assert.Equal(t, "1", orders[0].OrderID)
		assert.Equal(t, "C2", orders[0].CustomerID)
		assert.Equal(t, 5, orders[0].Qty)
		assert.Equal(t, "2", orders[1].OrderID)
	})
}

func TestCleaner_Customers_Normalization(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := workbook.NewSheet(domain.SheetCustomers,
		[]string{"customer_id", "customer_name", "city", "region", "segment", "signup_date"},
		[][]string{
			{"C1", "Customer_0", " delhi ", " east ", "CONSUMER", "2024-03-01"},
			{"C2", "Customer_1", "Mumbai", "East", "Consumer", "bad-date"},
			{"", "NoID", "Pune", "West", "SMB", "2024-01-01"},
		})

	customers, err := cleaner.Customers(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, "Delhi", customers[0].City)
	assert.Equal(t, "East", customers[0].Region)
	assert.Equal(t, "Consumer", customers[0].Segment)
	// Messy and clean variants normalize to the same region value
	assert.Equal(t, customers[0].Region, customers[1].Region)
	// Unparsable signup date is missing, not an error
	assert.True(t, customers[1].SignupDate.IsZero())
}

func TestCleaner_Products_Defaults(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := workbook.NewSheet(domain.SheetProducts,
		[]string{"product_id", "product_name", "category", "supplier", "cost", "tax_rate"},
		[][]string{
			{"P1", "Product_0", "electronics", "Apex", "50", "0.18"},
			{"P2", "Product_1", "Grocery", "Nova", "None", ""},
		})

	products, err := cleaner.Products(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Electronics", products[0].Category)
	assert.Equal(t, 0.18, products[0].TaxRate)
	assert.Equal(t, 0.0, products[1].Cost)
	assert.Equal(t, 0.0, products[1].TaxRate)
}

func TestCleaner_Targets(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := workbook.NewSheet(domain.SheetTargets,
		[]string{"month", "region", "target_sales"},
		[][]string{
			{"2025-01", " north ", "1,200,000"},
			{"2025-02-01", "South", "900000"},
			{"2025-03", "West", "None"},
			{"", "East", "100"},
		})

	targets, err := cleaner.Targets(context.Background(), sheet)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, domain.Target{Month: "2025-01", Region: "North", TargetSales: 1200000}, targets[0])
	assert.Equal(t, "2025-02", targets[1].Month)
	assert.Equal(t, 0.0, targets[2].TargetSales)
}

func TestCleaner_Returns(t *testing.T) {
	cleaner := NewCleaner(slog.Default(), config.DedupKeepFirst)

	sheet := workbook.NewSheet(domain.SheetReturns,
		[]string{"order_id", "return_date", "return_reason"},
		[][]string{
			{"1", "2025-01-12", "Damaged"},
			{"1", "2025-01-14", "Damaged"},
			{"", "2025-01-15", "Wrong Item"},
		})

	returns, err := cleaner.Returns(context.Background(), sheet)
	require.NoError(t, err)

	// Duplicates survive here; reconciliation reduces to distinct IDs.
	require.Len(t, returns, 2)
	assert.Equal(t, "Damaged", returns[0].Reason)
}
