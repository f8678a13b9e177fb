// Package derive computes the per-row financial metrics and time
// buckets of the fact table. Everything here is pure arithmetic on a
// single row; the evaluation order of the chain matters and is fixed.
package derive

import (
	"fmt"
	"time"

	"bizpulse/pkg/contracts/domain"
)

// Metrics fills the derived financial fields and time buckets of every
// fact row in place and returns the slice for chaining.
//
// The chain, in order:
//
//	gross_sales  = qty * unit_price
//	discount_amt = gross_sales * (discount_pct / 100)
//	net_sales    = gross_sales - discount_amt
//	tax_amt      = net_sales * tax_rate   (0 for orphan products)
//	cogs         = qty * cost             (0 for orphan products)
//	profit       = (net_sales - tax_amt) - cogs
//	margin_pct   = profit / net_sales, or 0 when net_sales <= 0
func Metrics(rows []domain.EnrichedOrder) []domain.EnrichedOrder {
	for i := range rows {
		row := &rows[i]

		row.GrossSales = float64(row.Qty) * row.UnitPrice
		row.DiscountAmt = row.GrossSales * (row.DiscountPct / 100)
		row.NetSales = row.GrossSales - row.DiscountAmt
		row.TaxAmt = row.NetSales * row.TaxRate
		row.COGS = float64(row.Qty) * row.Cost
		row.Profit = (row.NetSales - row.TaxAmt) - row.COGS
		if row.NetSales > 0 {
			row.MarginPct = row.Profit / row.NetSales
		} else {
			row.MarginPct = 0
		}

		row.Month, row.Quarter, row.Week = Buckets(row.OrderDate)
	}
	return rows
}

// Buckets derives the month ("YYYY-MM"), quarter ("YYYY-Qn") and ISO
// week number for a date. Pure and stable: the same date always yields
// the same buckets.
func Buckets(date time.Time) (month, quarter string, week int) {
	month = date.Format("2006-01")
	quarter = fmt.Sprintf("%d-Q%d", date.Year(), (int(date.Month())-1)/3+1)
	_, week = date.ISOWeek()
	return month, quarter, week
}
