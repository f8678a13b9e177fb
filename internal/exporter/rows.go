package exporter

import (
	"bizpulse/internal/anomaly"
	"bizpulse/internal/pipeline"
	"bizpulse/internal/report"
	"bizpulse/internal/segment"
	"bizpulse/pkg/contracts/domain"
)

var cleanOrderHeaders = []string{
	"order_id", "order_date", "customer_id", "product_id",
	"qty", "unit_price", "discount_pct", "payment_mode",
}

func cleanOrderRecords(orders []domain.Order) [][]string {
	records := make([][]string, 0, len(orders))
	for _, o := range orders {
		records = append(records, []string{
			o.OrderID,
			formatDate(o.OrderDate),
			o.CustomerID,
			o.ProductID,
			formatInt(o.Qty),
			formatFloat(o.UnitPrice),
			formatFloat(o.DiscountPct),
			string(o.PaymentMode),
		})
	}
	return records
}

var modelDataHeaders = []string{
	"order_id", "order_date", "customer_id", "product_id",
	"qty", "unit_price", "discount_pct", "payment_mode",
	"product_name", "category", "supplier",
	"customer_name", "city", "region", "segment",
	"is_returned",
	"gross_sales", "discount_amt", "net_sales", "tax_amt", "cogs", "profit", "margin_pct",
	"month", "quarter", "week",
}

// modelDataRecord renders a single fact row; the fact table is written
// through the stream writer rather than materialized as a full grid.
func modelDataRecord(r domain.EnrichedOrder) []string {
	return []string{
		r.OrderID,
		formatDate(r.OrderDate),
		r.CustomerID,
		r.ProductID,
		formatInt(r.Qty),
		formatFloat(r.UnitPrice),
		formatFloat(r.DiscountPct),
		string(r.PaymentMode),
		r.ProductName,
		r.Category,
		r.Supplier,
		r.CustomerName,
		r.City,
		r.Region,
		r.Segment,
		formatBool(r.IsReturned),
		formatFloat(r.GrossSales),
		formatFloat(r.DiscountAmt),
		formatFloat(r.NetSales),
		formatFloat(r.TaxAmt),
		formatFloat(r.COGS),
		formatFloat(r.Profit),
		formatRatio(r.MarginPct),
		r.Month,
		r.Quarter,
		formatInt(r.Week),
	}
}

var kpiHeaders = []string{"metric", "value"}

// kpiRecords renders the summary as metric/value pairs, one KPI per
// row, the way a dashboard import expects it.
func kpiRecords(res *pipeline.Result) [][]string {
	s := res.Summary
	return [][]string{
		{"total_net_sales", formatFloat(s.TotalNetSales)},
		{"total_profit", formatFloat(s.TotalProfit)},
		{"margin_pct", formatRatio(s.MarginPct)},
		{"return_rate", formatRatio(s.ReturnRate)},
		{"avg_order_value", formatFloat(s.AvgOrderValue)},
		{"unique_customers", formatInt(s.UniqueCustomers)},
		{"orphan_product_rows", formatInt(s.OrphanProducts)},
		{"orphan_customer_rows", formatInt(s.OrphanCustomers)},
		{"reference_date", formatDate(res.ReferenceDate)},
	}
}

var regionMonthHeaders = []string{"month", "region", "net_sales", "profit", "orders", "returns"}

func regionMonthRecords(rows []report.RegionMonthRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Month,
			r.Region,
			formatFloat(r.NetSales),
			formatFloat(r.Profit),
			formatInt(r.Orders),
			formatInt(r.Returns),
		})
	}
	return records
}

var categoryHeaders = []string{"category", "net_sales", "profit", "margin_pct", "orders"}

func categoryRecords(rows []report.CategoryRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Category,
			formatFloat(r.NetSales),
			formatFloat(r.Profit),
			formatRatio(r.MarginPct),
			formatInt(r.Orders),
		})
	}
	return records
}

var targetActualHeaders = []string{"month", "region", "net_sales", "target_sales", "achievement_pct"}

func targetActualRecords(rows []report.TargetActualRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Month,
			r.Region,
			formatFloat(r.NetSales),
			formatOptFloat(r.TargetSales, 2),
			formatOptFloat(r.AchievementPct, 4),
		})
	}
	return records
}

var paretoHeaders = []string{"product_name", "net_sales", "cum_sales", "cum_pct"}

func paretoRecords(rows []report.ParetoRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ProductName,
			formatFloat(r.NetSales),
			formatFloat(r.CumSales),
			formatRatio(r.CumPct),
		})
	}
	return records
}

var rfmHeaders = []string{
	"customer_id", "last_purchase", "recency_days", "frequency", "monetary",
	"r", "f", "m", "rfm_score",
}

func rfmRecords(rows []segment.CustomerRFM) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.CustomerID,
			formatDate(r.LastPurchase),
			formatInt(r.RecencyDays),
			formatInt(r.Frequency),
			formatFloat(r.Monetary),
			formatInt(r.R),
			formatInt(r.F),
			formatInt(r.M),
			formatInt(r.Score),
		})
	}
	return records
}

var anomalyHeaders = []string{
	"order_id", "order_date", "customer_id", "product_name", "region",
	"net_sales", "discount_pct", "payment_mode",
}

func anomalyRecords(rows []anomaly.Row) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.OrderID,
			formatDate(r.OrderDate),
			r.CustomerID,
			r.ProductName,
			r.Region,
			formatFloat(r.NetSales),
			formatFloat(r.DiscountPct),
			string(r.PaymentMode),
		})
	}
	return records
}
