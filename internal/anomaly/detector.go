// Package anomaly flags suspicious order lines for manual review.
package anomaly

import (
	"log/slog"
	"sort"
	"time"

	"bizpulse/internal/stats"
	"bizpulse/pkg/contracts/domain"
)

// Row is one flagged order line.
type Row struct {
	OrderID     string             `json:"order_id"`
	OrderDate   time.Time          `json:"order_date"`
	CustomerID  string             `json:"customer_id"`
	ProductName string             `json:"product_name"`
	Region      string             `json:"region"`
	NetSales    float64            `json:"net_sales"`
	DiscountPct float64            `json:"discount_pct"`
	PaymentMode domain.PaymentMode `json:"payment_mode"`
}

// Detector flags orders whose net sales sit above a percentile of the
// whole population, or whose discount meets a fixed floor.
type Detector struct {
	logger      *slog.Logger
	percentile  float64
	discountPct float64
}

// NewDetector returns a Detector with the given net-sales percentile
// threshold (a 0..1 fraction) and discount floor (in percent).
func NewDetector(logger *slog.Logger, percentile, discountPct float64) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger, percentile: percentile, discountPct: discountPct}
}

// Detect scans the fact table and returns flagged rows sorted by net
// sales descending. The percentile cutoff is computed over all rows,
// including the ones that later get flagged.
func (d *Detector) Detect(rows []domain.EnrichedOrder) []Row {
	if len(rows) == 0 {
		return nil
	}

	net := make([]float64, len(rows))
	for i, row := range rows {
		net[i] = row.NetSales
	}
	cutoff := stats.Percentile(net, d.percentile)

	var flagged []Row
	for _, row := range rows {
		if row.NetSales > cutoff || row.DiscountPct >= d.discountPct {
			flagged = append(flagged, Row{
				OrderID:     row.OrderID,
				OrderDate:   row.OrderDate,
				CustomerID:  row.CustomerID,
				ProductName: row.ProductName,
				Region:      row.Region,
				NetSales:    row.NetSales,
				DiscountPct: row.DiscountPct,
				PaymentMode: row.PaymentMode,
			})
		}
	}

	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].NetSales != flagged[j].NetSales {
			return flagged[i].NetSales > flagged[j].NetSales
		}
		return flagged[i].OrderID < flagged[j].OrderID
	})

	d.logger.Info("anomaly scan complete",
		slog.Int("scanned", len(rows)),
		slog.Int("flagged", len(flagged)),
		slog.Float64("net_sales_cutoff", cutoff))

	return flagged
}
