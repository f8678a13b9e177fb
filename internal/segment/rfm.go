// Package segment scores customers by recency, frequency and monetary
// value over the reconciled fact table.
package segment

import (
	"log/slog"
	"sort"
	"time"

	"bizpulse/internal/stats"
	"bizpulse/pkg/contracts/domain"
)

// CustomerRFM is one scored customer.
type CustomerRFM struct {
	CustomerID   string    `json:"customer_id"`
	LastPurchase time.Time `json:"last_purchase"`
	RecencyDays  int       `json:"recency_days"`
	Frequency    int       `json:"frequency"`
	Monetary     float64   `json:"monetary"`
	R            int       `json:"r"`
	F            int       `json:"f"`
	M            int       `json:"m"`
	Score        int       `json:"rfm_score"`
}

// Scorer builds RFM segments.
type Scorer struct {
	logger *slog.Logger
	tiers  int
}

// NewScorer returns a Scorer that ranks customers into the given
// number of tiers per dimension.
func NewScorer(logger *slog.Logger, tiers int) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	if tiers < 2 {
		tiers = 5
	}
	return &Scorer{logger: logger, tiers: tiers}
}

// ReferenceDate is the day the analysis pretends to run on: one day
// past the latest order date, so the most recent order has a recency
// of one day rather than zero.
func ReferenceDate(rows []domain.EnrichedOrder) time.Time {
	var latest time.Time
	for _, row := range rows {
		if row.OrderDate.After(latest) {
			latest = row.OrderDate
		}
	}
	if latest.IsZero() {
		return latest
	}
	return latest.AddDate(0, 0, 1)
}

// Score aggregates the fact table per customer and assigns each
// customer a tier per dimension. Low recency is good, so the recency
// tier is inverted relative to frequency and monetary. Rows without a
// customer id are skipped.
func (s *Scorer) Score(rows []domain.EnrichedOrder, refDate time.Time) []CustomerRFM {
	type accum struct {
		last     time.Time
		orders   int
		monetary float64
	}
	byCustomer := make(map[string]*accum)
	for _, row := range rows {
		if row.CustomerID == "" {
			continue
		}
		a := byCustomer[row.CustomerID]
		if a == nil {
			a = &accum{}
			byCustomer[row.CustomerID] = a
		}
		if row.OrderDate.After(a.last) {
			a.last = row.OrderDate
		}
		a.orders++
		a.monetary += row.NetSales
	}
	if len(byCustomer) == 0 {
		return nil
	}

	customers := make([]CustomerRFM, 0, len(byCustomer))
	for id, a := range byCustomer {
		customers = append(customers, CustomerRFM{
			CustomerID:   id,
			LastPurchase: a.last,
			RecencyDays:  int(refDate.Sub(a.last).Hours() / 24),
			Frequency:    a.orders,
			Monetary:     a.monetary,
		})
	}
	// Stable input order for tie-breaking inside the rankers.
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CustomerID < customers[j].CustomerID
	})

	recency := make([]float64, len(customers))
	frequency := make([]float64, len(customers))
	monetary := make([]float64, len(customers))
	for i, c := range customers {
		recency[i] = float64(c.RecencyDays)
		frequency[i] = float64(c.Frequency)
		monetary[i] = float64(c.Monetary)
	}

	rTiers := stats.QuantileTiers(recency, s.tiers, false)
	fTiers := stats.QuantileTiers(frequency, s.tiers, true)
	mTiers := stats.QuantileTiers(monetary, s.tiers, true)
	for i := range customers {
		customers[i].R = rTiers[i]
		customers[i].F = fTiers[i]
		customers[i].M = mTiers[i]
		customers[i].Score = rTiers[i]*100 + fTiers[i]*10 + mTiers[i]
	}

	s.logger.Info("rfm segmentation complete",
		slog.Int("customers", len(customers)),
		slog.Int("tiers", s.tiers),
		slog.Time("reference_date", refDate))

	return customers
}
