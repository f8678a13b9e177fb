// Package report produces the aggregated report tables from the fact
// table: KPI summary, the two pivots, target-vs-actual reconciliation,
// and the Pareto product ranking.
package report

import (
	"sort"

	"github.com/samber/lo"

	"bizpulse/pkg/contracts/domain"
)

// Summary is the KPI table. Orphan counts come from reconciliation and
// are part of the contract, not just log output.
type Summary struct {
	TotalNetSales   float64 `json:"total_net_sales"`
	TotalProfit     float64 `json:"total_profit"`
	MarginPct       float64 `json:"margin_pct"`
	ReturnRate      float64 `json:"return_rate"`
	AvgOrderValue   float64 `json:"avg_order_value"`
	UniqueCustomers int     `json:"unique_customers"`
	OrphanProducts  int     `json:"orphan_product_rows"`
	OrphanCustomers int     `json:"orphan_customer_rows"`
}

// RegionMonthRow is one group of the region-by-month pivot.
type RegionMonthRow struct {
	Month    string  `json:"month"`
	Region   string  `json:"region"`
	NetSales float64 `json:"net_sales"`
	Profit   float64 `json:"profit"`
	Orders   int     `json:"orders"`
	Returns  int     `json:"returns"`
}

// CategoryRow is one group of the category pivot.
type CategoryRow struct {
	Category  string  `json:"category"`
	NetSales  float64 `json:"net_sales"`
	Profit    float64 `json:"profit"`
	MarginPct float64 `json:"margin_pct"` // mean of per-row margins
	Orders    int     `json:"orders"`
}

// TargetActualRow reconciles actual net sales against the planning
// target for one (month, region). A nil AchievementPct means "no
// target" and is distinct from zero achievement.
type TargetActualRow struct {
	Month          string   `json:"month"`
	Region         string   `json:"region"`
	NetSales       float64  `json:"net_sales"`
	TargetSales    *float64 `json:"target_sales"`
	AchievementPct *float64 `json:"achievement_pct"`
}

// ParetoRow is one product in the cumulative-contribution ranking.
type ParetoRow struct {
	ProductName string  `json:"product_name"`
	NetSales    float64 `json:"net_sales"`
	CumSales    float64 `json:"cum_sales"`
	CumPct      float64 `json:"cum_pct"`
}

// KPIs computes the KPI summary over the fact table.
func KPIs(rows []domain.EnrichedOrder, orphanProducts, orphanCustomers int) Summary {
	s := Summary{
		OrphanProducts:  orphanProducts,
		OrphanCustomers: orphanCustomers,
	}
	if len(rows) == 0 {
		return s
	}

	returned := 0
	for _, row := range rows {
		s.TotalNetSales += row.NetSales
		s.TotalProfit += row.Profit
		if row.IsReturned {
			returned++
		}
	}

	if s.TotalNetSales != 0 {
		s.MarginPct = s.TotalProfit / s.TotalNetSales
	}
	s.ReturnRate = float64(returned) / float64(len(rows))
	s.AvgOrderValue = s.TotalNetSales / float64(len(rows))
	s.UniqueCustomers = len(lo.UniqBy(rows, func(row domain.EnrichedOrder) string {
		return row.CustomerID
	}))

	return s
}

type monthRegion struct {
	month  string
	region string
}

// RegionMonthPivot groups the fact table by (month, region), sorted by
// month ascending then net sales descending within a month. Orphan
// customer rows group under the empty region rather than disappearing.
func RegionMonthPivot(rows []domain.EnrichedOrder) []RegionMonthRow {
	groups := lo.GroupBy(rows, func(row domain.EnrichedOrder) monthRegion {
		return monthRegion{month: row.Month, region: row.Region}
	})

	pivot := make([]RegionMonthRow, 0, len(groups))
	for key, members := range groups {
		row := RegionMonthRow{Month: key.month, Region: key.region, Orders: len(members)}
		for _, m := range members {
			row.NetSales += m.NetSales
			row.Profit += m.Profit
			if m.IsReturned {
				row.Returns++
			}
		}
		pivot = append(pivot, row)
	}

	sort.Slice(pivot, func(i, j int) bool {
		if pivot[i].Month != pivot[j].Month {
			return pivot[i].Month < pivot[j].Month
		}
		if pivot[i].NetSales != pivot[j].NetSales {
			return pivot[i].NetSales > pivot[j].NetSales
		}
		return pivot[i].Region < pivot[j].Region
	})

	return pivot
}

// CategoryPivot groups the fact table by category, sorted by net sales
// descending. The margin column is the mean of per-row margins, not the
// ratio of the sums.
func CategoryPivot(rows []domain.EnrichedOrder) []CategoryRow {
	groups := lo.GroupBy(rows, func(row domain.EnrichedOrder) string {
		return row.Category
	})

	pivot := make([]CategoryRow, 0, len(groups))
	for category, members := range groups {
		row := CategoryRow{Category: category, Orders: len(members)}
		for _, m := range members {
			row.NetSales += m.NetSales
			row.Profit += m.Profit
			row.MarginPct += m.MarginPct
		}
		row.MarginPct /= float64(len(members))
		pivot = append(pivot, row)
	}

	sort.Slice(pivot, func(i, j int) bool {
		if pivot[i].NetSales != pivot[j].NetSales {
			return pivot[i].NetSales > pivot[j].NetSales
		}
		return pivot[i].Category < pivot[j].Category
	})

	return pivot
}

// TargetVsActual left-joins actual net sales per (month, region) against
// the targets table. Groups without a target, or with a zero target, get
// a nil achievement: "no target" must stay distinguishable from 0%.
func TargetVsActual(rows []domain.EnrichedOrder, targets []domain.Target) []TargetActualRow {
	actuals := lo.GroupBy(rows, func(row domain.EnrichedOrder) monthRegion {
		return monthRegion{month: row.Month, region: row.Region}
	})

	targetIdx := make(map[monthRegion]float64, len(targets))
	for _, t := range targets {
		targetIdx[monthRegion{month: t.Month, region: t.Region}] = t.TargetSales
	}

	result := make([]TargetActualRow, 0, len(actuals))
	for key, members := range actuals {
		row := TargetActualRow{Month: key.month, Region: key.region}
		for _, m := range members {
			row.NetSales += m.NetSales
		}

		if target, ok := targetIdx[key]; ok {
			row.TargetSales = &target
			if target > 0 {
				achievement := row.NetSales / target
				row.AchievementPct = &achievement
			}
		}

		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Month != result[j].Month {
			return result[i].Month < result[j].Month
		}
		return result[i].Region < result[j].Region
	})

	return result
}

// Pareto ranks products by net sales descending with running cumulative
// sums and the cumulative fraction of the total, capped at the top `limit`
// products. The cumulative fraction is relative to the total over ALL
// products, so a capped list tops out below 1.
func Pareto(rows []domain.EnrichedOrder, limit int) []ParetoRow {
	groups := lo.GroupBy(rows, func(row domain.EnrichedOrder) string {
		return row.ProductName
	})

	ranking := make([]ParetoRow, 0, len(groups))
	var total float64
	for name, members := range groups {
		row := ParetoRow{ProductName: name}
		for _, m := range members {
			row.NetSales += m.NetSales
		}
		total += row.NetSales
		ranking = append(ranking, row)
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].NetSales != ranking[j].NetSales {
			return ranking[i].NetSales > ranking[j].NetSales
		}
		return ranking[i].ProductName < ranking[j].ProductName
	})

	var running float64
	for i := range ranking {
		running += ranking[i].NetSales
		ranking[i].CumSales = running
		if total != 0 {
			ranking[i].CumPct = running / total
		}
	}

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
