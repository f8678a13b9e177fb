// Package pipeline orchestrates one end-to-end reporting run: cleanse,
// reconcile, derive, aggregate.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bizpulse/internal/anomaly"
	"bizpulse/internal/cleanse"
	"bizpulse/internal/config"
	"bizpulse/internal/derive"
	"bizpulse/internal/infrastructure"
	"bizpulse/internal/reconcile"
	"bizpulse/internal/report"
	"bizpulse/internal/segment"
	"bizpulse/internal/workbook"
	"bizpulse/pkg/contracts/domain"
)

// Result is everything one run produces: the nine output tables plus
// the run manifest data. All tables are fully materialized before any
// of them is written out.
type Result struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	ReferenceDate time.Time

	CleanOrders  []domain.Order
	Facts        []domain.EnrichedOrder
	Summary      report.Summary
	RegionMonth  []report.RegionMonthRow
	Categories   []report.CategoryRow
	TargetActual []report.TargetActualRow
	Pareto       []report.ParetoRow
	RFM          []segment.CustomerRFM
	Anomalies    []anomaly.Row

	OrderStats cleanse.OrderStats
}

// Runner wires the pipeline stages together.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner creates a Runner from the loaded configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run executes the full pipeline over one input workbook. Each run gets
// a fresh run id that every log line downstream carries.
func (r *Runner) Run(ctx context.Context, input *workbook.Input) (*Result, error) {
	runID := uuid.New().String()
	ctx = infrastructure.WithRunID(ctx, runID)
	logger := r.logger.With(slog.String("run_id", runID))

	started := time.Now()
	logger.InfoContext(ctx, "pipeline run started")

	cleaner := cleanse.NewCleaner(logger, r.cfg.Pipeline.DedupPolicy)

	orders, orderStats, err := cleaner.Orders(ctx, input.Orders)
	if err != nil {
		return nil, err
	}
	products, err := cleaner.Products(ctx, input.Products)
	if err != nil {
		return nil, err
	}
	customers, err := cleaner.Customers(ctx, input.Customers)
	if err != nil {
		return nil, err
	}
	returns, err := cleaner.Returns(ctx, input.Returns)
	if err != nil {
		return nil, err
	}
	targets, err := cleaner.Targets(ctx, input.Targets)
	if err != nil {
		return nil, err
	}

	joined, err := reconcile.NewReconciler(logger).Join(ctx, orders, products, customers, returns)
	if err != nil {
		return nil, err
	}
	facts := derive.Metrics(joined.Rows)

	refDate := segment.ReferenceDate(facts)

	res := &Result{
		RunID:         runID,
		StartedAt:     started,
		ReferenceDate: refDate,
		CleanOrders:   orders,
		Facts:         facts,
		Summary:       report.KPIs(facts, joined.OrphanProducts, joined.OrphanCustomers),
		RegionMonth:   report.RegionMonthPivot(facts),
		Categories:    report.CategoryPivot(facts),
		TargetActual:  report.TargetVsActual(facts, targets),
		Pareto:        report.Pareto(facts, r.cfg.Pipeline.ParetoCap),
		RFM:           segment.NewScorer(logger, r.cfg.Pipeline.RFMTiers).Score(facts, refDate),
		Anomalies: anomaly.NewDetector(logger,
			r.cfg.Pipeline.AnomalyPercentile,
			r.cfg.Pipeline.AnomalyDiscountPct).Detect(facts),
		OrderStats: orderStats,
	}
	res.Duration = time.Since(started)

	logger.InfoContext(ctx, "pipeline run complete",
		slog.Int("fact_rows", len(facts)),
		slog.Int("anomalies", len(res.Anomalies)),
		slog.Duration("duration", res.Duration))

	return res, nil
}
