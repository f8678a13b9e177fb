// Package exporter renders the report tables of a pipeline run to CSV
// files plus a JSON run manifest. The whole run commits atomically: all
// files are written into a staging directory first and moved into place
// only once every table rendered cleanly, so a failed run never leaves
// a partial report behind.
package exporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bizpulse/internal/errors"
	"bizpulse/internal/pipeline"
	"bizpulse/pkg/contracts/domain"
)

// ManifestName is the file the run summary is written to.
const ManifestName = "manifest.json"

// TableInfo records one written table in the manifest.
type TableInfo struct {
	Name string `json:"name"`
	File string `json:"file"`
	Rows int    `json:"rows"`
}

// Manifest summarizes one run for downstream tooling.
type Manifest struct {
	RunID         string      `json:"run_id"`
	StartedAt     time.Time   `json:"started_at"`
	DurationMS    int64       `json:"duration_ms"`
	ReferenceDate string      `json:"reference_date"`
	FactRows      int         `json:"fact_rows"`
	Anomalies     int         `json:"anomalies"`
	OrphanRows    struct {
		Products  int `json:"products"`
		Customers int `json:"customers"`
	} `json:"orphan_rows"`
	Tables []TableInfo `json:"tables"`

	OrderCleaning struct {
		InputRows         int     `json:"input_rows"`
		DroppedInvalid    int     `json:"dropped_invalid"`
		DroppedDuplicates int     `json:"dropped_duplicates"`
		ImputedPrices     int     `json:"imputed_prices"`
		ImputedDiscounts  int     `json:"imputed_discounts"`
		ClampedDiscounts  int     `json:"clamped_discounts"`
		MedianUnitPrice   float64 `json:"median_unit_price"`
	} `json:"order_cleaning"`
}

// TableExporter writes one run's tables to an output directory.
type TableExporter struct {
	logger    *slog.Logger
	outputDir string
}

// NewTableExporter creates an exporter targeting outputDir.
func NewTableExporter(logger *slog.Logger, outputDir string) *TableExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TableExporter{logger: logger, outputDir: outputDir}
}

// Export renders every table of the run. On success the output
// directory contains one CSV per table plus the manifest; on failure
// the staging directory is removed and the output directory is
// untouched.
func (e *TableExporter) Export(res *pipeline.Result) error {
	staging := filepath.Join(e.outputDir, ".staging-"+res.RunID)
	if err := os.MkdirAll(staging, 0755); err != nil {
		return errors.NewStorageError("failed to create staging directory", err).
			WithContext("path", staging)
	}

	written, err := e.writeTables(staging, res)
	if err != nil {
		os.RemoveAll(staging)
		return err
	}

	if err := e.writeManifest(staging, res, written); err != nil {
		os.RemoveAll(staging)
		return err
	}

	files := make([]string, 0, len(written)+1)
	for _, t := range written {
		files = append(files, t.File)
	}
	files = append(files, ManifestName)

	if err := e.commit(staging, files); err != nil {
		os.RemoveAll(staging)
		return err
	}
	os.RemoveAll(staging)

	e.logger.Info("report exported",
		slog.String("run_id", res.RunID),
		slog.String("output_dir", e.outputDir),
		slog.Int("files", len(files)))
	return nil
}

func (e *TableExporter) writeTables(staging string, res *pipeline.Result) ([]TableInfo, error) {
	writer := NewCSVWriter(staging)

	tables := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{domain.TableCleanOrders, cleanOrderHeaders, cleanOrderRecords(res.CleanOrders)},
		{domain.TableKPIs, kpiHeaders, kpiRecords(res)},
		{domain.TablePivotRegionMonth, regionMonthHeaders, regionMonthRecords(res.RegionMonth)},
		{domain.TablePivotCategory, categoryHeaders, categoryRecords(res.Categories)},
		{domain.TableTargetVsActual, targetActualHeaders, targetActualRecords(res.TargetActual)},
		{domain.TableParetoProducts, paretoHeaders, paretoRecords(res.Pareto)},
		{domain.TableCustomerRFM, rfmHeaders, rfmRecords(res.RFM)},
		{domain.TableAnomalies, anomalyHeaders, anomalyRecords(res.Anomalies)},
	}

	written := make([]TableInfo, 0, len(tables)+1)
	for _, table := range tables {
		fileName := table.name + ".csv"
		if err := writer.WriteSimpleCSV(fileName, table.headers, table.records); err != nil {
			return nil, errors.NewStorageError(
				fmt.Sprintf("failed to write table %s", table.name), err)
		}
		written = append(written, TableInfo{Name: table.name, File: fileName, Rows: len(table.records)})

		// The fact table dwarfs every other output, so it streams row
		// by row instead of materializing all rendered records first.
		// It follows Clean_Orders to keep a stable table order.
		if table.name == domain.TableCleanOrders {
			info, err := e.streamModelData(writer, res.Facts)
			if err != nil {
				return nil, err
			}
			written = append(written, info)
		}
	}
	return written, nil
}

func (e *TableExporter) streamModelData(writer *CSVWriter, facts []domain.EnrichedOrder) (TableInfo, error) {
	fileName := domain.TableModelData + ".csv"
	sw, err := writer.CreateStreamWriter(fileName, modelDataHeaders)
	if err != nil {
		return TableInfo{}, errors.NewStorageError("failed to create fact table stream", err)
	}
	for _, row := range facts {
		if err := sw.WriteRecord(modelDataRecord(row)); err != nil {
			sw.Close()
			return TableInfo{}, errors.NewStorageError("failed to write fact row", err)
		}
	}
	if err := sw.Close(); err != nil {
		return TableInfo{}, errors.NewStorageError("failed to flush fact table stream", err)
	}
	return TableInfo{Name: domain.TableModelData, File: fileName, Rows: len(facts)}, nil
}

func (e *TableExporter) writeManifest(staging string, res *pipeline.Result, tables []TableInfo) error {
	m := Manifest{
		RunID:         res.RunID,
		StartedAt:     res.StartedAt.UTC(),
		DurationMS:    res.Duration.Milliseconds(),
		ReferenceDate: formatDate(res.ReferenceDate),
		FactRows:      len(res.Facts),
		Anomalies:     len(res.Anomalies),
		Tables:        tables,
	}
	m.OrphanRows.Products = res.Summary.OrphanProducts
	m.OrphanRows.Customers = res.Summary.OrphanCustomers
	m.OrderCleaning.InputRows = res.OrderStats.InputRows
	m.OrderCleaning.DroppedInvalid = res.OrderStats.DroppedInvalid
	m.OrderCleaning.DroppedDuplicates = res.OrderStats.DroppedDuplicates
	m.OrderCleaning.ImputedPrices = res.OrderStats.ImputedPrices
	m.OrderCleaning.ImputedDiscounts = res.OrderStats.ImputedDiscounts
	m.OrderCleaning.ClampedDiscounts = res.OrderStats.ClampedDiscounts
	m.OrderCleaning.MedianUnitPrice = res.OrderStats.MedianUnitPrice

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.NewStorageError("failed to marshal manifest", err)
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestName), data, 0644); err != nil {
		return errors.NewStorageError("failed to write manifest", err)
	}
	return nil
}

// commit moves every staged file into the output directory. Renames
// within one directory tree are cheap and effectively atomic per file.
func (e *TableExporter) commit(staging string, files []string) error {
	for _, name := range files {
		src := filepath.Join(staging, name)
		dst := filepath.Join(e.outputDir, name)
		if err := os.Rename(src, dst); err != nil {
			return errors.NewStorageError("failed to move staged file", err).
				WithContext("file", name)
		}
	}
	return nil
}
