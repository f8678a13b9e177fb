// Package workbook is the boundary adapter between the input spreadsheet
// and the analytical core. It reads the five named input sheets into raw
// string grids with normalized headers; all typing and cleaning happens
// downstream in the cleanse package.
package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"bizpulse/internal/errors"
	"bizpulse/pkg/contracts/domain"
)

// Sheet holds one input sheet as a raw string grid. Column lookup uses
// normalized header names (lower-cased, trimmed, spaces collapsed to
// underscores).
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewSheet builds a Sheet from a header row and data rows. Header names
// are normalized before indexing.
func NewSheet(name string, columns []string, rows [][]string) *Sheet {
	s := &Sheet{
		Name:    name,
		Columns: make([]string, len(columns)),
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		normalized := NormalizeHeader(col)
		s.Columns[i] = normalized
		if _, exists := s.index[normalized]; !exists {
			s.index[normalized] = i
		}
	}
	return s
}

// Column returns the index of the named column.
func (s *Sheet) Column(name string) (int, bool) {
	idx, ok := s.index[NormalizeHeader(name)]
	return idx, ok
}

// Cell returns the trimmed value of the named column in the given row,
// or "" when the column is absent or the row is too short.
func (s *Sheet) Cell(row []string, name string) string {
	idx, ok := s.Column(name)
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Require verifies that all named columns are present. A missing column
// is a schema error and aborts the run before any transformation.
func (s *Sheet) Require(names ...string) error {
	for _, name := range names {
		if _, ok := s.Column(name); !ok {
			return errors.NewSchemaError(
				fmt.Sprintf("sheet %s: required column %q not found", s.Name, name), nil).
				WithContext("sheet", s.Name).
				WithContext("column", name)
		}
	}
	return nil
}

// NormalizeHeader normalizes a raw header cell for lookup: trims
// whitespace, lower-cases, and collapses internal whitespace to single
// underscores, so "Order ID", "order_id" and " ORDER_ID " all match.
func NormalizeHeader(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	normalized = strings.Join(strings.Fields(normalized), "_")
	return strings.ReplaceAll(normalized, " ", "_")
}

// Input bundles the five raw input sheets.
type Input struct {
	Orders    *Sheet
	Products  *Sheet
	Customers *Sheet
	Returns   *Sheet
	Targets   *Sheet
}

// Required column sets per sheet. These are the schema contract; a sheet
// missing any of them fails the run up front.
var requiredColumns = map[string][]string{
	domain.SheetOrders:    {"order_id", "order_date", "customer_id", "product_id", "qty", "unit_price", "discount_pct", "payment_mode"},
	domain.SheetProducts:  {"product_id", "product_name", "category", "supplier", "cost", "tax_rate"},
	domain.SheetCustomers: {"customer_id", "customer_name", "city", "region", "segment", "signup_date"},
	domain.SheetReturns:   {"order_id", "return_date", "return_reason"},
	domain.SheetTargets:   {"month", "region", "target_sales"},
}

// LoadInput opens the workbook at path and reads the five input sheets,
// validating each sheet's schema.
func LoadInput(path string) (*Input, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open input workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	return ReadInput(f)
}

// ReadInput reads the five input sheets from an open workbook.
func ReadInput(f *excelize.File) (*Input, error) {
	in := &Input{}

	sheets := []struct {
		name string
		dest **Sheet
	}{
		{domain.SheetOrders, &in.Orders},
		{domain.SheetProducts, &in.Products},
		{domain.SheetCustomers, &in.Customers},
		{domain.SheetReturns, &in.Returns},
		{domain.SheetTargets, &in.Targets},
	}

	for _, entry := range sheets {
		sheet, err := readSheet(f, entry.name)
		if err != nil {
			return nil, err
		}
		if err := sheet.Require(requiredColumns[entry.name]...); err != nil {
			return nil, err
		}
		*entry.dest = sheet
	}

	return in, nil
}

// readSheet loads a single sheet by name. The sheet name match is
// case- and whitespace-insensitive since hand-maintained workbooks drift.
func readSheet(f *excelize.File, name string) (*Sheet, error) {
	actual, ok := findSheet(f, name)
	if !ok {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("required sheet %q not found in workbook", name), nil).
			WithContext("sheet", name)
	}

	rows, err := f.GetRows(actual)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", actual), err)
	}
	if len(rows) == 0 {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("sheet %q has no header row", actual), nil).
			WithContext("sheet", actual)
	}

	return NewSheet(name, rows[0], dropEmptyRows(rows[1:])), nil
}

// findSheet locates a sheet by normalized name.
func findSheet(f *excelize.File, name string) (string, bool) {
	want := NormalizeHeader(name)
	for _, candidate := range f.GetSheetList() {
		if NormalizeHeader(candidate) == want {
			return candidate, true
		}
	}
	return "", false
}

// dropEmptyRows removes rows whose cells are all blank. Trailing blank
// rows are common in workbooks edited by hand.
func dropEmptyRows(rows [][]string) [][]string {
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		hasData := false
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				hasData = true
				break
			}
		}
		if hasData {
			kept = append(kept, row)
		}
	}
	return kept
}
