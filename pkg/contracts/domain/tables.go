package domain

// Output table names consumed by the rendering layer. Names are part of
// the external contract and match the sheet names the report workbook uses.
const (
	TableCleanOrders      = "Clean_Orders"
	TableModelData        = "Model_Data"
	TableKPIs             = "KPIs"
	TablePivotRegionMonth = "Pivot_Region_Month"
	TablePivotCategory    = "Pivot_Category"
	TableTargetVsActual   = "Target_vs_Actual"
	TableParetoProducts   = "Pareto_Products"
	TableCustomerRFM      = "Customer_RFM"
	TableAnomalies        = "Anomalies"
)

// Input sheet names. Lookup is case- and whitespace-insensitive.
const (
	SheetOrders    = "Orders"
	SheetProducts  = "Products"
	SheetCustomers = "Customers"
	SheetReturns   = "Returns"
	SheetTargets   = "Targets"
)
