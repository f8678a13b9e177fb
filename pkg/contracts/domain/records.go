package domain

import (
	"time"
)

// PaymentMode identifies how an order was paid.
type PaymentMode string

const (
	PaymentUPI        PaymentMode = "UPI"
	PaymentCard       PaymentMode = "Card"
	PaymentCOD        PaymentMode = "COD"
	PaymentNetBanking PaymentMode = "NetBanking"
	PaymentOther      PaymentMode = "Other"
)

// ParsePaymentMode maps a raw cell value to a known payment mode.
// Unknown values collapse to PaymentOther rather than failing the row.
func ParsePaymentMode(raw string) PaymentMode {
	switch raw {
	case string(PaymentUPI), string(PaymentCard), string(PaymentCOD), string(PaymentNetBanking):
		return PaymentMode(raw)
	default:
		return PaymentOther
	}
}

// Order is a cleaned sales order row. After cleaning, every field is
// populated: unit price is imputed when it was missing in the input and
// rows with invalid quantities or missing identity fields are gone.
type Order struct {
	OrderID     string      `json:"order_id" csv:"order_id"`
	OrderDate   time.Time   `json:"order_date" csv:"order_date"`
	CustomerID  string      `json:"customer_id" csv:"customer_id"`
	ProductID   string      `json:"product_id" csv:"product_id"`
	Qty         int         `json:"qty" csv:"qty"`
	UnitPrice   float64     `json:"unit_price" csv:"unit_price"`
	DiscountPct float64     `json:"discount_pct" csv:"discount_pct"`
	PaymentMode PaymentMode `json:"payment_mode" csv:"payment_mode"`
}

// Product is a reference catalog row. Immutable after load.
type Product struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"product_name"`
	Category  string  `json:"category"`
	Supplier  string  `json:"supplier"`
	Cost      float64 `json:"cost"`
	TaxRate   float64 `json:"tax_rate"`
}

// Customer is a reference customer row. Text fields are normalized
// (trimmed, title-cased) by the cleaner.
type Customer struct {
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"customer_name"`
	City       string    `json:"city"`
	Region     string    `json:"region"`
	Segment    string    `json:"segment"`
	SignupDate time.Time `json:"signup_date"`
}

// ReturnRecord is a raw product return row. The same order can appear
// more than once; reconciliation reduces returns to a distinct set of
// order IDs before joining.
type ReturnRecord struct {
	OrderID    string    `json:"order_id"`
	ReturnDate time.Time `json:"return_date"`
	Reason     string    `json:"return_reason"`
}

// Target is a monthly sales target for one region. (Month, Region) is
// the composite key; Month uses the "YYYY-MM" form.
type Target struct {
	Month       string  `json:"month"`
	Region      string  `json:"region"`
	TargetSales float64 `json:"target_sales"`
}

// EnrichedOrder is the canonical fact row: an Order joined with its
// Product and Customer attributes, the returned flag, and all derived
// financial and time-bucket fields. Every aggregation reads from this.
type EnrichedOrder struct {
	Order

	// Product attributes. Empty with HasProduct=false for orphan rows.
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Supplier    string  `json:"supplier"`
	Cost        float64 `json:"cost"`
	TaxRate     float64 `json:"tax_rate"`
	HasProduct  bool    `json:"has_product"`

	// Customer attributes. Empty with HasCustomer=false for orphan rows.
	CustomerName string `json:"customer_name"`
	City         string `json:"city"`
	Region       string `json:"region"`
	Segment      string `json:"segment"`
	HasCustomer  bool   `json:"has_customer"`

	IsReturned bool `json:"is_returned"`

	// Derived financial metrics. The identities
	//   net = gross - discount
	//   profit = (net - tax) - cogs
	// hold exactly for every row.
	GrossSales  float64 `json:"gross_sales"`
	DiscountAmt float64 `json:"discount_amt"`
	NetSales    float64 `json:"net_sales"`
	TaxAmt      float64 `json:"tax_amt"`
	COGS        float64 `json:"cogs"`
	Profit      float64 `json:"profit"`
	MarginPct   float64 `json:"margin_pct"`

	// Time buckets, pure functions of OrderDate.
	Month   string `json:"month"`   // "YYYY-MM"
	Quarter string `json:"quarter"` // "YYYY-Qn"
	Week    int    `json:"week"`    // ISO week number
}
