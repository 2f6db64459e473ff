// Package model holds the domain types shared across the pipeline.
package model

// Address is a shipping or billing address as the accounting platform
// returns it: up to five freeform lines plus structured fields that are
// frequently absent.
type Address struct {
	Line1      string
	Line2      string
	Line3      string
	Line4      string
	Line5      string
	City       string
	PostalCode string
	Country    string
}

// CandidateLines returns the address lines that can carry city/state/postal
// or country information. Lines 1-2 are street address and are never
// inspected.
func (a Address) CandidateLines() []string {
	return []string{a.Line3, a.Line4, a.Line5}
}

// LineItem is the sales-item variant of a receipt line. Other detail types
// (discounts, subtotals, tax lines) are dropped during decoding.
type LineItem struct {
	ItemID   string
	ItemName string
	Quantity float64 // defaults to 1 when the platform omits Qty
	Amount   float64
}

// Receipt is a single sales receipt as fetched from the platform.
type Receipt struct {
	TxnDate     string // plain YYYY-MM-DD, kept as the platform sends it
	Customer    string
	TotalAmount float64
	ShipAddr    *Address
	BillAddr    *Address
	Lines       []LineItem
}
