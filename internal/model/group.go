package model

// GroupKey identifies one aggregation bucket. Receipts sharing all three
// fields merge into a single report row.
type GroupKey struct {
	Date     string
	Customer string
	Region   string
}

// ReceiptGroup accumulates the receipts sharing a GroupKey.
//
// SKUs append across every merged receipt. TotalAmount and ShippingCost do
// not accumulate: each receipt folded into the group overwrites both, so the
// last receipt wins.
type ReceiptGroup struct {
	Key          GroupKey
	TotalAmount  float64
	ShippingCost float64
	SKUs         []string
}
