// Package report aggregates fetched receipts and writes the output workbook.
package report

import (
	"fmt"
	"strings"

	"github.com/eccentricworkshop/receiptflow/internal/model"
	"github.com/eccentricworkshop/receiptflow/internal/region"
)

// Aggregator merges receipts that share a (date, customer, region) key,
// preserving first-seen group order for the report.
type Aggregator struct {
	resolver       *region.Resolver
	shippingItemID string
	groups         map[model.GroupKey]*model.ReceiptGroup
	order          []model.GroupKey
}

// NewAggregator creates an empty aggregator.
func NewAggregator(resolver *region.Resolver, shippingItemID string) *Aggregator {
	return &Aggregator{
		resolver:       resolver,
		shippingItemID: shippingItemID,
		groups:         make(map[model.GroupKey]*model.ReceiptGroup),
	}
}

// Add folds one receipt into its group, creating the group on first sight.
func (a *Aggregator) Add(receipt model.Receipt) *model.ReceiptGroup {
	key := model.GroupKey{
		Date:     receipt.TxnDate,
		Customer: receipt.Customer,
		Region:   a.resolver.Resolve(receipt.ShipAddr),
	}

	group, ok := a.groups[key]
	if !ok {
		group = &model.ReceiptGroup{Key: key}
		a.groups[key] = group
		a.order = append(a.order, key)
	}

	var shipping float64
	for _, item := range receipt.Lines {
		if sku := displaySKU(item); sku != "" {
			group.SKUs = append(group.SKUs, sku)
		}
		if item.ItemID == a.shippingItemID {
			shipping += item.Amount
		}
	}

	// SKUs accumulate across merged receipts; both totals are overwritten,
	// so the last receipt folded into a group wins.
	group.TotalAmount = receipt.TotalAmount
	group.ShippingCost = shipping

	return group
}

// Groups returns the aggregated groups in first-seen order.
func (a *Aggregator) Groups() []*model.ReceiptGroup {
	groups := make([]*model.ReceiptGroup, 0, len(a.order))
	for _, key := range a.order {
		groups = append(groups, a.groups[key])
	}
	return groups
}

// Len reports the number of distinct groups so far.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// displaySKU renders a line item for the report: the trailing colon-segment
// of the item name, prefixed with the quantity when more than one. Items
// named "Unknown" render as nothing.
func displaySKU(item model.LineItem) string {
	name := item.ItemName
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)

	if name == "" || name == "Unknown" {
		return ""
	}
	if item.Quantity > 1 {
		return fmt.Sprintf("%gx %s", item.Quantity, name)
	}
	return name
}
