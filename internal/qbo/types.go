package qbo

import (
	"encoding/json"

	"github.com/eccentricworkshop/receiptflow/internal/model"
)

// salesItemDetailType is the only line variant this pipeline consumes.
const salesItemDetailType = "SalesItemLineDetail"

// queryEnvelope is the outer shape of a /query response. The receipt array
// is kept raw so debug dumps reproduce the platform's JSON verbatim.
type queryEnvelope struct {
	QueryResponse struct {
		SalesReceipt json.RawMessage `json:"SalesReceipt"`
	} `json:"QueryResponse"`
}

// salesReceipt mirrors the wire entity, trimmed to the fields we read.
type salesReceipt struct {
	TxnDate     string       `json:"TxnDate"`
	TotalAmt    float64      `json:"TotalAmt"`
	CustomerRef ref          `json:"CustomerRef"`
	ShipAddr    *wireAddress `json:"ShipAddr"`
	BillAddr    *wireAddress `json:"BillAddr"`
	Line        []wireLine   `json:"Line"`
}

type ref struct {
	Value string `json:"value"`
	Name  string `json:"name"`
}

type wireAddress struct {
	Line1      string `json:"Line1"`
	Line2      string `json:"Line2"`
	Line3      string `json:"Line3"`
	Line4      string `json:"Line4"`
	Line5      string `json:"Line5"`
	City       string `json:"City"`
	PostalCode string `json:"PostalCode"`
	Country    string `json:"Country"`
}

type wireLine struct {
	DetailType          string           `json:"DetailType"`
	Amount              float64          `json:"Amount"`
	SalesItemLineDetail *salesItemDetail `json:"SalesItemLineDetail"`
}

type salesItemDetail struct {
	ItemRef ref      `json:"ItemRef"`
	Qty     *float64 `json:"Qty"`
}

func (a *wireAddress) toModel() *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		Line3:      a.Line3,
		Line4:      a.Line4,
		Line5:      a.Line5,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func (sr salesReceipt) toModel() model.Receipt {
	receipt := model.Receipt{
		TxnDate:     sr.TxnDate,
		Customer:    sr.CustomerRef.Name,
		TotalAmount: sr.TotalAmt,
		ShipAddr:    sr.ShipAddr.toModel(),
		BillAddr:    sr.BillAddr.toModel(),
	}

	for _, line := range sr.Line {
		if line.DetailType != salesItemDetailType || line.SalesItemLineDetail == nil {
			continue
		}
		detail := line.SalesItemLineDetail
		qty := 1.0
		if detail.Qty != nil {
			qty = *detail.Qty
		}
		receipt.Lines = append(receipt.Lines, model.LineItem{
			ItemID:   detail.ItemRef.Value,
			ItemName: detail.ItemRef.Name,
			Quantity: qty,
			Amount:   line.Amount,
		})
	}

	return receipt
}
