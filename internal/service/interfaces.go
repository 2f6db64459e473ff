// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/eccentricworkshop/receiptflow/internal/model"
)

// DateRange represents a time period with inclusive start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ReceiptFetcher retrieves sales receipts for a date window.
type ReceiptFetcher interface {
	FetchReceipts(ctx context.Context, window DateRange) ([]model.Receipt, error)
}

// ReportWriter writes the aggregated receipt groups as a report.
type ReportWriter interface {
	Write(ctx context.Context, groups []*model.ReceiptGroup, window DateRange) error
}
