package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/eccentricworkshop/receiptflow/internal/common"
	"github.com/eccentricworkshop/receiptflow/internal/model"
	"github.com/eccentricworkshop/receiptflow/internal/service"
)

// DefaultReportPath is where the workbook lands unless overridden.
const DefaultReportPath = "sales_receipts.xlsx"

// widthPadding is added to the widest cell of each column, in character
// units, so values do not touch the column border.
const widthPadding = 2

// columns of the receipt report, in output order.
var columns = []string{"Date", "Customer", "State", "Total Amount", "Shipping Cost", "SKUs"}

// XLSXWriter implements the ReportWriter interface for local xlsx files.
type XLSXWriter struct {
	path   string
	logger *slog.Logger
}

// NewXLSXWriter creates a writer targeting path.
func NewXLSXWriter(path string, logger *slog.Logger) *XLSXWriter {
	if path == "" {
		path = DefaultReportPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{path: path, logger: logger}
}

// Write saves header plus one row per group, then re-opens the saved file to
// fit column widths. Two sessions on purpose: the width pass measures the
// workbook exactly as a reader will open it.
func (w *XLSXWriter) Write(_ context.Context, groups []*model.ReceiptGroup, window service.DateRange) error {
	w.logger.Info("starting report generation",
		"rows", len(groups),
		"date_range", fmt.Sprintf("%s to %s",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02")))

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%w: writing header: %v", common.ErrReportWrite, err)
	}

	for i, group := range groups {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", common.ErrReportWrite, i+2, err)
		}
		row := []any{
			group.Key.Date,
			group.Key.Customer,
			group.Key.Region,
			group.TotalAmount,
			group.ShippingCost,
			strings.Join(group.SKUs, "; "),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%w: row %d: %v", common.ErrReportWrite, i+2, err)
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("%w: saving %s: %v", common.ErrReportWrite, w.path, err)
	}

	if err := w.fitColumns(); err != nil {
		return err
	}

	w.logger.Info("report generation completed", "path", w.path, "rows_written", len(groups))
	return nil
}

// Path returns the output location.
func (w *XLSXWriter) Path() string {
	return w.path
}

// fitColumns sets each column's width to its longest rendered cell value,
// header included, plus padding.
func (w *XLSXWriter) fitColumns() error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("%w: reopening %s: %v", common.ErrReportWrite, w.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	cols, err := f.GetCols(sheet)
	if err != nil {
		return fmt.Errorf("%w: reading columns: %v", common.ErrReportWrite, err)
	}

	for i, col := range cols {
		maxLen := 0
		for _, value := range col {
			if n := utf8.RuneCountInString(value); n > maxLen {
				maxLen = n
			}
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("%w: column %d: %v", common.ErrReportWrite, i+1, err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(maxLen+widthPadding)); err != nil {
			return fmt.Errorf("%w: sizing column %s: %v", common.ErrReportWrite, name, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: saving %s: %v", common.ErrReportWrite, w.path, err)
	}
	return nil
}
