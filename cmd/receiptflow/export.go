package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eccentricworkshop/receiptflow/internal/cli"
	"github.com/eccentricworkshop/receiptflow/internal/common"
	"github.com/eccentricworkshop/receiptflow/internal/config"
	"github.com/eccentricworkshop/receiptflow/internal/model"
	"github.com/eccentricworkshop/receiptflow/internal/qbo"
	"github.com/eccentricworkshop/receiptflow/internal/region"
	"github.com/eccentricworkshop/receiptflow/internal/report"
	"github.com/eccentricworkshop/receiptflow/internal/service"
	"github.com/eccentricworkshop/receiptflow/internal/sheets"
)

// receiptDumpPath is where receipt_debug writes the raw platform JSON.
const receiptDumpPath = "sales_receipts.json"

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return common.NewUserError("configuration error", err)
	}

	days := viper.GetInt("export.days")
	if days <= 0 {
		days = cfg.DefaultDays
	}
	window := dateWindow(time.Now(), days)

	slog.Info(cli.FormatTitle("Exporting QuickBooks sales receipts"))
	slog.Info("Date range",
		"start", window.Start.Format("2006-01-02"),
		"end", window.End.Format("2006-01-02"),
		"days", days)

	client := qbo.NewClient(cfg)
	if err := client.Authenticate(ctx); err != nil {
		// Fatal: no query is ever issued with a stale token.
		return common.NewUserError("token refresh failed", err)
	}

	receipts, err := client.FetchReceipts(ctx, window)
	if err != nil {
		// A failed query degrades to an empty report instead of aborting,
		// so the warning has to be loud: zero rows may mean an outage, not
		// zero sales.
		slog.Warn(cli.FormatWarning("Receipt fetch failed, continuing with zero receipts"), "error", err)
		receipts = nil
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Fetched %d receipts", len(receipts))))

	if cfg.ReceiptDebug {
		if err := client.DumpRaw(receiptDumpPath); err != nil {
			slog.Warn("Failed to write receipt dump", "error", err)
		}
	}

	resolver, err := region.NewResolver()
	if err != nil {
		return fmt.Errorf("building region tables: %w", err)
	}

	groups := buildGroups(receipts, resolver, cfg)

	writer := report.NewXLSXWriter(viper.GetString("export.output"), slog.Default())
	if err := writer.Write(ctx, groups, window); err != nil {
		return common.NewUserError("report write failed", err)
	}

	if viper.GetBool("export.sheets") {
		exportToSheets(ctx, groups, window)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf(
		"Sales receipts from the last %d days saved to %s (%d rows)",
		days, writer.Path(), len(groups))))

	return nil
}

// dateWindow computes the inclusive trailing window ending today.
func dateWindow(now time.Time, days int) service.DateRange {
	return service.DateRange{
		Start: now.AddDate(0, 0, -days),
		End:   now,
	}
}

// buildGroups resolves each receipt's region and folds it into the
// aggregator, showing progress for larger windows.
func buildGroups(receipts []model.Receipt, resolver *region.Resolver, cfg config.Config) []*model.ReceiptGroup {
	agg := report.NewAggregator(resolver, cfg.ShippingItemID)

	var bar *progressbar.ProgressBar
	if len(receipts) > 0 {
		bar = newProgressBar(len(receipts))
	}

	for _, receipt := range receipts {
		if cfg.AddressDebug {
			slog.Info("Receipt addresses",
				"customer", receipt.Customer,
				"billing", fmt.Sprintf("%+v", receipt.BillAddr),
				"shipping", fmt.Sprintf("%+v", receipt.ShipAddr))
		}
		agg.Add(receipt)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return agg.Groups()
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Aggregating receipts...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// exportToSheets pushes the same rows to Google Sheets. Failures here are
// warnings: the workbook on disk is the system of record.
func exportToSheets(ctx context.Context, groups []*model.ReceiptGroup, window service.DateRange) {
	sheetsCfg := sheets.DefaultConfig()
	if err := sheetsCfg.LoadFromEnv(); err != nil {
		slog.Warn(cli.FormatWarning("Sheets export skipped"), "error", err)
		return
	}

	writer, err := sheets.NewWriter(ctx, sheetsCfg, slog.Default())
	if err != nil {
		slog.Warn(cli.FormatWarning("Sheets export skipped"), "error", err)
		return
	}

	if err := writer.Write(ctx, groups, window); err != nil {
		slog.Warn(cli.FormatWarning("Sheets export failed, workbook on disk is unaffected"), "error", err)
		return
	}

	slog.Info(cli.FormatSuccess("Exported report to Google Sheets"))
}
