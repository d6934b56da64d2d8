package reporting

import (
	"context"
	"io"
	"strings"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/export"
	"github.com/google/uuid"
)

const exportDateFormat = "2006-01-02"

// ExportCash writes the cash reconciliation and both duplicate receipt views
// as an xlsx workbook
func (f *Facade) ExportCash(ctx context.Context, rng shared.DateRange, w io.Writer) error {
	report, err := f.detect.Cash(ctx, rng)
	if err != nil {
		return err
	}
	return export.WriteWorkbook(w,
		ledgerSheet(&report.Reconciliation),
		summarySheet(&report.Reconciliation),
		receiptsSheet("Receipts by order", report.DuplicateReceipts),
		receiptsSheet("Receipts by receivable", report.DuplicateSettlements),
	)
}

func ledgerSheet(rec *consistency.CashReconciliation) export.Sheet {
	sheet := export.Sheet{
		Name:    "Ledger",
		Headers: []string{"Date", "Type", "Origin", "Origin ID", "Sales Order", "Description", "Amount", "Running Balance", "Flags"},
		Rows:    make([][]any, 0, len(rec.Lines)),
	}
	for _, line := range rec.Lines {
		flags := make([]string, len(line.Flags))
		for i, fl := range line.Flags {
			flags[i] = string(fl)
		}
		sheet.Rows = append(sheet.Rows, []any{
			line.Date.Format(exportDateFormat),
			string(line.Type),
			string(line.Origin),
			optionalID(line.OriginID),
			optionalID(line.SalesOrderID),
			line.Description,
			line.Amount.InexactFloat64(),
			line.RunningBalance.InexactFloat64(),
			strings.Join(flags, ", "),
		})
	}
	return sheet
}

func summarySheet(rec *consistency.CashReconciliation) export.Sheet {
	return export.Sheet{
		Name:    "Summary",
		Headers: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Opening balance", rec.OpeningBalance.InexactFloat64()},
			{"Total in", rec.TotalIn.InexactFloat64()},
			{"Total out", rec.TotalOut.InexactFloat64()},
			{"Derived balance", rec.DerivedBalance.InexactFloat64()},
			{"Final balance", rec.FinalBalance.InexactFloat64()},
			{"Self check", rec.SelfCheckOK},
			{"Investor funded payables", rec.InvestorFunded},
			{"Receipts of canceled orders", rec.CanceledReceipt},
		},
	}
}

func receiptsSheet(name string, groups []consistency.ReceiptGroup) export.Sheet {
	sheet := export.Sheet{
		Name:    name,
		Headers: []string{"Sales Order", "Receivable", "Expected", "Received", "Count", "Verdict"},
		Rows:    make([][]any, 0, len(groups)),
	}
	for _, g := range groups {
		sheet.Rows = append(sheet.Rows, []any{
			optionalID(g.SalesOrderID),
			optionalID(g.ReceivableID),
			g.Expected.InexactFloat64(),
			g.Received.InexactFloat64(),
			g.Count,
			string(g.Verdict),
		})
	}
	return sheet
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
