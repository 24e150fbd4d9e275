package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// Hojas del libro de salidas.
const (
	SheetAdvances         = "ADVANCE_COMMISSIONS"
	SheetRegulars         = "REGULAR_COMMISSIONS"
	SheetReconciliations  = "RECONCILIATIONS"
	SheetReconSummary     = "RECONCILIATION_SUMMARY"
	SheetReconRejected    = "RECONCILIATION_REJECTED"
	SheetWarnings         = "WARNINGS"
	outputFilePrefix      = "Comissoes_Recebimento_"
	dateFormat            = "2006-01-02"
	warningUnmapped       = "UNMAPPED_DOCUMENT"
	warningSkipped        = "SKIPPED_PAYMENT"
	warningFactorFallback = "FCMP_FALLBACK"
)

var (
	commissionHeaders = []string{
		"process_id", "document", "payment_date", "paid_amount", "collaborator", "role",
		"tcmp", "factor", "commission", "entry_type", "computation_period", "invoicing_period", "factor_fallback",
	}
	reconciliationHeaders = []string{
		"process_id", "collaborator", "tcmp", "fcmp", "commission_advanced", "commission_at_actual",
		"factor_delta", "adjustment", "invoicing_period", "factor_fallback",
	}
	summaryHeaders = []string{
		"process_id", "collaborators", "total_advanced", "total_at_actual", "net_adjustment", "invoicing_period",
	}
	warningHeaders = []string{
		"kind", "process_id", "document", "candidate_key", "collaborator", "amount", "date", "reason",
	}
)

// OutputWriter escribe Comissoes_Recebimento_MM_YYYY.xlsx en Dir.
type OutputWriter struct {
	Dir string
}

// NewOutputWriter crea el escritor sobre dir.
func NewOutputWriter(dir string) *OutputWriter {
	return &OutputWriter{Dir: dir}
}

// Path ruta del libro de un período.
func (w *OutputWriter) Path(p entity.Period) string {
	return filepath.Join(w.Dir, outputFilePrefix+p.FileSuffix()+".xlsx")
}

// Write genera todas las hojas; sin datos quedan solo los encabezados.
func (w *OutputWriter) Write(ctx context.Context, report *receivables.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetAdvances, commissionHeaders, commissionRows(report.Advances)},
		{SheetRegulars, commissionHeaders, commissionRows(report.Regulars)},
		{SheetReconciliations, reconciliationHeaders, reconciliationRows(report.Reconciliations)},
		{SheetReconSummary, summaryHeaders, summaryRows(report.Summaries)},
		{SheetReconRejected, append(append([]string(nil), reconciliationHeaders...), "reasons"), rejectedRows(report.RejectedLines)},
		{SheetLedger, ledgerHeaders, nil},
		{SheetWarnings, warningHeaders, warningRows(report)},
	}
	ledgerRows, err := outputLedgerRows(report.Ledger)
	if err != nil {
		return err
	}
	sheets[5].rows = ledgerRows

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return err
		}
		if err := writeRow(f, s.name, 1, toAny(s.headers)); err != nil {
			return err
		}
		last := cellName(len(s.headers), 1)
		if err := f.SetCellStyle(s.name, "A1", last, bold); err != nil {
			return err
		}
		for j, row := range s.rows {
			if err := writeRow(f, s.name, j+2, row); err != nil {
				return fmt.Errorf("hoja %s fila %d: %w", s.name, j+2, err)
			}
		}
	}

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("crear directorio de salida: %w", err)
	}
	if err := f.SaveAs(w.Path(report.Period)); err != nil {
		return fmt.Errorf("guardar salidas: %w", err)
	}
	return nil
}

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func commissionRows(lines []entity.CommissionLine) [][]any {
	out := make([][]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, []any{
			l.ProcessID, l.Document, day(l.PaymentDate), num(l.PaidAmount), l.Collaborator, l.Role,
			num(l.TCMP), num(l.Factor), num(l.CommissionAmount), string(l.EntryType),
			l.ComputationPeriod.String(), l.InvoicingPeriod.String(), l.FactorFallback,
		})
	}
	return out
}

func reconciliationRow(l entity.ReconciliationLine) []any {
	return []any{
		l.ProcessID, l.Collaborator, num(l.TCMP), num(l.FCMP), num(l.CommissionAdvanced),
		num(l.CommissionAtActual), num(l.FactorDelta), num(l.AdjustmentAmount),
		l.InvoicingPeriod.String(), l.FactorFallback,
	}
}

func reconciliationRows(lines []entity.ReconciliationLine) [][]any {
	out := make([][]any, 0, len(lines))
	for _, l := range lines {
		out = append(out, reconciliationRow(l))
	}
	return out
}

func summaryRows(sums []entity.ReconciliationSummary) [][]any {
	out := make([][]any, 0, len(sums))
	for _, s := range sums {
		out = append(out, []any{
			s.ProcessID, s.Collaborators, num(s.TotalAdvanced), num(s.TotalAtActual),
			num(s.NetAdjustment), s.InvoicingPeriod.String(),
		})
	}
	return out
}

func rejectedRows(rejected []entity.RejectedReconciliation) [][]any {
	out := make([][]any, 0, len(rejected))
	for _, r := range rejected {
		out = append(out, append(reconciliationRow(r.Line), strings.Join(r.Reasons, "; ")))
	}
	return out
}

func outputLedgerRows(states []entity.ProcessState) ([][]any, error) {
	out := make([][]any, 0, len(states))
	for _, st := range states {
		rec, err := encodeLedgerRow(st)
		if err != nil {
			return nil, fmt.Errorf("codificar %s: %w", st.ProcessID, err)
		}
		out = append(out, toAny(rec))
	}
	return out, nil
}

func warningRows(r *receivables.RunReport) [][]any {
	var out [][]any
	for _, u := range r.Unmapped {
		out = append(out, []any{warningUnmapped, "", u.Document, u.CandidateKey, "", num(u.Amount), day(u.PaymentDate), string(u.Reason)})
	}
	for _, s := range r.Skipped {
		out = append(out, []any{warningSkipped, s.ProcessID, s.Document, "", "", num(s.Amount), day(s.PaymentDate), s.Reason})
	}
	for _, l := range r.FactorFallbacks() {
		out = append(out, []any{warningFactorFallback, l.ProcessID, l.Document, "", l.Collaborator,
			num(l.CommissionAmount), day(l.PaymentDate), "FCMP ausente, factor 1.0"})
	}
	return out
}
