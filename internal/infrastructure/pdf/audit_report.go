// Package pdf genera el reporte de auditoría de cada ejecución mensual.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + período │ run_id + resultado               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: pagos / adelantos / regulares / ajuste neto        │
//	│  TABLA: Colaborador | Cargo | Adelanto | Regular | Ajuste    │
//	│  TABLA: Proceso | Colab. | Adelantado | Real | Ajuste        │
//	│  AVISOS: documentos sin proceso, pagos omitidos, rechazos    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var money = message.NewPrinter(language.BrazilianPortuguese)

// ── Reporter ──────────────────────────────────────────────────────────────────

// AuditReporter implementa receivables.AuditReporter escribiendo
// Auditoria_Recebimento_MM_YYYY.pdf en Dir.
type AuditReporter struct {
	Dir string
}

// NewAuditReporter construye el generador.
func NewAuditReporter(dir string) *AuditReporter { return &AuditReporter{Dir: dir} }

// Path ruta del PDF de un período.
func (g *AuditReporter) Path(p entity.Period) string {
	return filepath.Join(g.Dir, "Auditoria_Recebimento_"+p.FileSuffix()+".pdf")
}

// Render genera y guarda el PDF.
func (g *AuditReporter) Render(ctx context.Context, report *receivables.RunReport) error {
	b, err := g.Build(ctx, report)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return fmt.Errorf("pdf: crear directorio: %w", err)
	}
	if err := os.WriteFile(g.Path(report.Period), b, 0o644); err != nil {
		return fmt.Errorf("pdf: guardar: %w", err)
	}
	return nil
}

// Build genera el PDF y devuelve sus bytes.
func (g *AuditReporter) Build(_ context.Context, report *receivables.RunReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Auditoria de comissões por recebimento", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("Totais por colaborador"))
	m.AddRows(tableHeader([]string{"Colaborador", "Cargo", "Adiantamento", "Regular", "Ajuste", "Líquido"}, []int{3, 2, 2, 2, 1, 2}))
	for _, r := range collaboratorRows(report.CollaboratorTotals()) {
		m.AddRows(r)
	}

	if len(report.Summaries) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(sectionTitle("Reconciliação por processo"))
		m.AddRows(tableHeader([]string{"Processo", "Colab.", "Adiantado", "Real (FCMP)", "Ajuste líquido", "Faturamento"}, []int{2, 1, 2, 2, 3, 2}))
		for _, r := range reconciliationRows(report.Summaries) {
			m.AddRows(r)
		}
	}

	m.AddRows(line.NewRow(3))
	for _, r := range warningRows(report) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r *receivables.RunReport) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("COMISSÕES POR RECEBIMENTO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Período: "+r.Period.String(), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Execução "+r.RunID, props.Text{
				Size: 7, Align: align.Right, Color: colorGray, Top: 1,
			}),
			text.New(string(r.Outcome), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
		),
	)
}

func summaryRow(r *receivables.RunReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 10, Top: 6})
	}
	return row.New(14).Add(
		col.New(3).Add(label("Pagamentos"), value(fmt.Sprintf("%d", r.PaymentRows))),
		col.New(3).Add(label("Adiantamentos"), value(formatMoney(r.TotalCommission(entity.EntryAdvance)))),
		col.New(3).Add(label("Regulares"), value(formatMoney(r.TotalCommission(entity.EntryRegular)))),
		col.New(3).Add(label("Ajuste líquido"), value(formatMoney(r.NetAdjustment()))),
	)
}

func sectionTitle(s string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func cellText(s string, a align.Type) core.Component {
	return text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1})
}

func collaboratorRows(totals []receivables.CollaboratorTotal) []core.Row {
	out := make([]core.Row, 0, len(totals))
	for _, t := range totals {
		out = append(out, row.New(6).Add(
			col.New(3).Add(cellText(t.Collaborator, align.Left)),
			col.New(2).Add(cellText(t.Role, align.Right)),
			col.New(2).Add(cellText(formatMoney(t.Advance), align.Right)),
			col.New(2).Add(cellText(formatMoney(t.Regular), align.Right)),
			col.New(1).Add(cellText(formatMoney(t.Adjustment), align.Right)),
			col.New(2).Add(cellText(formatMoney(t.Net()), align.Right)),
		))
	}
	return out
}

func reconciliationRows(sums []entity.ReconciliationSummary) []core.Row {
	out := make([]core.Row, 0, len(sums))
	for _, s := range sums {
		out = append(out, row.New(6).Add(
			col.New(2).Add(cellText(s.ProcessID, align.Left)),
			col.New(1).Add(cellText(fmt.Sprintf("%d", s.Collaborators), align.Right)),
			col.New(2).Add(cellText(formatMoney(s.TotalAdvanced), align.Right)),
			col.New(2).Add(cellText(formatMoney(s.TotalAtActual), align.Right)),
			col.New(3).Add(cellText(formatMoney(s.NetAdjustment), align.Right)),
			col.New(2).Add(cellText(s.InvoicingPeriod.String(), align.Right)),
		))
	}
	return out
}

func warningRows(r *receivables.RunReport) []core.Row {
	counts := []struct {
		label string
		n     int
	}{
		{"Documentos sem processo", len(r.Unmapped)},
		{"Pagamentos ignorados", len(r.Skipped)},
		{"Linhas com FCMP ausente (fator 1,0)", len(r.FactorFallbacks())},
		{"Reconciliações rejeitadas (revisão manual)", len(r.RejectedLines)},
	}
	out := []core.Row{sectionTitle("Avisos")}
	for _, c := range counts {
		color := colorGray
		if c.n > 0 {
			color = colorAlert
		}
		out = append(out, row.New(5).Add(
			col.New(9).Add(text.New(c.label, props.Text{Size: 8, Top: 1, Color: color})),
			col.New(3).Add(text.New(fmt.Sprintf("%d", c.n), props.Text{Size: 8, Top: 1, Align: align.Right, Color: color})),
		))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney "R$ 1.234,56".
func formatMoney(d decimal.Decimal) string {
	return money.Sprintf("R$ %.2f", d.InexactFloat64())
}
