package receivables

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/commission"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/domain/ledger"
	"github.com/jhoicas/receivables-commissions/internal/domain/reconciliation"
	"github.com/jhoicas/receivables-commissions/internal/domain/repository"
	"github.com/jhoicas/receivables-commissions/pkg/logger"
)

// Settings parámetros de mapeo y detección de facturación.
type Settings struct {
	AdvancePrefix  string // prefijo de documentos de adelanto (ej. "COT")
	InvoicedStatus string // estado comercial que indica facturado (ej. "FATURADO")
}

// BatchOrchestrator ejecuta una corrida mensual:
//
//	LOAD_INPUTS → LOAD_LEDGER → MAP_AND_PROCESS_PAYMENTS →
//	COMPUTE_RATES_FOR_NEWLY_INVOICED → RECONCILE → EMIT_OUTPUTS
//
// Las filas de pago se procesan en orden de origen (una fila puede depender del
// estado escrito por otra anterior del mismo proceso). El ledger se persiste al
// final y es el punto de commit: si algo falla antes, el snapshot previo queda intacto.
type BatchOrchestrator struct {
	inputs   InputSource
	store    repository.LedgerRepository
	rates    *RateCalculator
	output   OutputWriter
	audit    AuditReporter
	metrics  MetricsRecorder
	settings Settings
	log      *logger.Logger
	now      func() time.Time
	newRunID func() string

	mu sync.Mutex
}

// Option configura el orquestador.
type Option func(*BatchOrchestrator)

// WithAuditReporter agrega el reporte de auditoría.
func WithAuditReporter(a AuditReporter) Option { return func(o *BatchOrchestrator) { o.audit = a } }

// WithMetrics agrega el registro de métricas.
func WithMetrics(m MetricsRecorder) Option { return func(o *BatchOrchestrator) { o.metrics = m } }

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option { return func(o *BatchOrchestrator) { o.now = now } }

// WithRunIDGenerator reemplaza el generador de ids de ejecución (tests).
func WithRunIDGenerator(f func() string) Option { return func(o *BatchOrchestrator) { o.newRunID = f } }

// NewBatchOrchestrator construye el orquestador.
func NewBatchOrchestrator(
	inputs InputSource,
	store repository.LedgerRepository,
	rates *RateCalculator,
	output OutputWriter,
	settings Settings,
	log *logger.Logger,
	opts ...Option,
) *BatchOrchestrator {
	if log == nil {
		log = logger.Nop()
	}
	o := &BatchOrchestrator{
		inputs:   inputs,
		store:    store,
		rates:    rates,
		output:   output,
		settings: settings,
		log:      log,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run estado interno de una ejecución.
type run struct {
	report  *RunReport
	ledger  *ledger.Ledger
	dataset *commission.CommercialDataset
	log     *logger.Logger
}

// Run ejecuta el período. Devuelve el reporte también en caso de error (Outcome FAILED).
// Dos ejecuciones simultáneas sobre el mismo orquestador devuelven ErrRunInProgress.
func (o *BatchOrchestrator) Run(ctx context.Context, period entity.Period) (report *RunReport, err error) {
	if !o.mu.TryLock() {
		return nil, domain.ErrRunInProgress
	}
	defer o.mu.Unlock()

	r := &run{report: &RunReport{RunID: o.newRunID(), Period: period, StartedAt: o.now()}}
	r.log = o.log.ForRun(r.report.RunID, period.String())
	r.log.Info().Msg("inicio de ejecución de comisiones por recebimiento")

	defer func() {
		r.report.FinishedAt = o.now()
		if err != nil {
			r.report.Outcome = OutcomeFailed
			r.log.Error().Err(err).Str("stage", string(r.report.Stage)).Msg("ejecución fallida")
		} else {
			r.log.Info().
				Str("outcome", string(r.report.Outcome)).
				Int("advances", len(r.report.Advances)).
				Int("regulars", len(r.report.Regulars)).
				Int("reconciliations", len(r.report.Reconciliations)).
				Int("unmapped", len(r.report.Unmapped)).
				Int("skipped", len(r.report.Skipped)).
				Msg("ejecución finalizada")
		}
		if o.metrics != nil {
			o.metrics.ObserveRun(r.report, r.report.FinishedAt.Sub(r.report.StartedAt), err)
		}
	}()

	// ── 1. Entradas ──────────────────────────────────────────────────────────
	o.enter(r, StageLoadInputs)
	rows, err := o.inputs.LoadFinancial(ctx, period)
	if err != nil {
		return r.report, fmt.Errorf("cargar razón financiero: %w", err)
	}
	if err := validateRows(rows); err != nil {
		return r.report, err
	}
	r.report.PaymentRows = len(rows)
	if len(rows) == 0 {
		r.report.Outcome = OutcomeEmpty
		r.log.Info().Msg("sin pagos en el período, se emiten salidas vacías")
		o.enter(r, StageEmitOutputs)
		if err := o.emit(ctx, r); err != nil {
			return r.report, err
		}
		return r.report, nil
	}
	items, err := o.inputs.LoadCommercial(ctx)
	if err != nil {
		return r.report, fmt.Errorf("cargar base comercial: %w", err)
	}
	r.dataset = commission.NewCommercialDataset(items)

	// ── 2. Ledger ────────────────────────────────────────────────────────────
	o.enter(r, StageLoadLedger)
	snapshot, err := o.store.Load(ctx)
	if err != nil {
		return r.report, fmt.Errorf("cargar ledger: %w", err)
	}
	r.ledger, err = ledger.FromSnapshot(snapshot, ledger.WithClock(o.now))
	if err != nil {
		return r.report, err
	}
	r.log.Info().Int("processes", r.ledger.Len()).Msg("ledger cargado")

	// ── 3. Pagos ─────────────────────────────────────────────────────────────
	o.enter(r, StageProcessPayments)
	mapper := commission.NewDocumentMapper(o.settings.AdvancePrefix, r.dataset)
	for _, row := range rows {
		m := mapper.Map(row.Document)
		if !m.Mapped() {
			r.report.Unmapped = append(r.report.Unmapped, entity.UnmappedDocument{
				Document:     row.Document,
				CandidateKey: m.CandidateKey,
				Reason:       m.Reason,
				PaymentDate:  row.SettlementDate,
				Amount:       row.NetAmount,
			})
			r.log.Warn().Str("document", row.Document).Str("reason", string(m.Reason)).Msg("documento sin proceso")
			continue
		}
		if err := o.processPayment(ctx, r, row, m); err != nil {
			return r.report, err
		}
	}

	// ── 4. Tasas de procesos facturados sin pago en esta corrida ─────────────
	o.enter(r, StageComputeRates)
	o.freezeInvoiced(ctx, r)

	// ── 5. Reconciliación ────────────────────────────────────────────────────
	o.enter(r, StageReconcile)
	res := reconciliation.Run(r.ledger, period)
	for _, rej := range res.Rejected {
		r.log.Warn().
			Str("process_id", rej.Line.ProcessID).
			Str("collaborator", rej.Line.Collaborator).
			Strs("reasons", rej.Reasons).
			Msg("línea de reconciliación rechazada")
	}
	for _, id := range res.Reconciled {
		if err := r.ledger.MarkReconciled(id); err != nil {
			return r.report, fmt.Errorf("marcar reconciliado %s: %w", id, err)
		}
	}
	r.report.Reconciliations = res.Lines
	r.report.RejectedLines = res.Rejected
	r.report.Summaries = res.Summaries
	r.report.ReconciledProcess = res.Reconciled

	// ── 6. Salidas ───────────────────────────────────────────────────────────
	o.enter(r, StageEmitOutputs)
	r.report.Ledger = r.ledger.Export()
	r.report.Outcome = OutcomeSuccess
	if err := o.emit(ctx, r); err != nil {
		return r.report, err
	}
	if err := o.store.Save(ctx, r.report.Ledger); err != nil {
		return r.report, fmt.Errorf("persistir ledger: %w", err)
	}
	return r.report, nil
}

func (o *BatchOrchestrator) enter(r *run, s Stage) {
	r.report.Stage = s
	r.log.Debug().Str("stage", string(s)).Msg("etapa")
}

func (o *BatchOrchestrator) emit(ctx context.Context, r *run) error {
	if err := o.output.Write(ctx, r.report); err != nil {
		return fmt.Errorf("escribir salidas: %w", err)
	}
	if o.audit != nil {
		if err := o.audit.Render(ctx, r.report); err != nil {
			r.log.Error().Err(err).Msg("reporte de auditoría no generado")
		}
	}
	return nil
}

// validateRows exige fecha y monto positivo en cada fila financiera.
func validateRows(rows []entity.FinancialRow) error {
	var errs []error
	for i, row := range rows {
		if row.SettlementDate.IsZero() {
			errs = append(errs, fmt.Errorf("fila %d (%s): fecha de baja ausente", rowNumber(i, row), row.Document))
		}
		if !row.NetAmount.IsPositive() {
			errs = append(errs, fmt.Errorf("fila %d (%s): monto %s no positivo", rowNumber(i, row), row.Document, row.NetAmount))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

func rowNumber(i int, row entity.FinancialRow) int {
	if row.SourceRow > 0 {
		return row.SourceRow
	}
	return i + 1
}

// processPayment aplica un pago mapeado. Errores recuperables se convierten en
// SkippedPayment; solo devuelve error ante inconsistencias del ledger.
func (o *BatchOrchestrator) processPayment(ctx context.Context, r *run, row entity.FinancialRow, m commission.Mapping) error {
	pid := m.ProcessID
	pay := commission.Payment{
		ProcessID: pid,
		Document:  row.Document,
		Amount:    row.NetAmount,
		Date:      row.SettlementDate,
		Period:    r.report.Period,
	}
	skip := func(reason string) {
		r.report.Skipped = append(r.report.Skipped, entity.SkippedPayment{
			ProcessID: pid, Document: row.Document, EntryType: m.Kind,
			Amount: row.NetAmount, PaymentDate: row.SettlementDate, Reason: reason,
		})
		r.log.Warn().Str("process_id", pid).Str("document", row.Document).Str("reason", reason).Msg("pago omitido")
	}

	// El proceso entra al ledger aunque el pago se omita, así la segunda pasada lo ve.
	total, _ := r.dataset.TotalValue(pid)
	if _, err := r.ledger.CreateIfAbsent(pid, total); err != nil {
		return err
	}

	stored, frozen := r.ledger.GetRates(pid)
	var (
		tcmp, fcmp entity.RateMap
		roles      map[string]string
		invoicing  entity.Period
		toFreeze   *RateResult
	)
	if frozen {
		tcmp, fcmp, roles, invoicing = stored.TCMP, stored.FCMP, stored.Roles, stored.InvoicingPeriod
	} else {
		// Adelanto: tasas best-effort, no se congelan. Regular: primera facturación observada.
		res, err := o.rates.Calculate(ctx, r.dataset, pid)
		if err != nil {
			skip(err.Error())
			return nil
		}
		if res.HasCollaborators() && !res.HasPositiveRate() {
			skip(fmt.Sprintf("%s: TCMP cero para todos los colaboradores", domain.ErrNoRateData))
			return nil
		}
		tcmp, fcmp, roles = res.TCMP, res.FCMP, res.Roles
		if m.Kind == entity.EntryRegular {
			invoicing = r.report.Period
			if res.HasCollaborators() {
				toFreeze = &res
			}
		}
	}
	if frozen && len(tcmp) > 0 && !anyPositive(tcmp) {
		skip(fmt.Sprintf("%s: TCMP congelado en cero", domain.ErrNoRateData))
		return nil
	}

	if toFreeze != nil {
		if err := r.ledger.SetRates(pid, ledger.Rates{
			TCMP: toFreeze.TCMP, FCMP: toFreeze.FCMP, Roles: toFreeze.Roles, InvoicingPeriod: invoicing,
		}); err != nil {
			return fmt.Errorf("congelar tasas %s: %w", pid, err)
		}
		r.report.RatesFrozen = append(r.report.RatesFrozen, pid)
		r.log.Info().Str("process_id", pid).Msg("tasas congeladas en pago regular")
	}

	switch m.Kind {
	case entity.EntryAdvance:
		lines := commission.CalculateAdvance(pay, tcmp, roles)
		if err := r.ledger.RecordAdvance(pid, pay.Amount, commission.SplitByCollaborator(lines), pay.Date); err != nil {
			return fmt.Errorf("registrar adelanto %s: %w", pid, err)
		}
		r.report.Advances = append(r.report.Advances, lines...)
	case entity.EntryRegular:
		lines := commission.CalculateRegular(pay, tcmp, fcmp, roles, invoicing)
		for _, l := range lines {
			if l.FactorFallback {
				r.log.Warn().Str("process_id", pid).Str("collaborator", l.Collaborator).Msg("FCMP ausente o no positivo, se usa 1.0")
			}
		}
		if err := r.ledger.RecordRegular(pid, pay.Amount, commission.SplitByCollaborator(lines), pay.Date); err != nil {
			return fmt.Errorf("registrar pago regular %s: %w", pid, err)
		}
		r.report.Regulars = append(r.report.Regulars, lines...)
	}
	return nil
}

// freezeInvoiced congela tasas de procesos del ledger facturados en el período.
func (o *BatchOrchestrator) freezeInvoiced(ctx context.Context, r *run) {
	for _, pid := range r.ledger.ListProcessIDs() {
		if _, frozen := r.ledger.GetRates(pid); frozen {
			continue
		}
		if !r.dataset.InvoicedIn(pid, r.report.Period, o.settings.InvoicedStatus) {
			continue
		}
		res, err := o.rates.Calculate(ctx, r.dataset, pid)
		if err != nil {
			r.log.Warn().Err(err).Str("process_id", pid).Msg("no se pudieron calcular tasas del proceso facturado")
			continue
		}
		if !res.HasCollaborators() {
			continue
		}
		if err := r.ledger.SetRates(pid, ledger.Rates{
			TCMP: res.TCMP, FCMP: res.FCMP, Roles: res.Roles, InvoicingPeriod: r.report.Period,
		}); err != nil {
			r.log.Warn().Err(err).Str("process_id", pid).Msg("tasas no congeladas")
			continue
		}
		r.report.RatesFrozen = append(r.report.RatesFrozen, pid)
	}
}

func anyPositive(m entity.RateMap) bool {
	for _, v := range m {
		if v.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}
