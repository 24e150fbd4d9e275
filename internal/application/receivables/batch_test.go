package receivables_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// ── Escenario A: adelanto antes de facturar ──────────────────────────────────

func TestRun_EscenarioA_Adelanto(t *testing.T) {
	h := newHarness(commercialItems(false))
	h.inputs.rows[march] = []entity.FinancialRow{advanceRow(march, "7500")}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, receivables.OutcomeSuccess, report.Outcome)
	assert.Equal(t, "run-test", report.RunID)

	require.Len(t, report.Advances, 1)
	assert.True(t, report.Advances[0].CommissionAmount.Equal(dec("375")), "comisión=%s", report.Advances[0].CommissionAmount)
	assert.Equal(t, "Consultor", report.Advances[0].Role)
	assert.Empty(t, report.Reconciliations, "sin facturación no hay reconciliación")

	saved, _ := h.store.Load(context.Background())
	s, ok := findState(saved, "100002")
	require.True(t, ok)
	assert.True(t, s.TotalAdvanced.Equal(dec("7500")))
	assert.Equal(t, entity.PaymentPartial, s.PaymentStatus())
	assert.Equal(t, entity.RateCalcPending, s.RateCalcStatus, "las tasas del adelanto no se congelan")
	assert.True(t, s.AdvancedCommission["Ana"].Equal(dec("375")))
	assert.Equal(t, 1, h.store.Saves())
	require.Len(t, h.output.reports, 1)
}

// ── Escenario B: adelanto y facturación en el mismo mes ──────────────────────

func TestRun_EscenarioB_ReconciliacionNegativa(t *testing.T) {
	h := newHarness(commercialItems(true))
	h.inputs.rows[march] = []entity.FinancialRow{advanceRow(march, "7500")}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)

	assert.Equal(t, []string{"100002"}, report.RatesFrozen, "la segunda pasada congela el proceso facturado")
	require.Len(t, report.Reconciliations, 1)
	line := report.Reconciliations[0]
	assert.True(t, line.FCMP.Equal(dec("0.6")))
	assert.True(t, line.AdjustmentAmount.Equal(dec("-150")), "ajuste=%s", line.AdjustmentAmount)
	assert.True(t, report.NetAdjustment().Equal(dec("-150")))
	require.Len(t, report.Summaries, 1)

	s, _ := findState(report.Ledger, "100002")
	assert.Equal(t, entity.ReconciliationCalculated, s.ReconciliationStatus)
	assert.Equal(t, march, s.InvoicingPeriod)
}

// ── Reconciliación como máximo una vez ───────────────────────────────────────

func TestRun_ReconciliacionIdempotente(t *testing.T) {
	h := newHarness(commercialItems(true))
	h.inputs.rows[march] = []entity.FinancialRow{advanceRow(march, "7500")}
	orch := h.orchestrator()

	first, err := orch.Run(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, first.Reconciliations, 1)

	second, err := orch.Run(context.Background(), march)
	require.NoError(t, err)
	assert.Empty(t, second.Reconciliations, "el segundo run del mismo mes no repite el ajuste")
	assert.Empty(t, second.RatesFrozen)

	s, _ := findState(second.Ledger, "100002")
	assert.True(t, s.FCMP["Ana"].Equal(dec("0.6")), "las tasas congeladas no cambian")
}

// ── Escenario C: adelanto previo + pago regular ──────────────────────────────

func TestRun_EscenarioC_RegularConFactorUno(t *testing.T) {
	h := newHarness(commercialItems(true))
	h.goals["Ana"] = dec("1.0")
	h.inputs.rows[february] = []entity.FinancialRow{advanceRow(february, "7500")}
	h.inputs.rows[march] = []entity.FinancialRow{regularRow(march, "10000")}
	orch := h.orchestrator()

	feb, err := orch.Run(context.Background(), february)
	require.NoError(t, err)
	assert.Empty(t, feb.Reconciliations, "febrero no es el mes de facturación")

	mar, err := orch.Run(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, mar.Regulars, 1)
	assert.True(t, mar.Regulars[0].CommissionAmount.Equal(dec("500")))
	assert.Equal(t, march, mar.Regulars[0].InvoicingPeriod)
	assert.Equal(t, []string{"100002"}, mar.RatesFrozen)

	require.Len(t, mar.Reconciliations, 1, "el ajuste cero se registra")
	assert.True(t, mar.Reconciliations[0].AdjustmentAmount.IsZero())

	s, _ := findState(mar.Ledger, "100002")
	assert.True(t, s.TotalPaidAccumulated.Equal(dec("17500")))
	assert.True(t, s.TotalCommissionAccumulated.Equal(dec("875")))
}

// ── Escenario D: sin colaboradores ───────────────────────────────────────────

func TestRun_EscenarioD_SinColaboradores(t *testing.T) {
	h := newHarness(commercialItems(false))
	h.ident = fakeIdentifier{}
	h.inputs.rows[march] = []entity.FinancialRow{regularRow(march, "10000")}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)
	assert.Empty(t, report.Regulars)
	assert.Empty(t, report.Skipped, "la ausencia de colaboradores no es un aviso")
	assert.Empty(t, report.Unmapped)

	s, ok := findState(report.Ledger, "100002")
	require.True(t, ok)
	assert.True(t, s.TotalRegularPaid.Equal(dec("10000")), "el pago igual se acumula")
	assert.True(t, s.TotalCommissionAccumulated.IsZero())
}

// ── Casos recuperables ───────────────────────────────────────────────────────

func TestRun_DocumentoSinProcesoYSinDatosDeTasa(t *testing.T) {
	h := newHarness(commercialItems(false))
	h.inputs.rows[march] = []entity.FinancialRow{
		{Document: "12", NetAmount: dec("10"), SettlementDate: day(march, 1)},
		{Document: "ADV999999", NetAmount: dec("10"), SettlementDate: day(march, 2)},
		advanceRow(march, "100"),
	}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, report.Unmapped, 1)
	assert.Equal(t, entity.ReasonTooShort, report.Unmapped[0].Reason)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "999999", report.Skipped[0].ProcessID)
	s, exists := findState(report.Ledger, "999999")
	require.True(t, exists, "el proceso del pago omitido queda registrado")
	assert.True(t, s.TotalPaidAccumulated.IsZero(), "un pago omitido no acumula")
	assert.True(t, s.TotalCommissionAccumulated.IsZero())

	require.Len(t, report.Advances, 1, "el resto del batch continúa")
}

func TestRun_TasaCeroOmitePago(t *testing.T) {
	h := newHarness(commercialItems(false))
	h.ident["100002"] = []entity.Collaborator{{Name: "Ana", Role: "SinRegla"}}
	h.inputs.rows[march] = []entity.FinancialRow{advanceRow(march, "100")}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0].Reason, "TCMP cero")

	s, ok := findState(report.Ledger, "100002")
	require.True(t, ok)
	assert.True(t, s.TotalAdvanced.IsZero())
	assert.Equal(t, entity.RateCalcPending, s.RateCalcStatus)
}

func TestRun_PagoOmitidoLuegoCongelaAlFacturar(t *testing.T) {
	h := newHarness(commercialItems(true))
	h.ident["100002"] = []entity.Collaborator{{Name: "Ana", Role: "SinRegla"}}
	h.inputs.rows[february] = []entity.FinancialRow{advanceRow(february, "100")}
	h.inputs.rows[march] = []entity.FinancialRow{{Document: "12", NetAmount: dec("10"), SettlementDate: day(march, 1)}}
	orch := h.orchestrator()

	feb, err := orch.Run(context.Background(), february)
	require.NoError(t, err)
	require.Len(t, feb.Skipped, 1)

	// la regla del cargo se corrige antes del cierre de marzo
	h.ident["100002"] = []entity.Collaborator{{Name: "Ana", Role: "Consultor"}}
	mar, err := orch.Run(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, []string{"100002"}, mar.RatesFrozen)

	s, ok := findState(mar.Ledger, "100002")
	require.True(t, ok)
	assert.Equal(t, entity.RateCalcCalculated, s.RateCalcStatus)
	assert.True(t, s.TCMP["Ana"].Equal(dec("0.05")))
	assert.True(t, s.TotalPaidAccumulated.IsZero())
}

// ── Terminales ───────────────────────────────────────────────────────────────

func TestRun_Vacio(t *testing.T) {
	h := newHarness(commercialItems(false))

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)
	assert.Equal(t, receivables.OutcomeEmpty, report.Outcome)
	require.Len(t, h.output.reports, 1, "se emite un set de salidas vacío")
	assert.Zero(t, h.store.Saves(), "el ledger no se toca")
	assert.True(t, report.TotalCommission(entity.EntryAdvance).Equal(decimal.Zero))
}

func TestRun_FilaMalformadaFalla(t *testing.T) {
	h := newHarness(commercialItems(false))
	h.inputs.rows[march] = []entity.FinancialRow{{Document: "ADV100002", NetAmount: dec("10")}}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, receivables.OutcomeFailed, report.Outcome)
	assert.Zero(t, h.store.Saves())
}

func TestRun_FalloDePersistencia(t *testing.T) {
	h := newHarness(commercialItems(false))
	h.inputs.rows[march] = []entity.FinancialRow{advanceRow(march, "7500")}
	rules := fakeRules{"Consultor": {PoolPct: dec("10"), RoleSharePct: dec("50")}}
	calc := receivables.NewRateCalculator(h.ident, rules, h.goals, nil)
	orch := receivables.NewBatchOrchestrator(h.inputs, failingStore{h.store}, calc, h.output,
		receivables.Settings{AdvancePrefix: "ADV", InvoicedStatus: "FATURADO"}, nil)

	report, err := orch.Run(context.Background(), march)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistir ledger")
	assert.Equal(t, receivables.OutcomeFailed, report.Outcome)

	prior, _ := h.store.Load(context.Background())
	assert.Empty(t, prior, "el snapshot previo queda intacto")
}

// ── Totales por colaborador ──────────────────────────────────────────────────

func TestRunReport_CollaboratorTotals(t *testing.T) {
	h := newHarness(commercialItems(true))
	h.inputs.rows[march] = []entity.FinancialRow{advanceRow(march, "7500")}

	report, err := h.orchestrator().Run(context.Background(), march)
	require.NoError(t, err)

	totals := report.CollaboratorTotals()
	require.Len(t, totals, 1)
	assert.Equal(t, "Ana", totals[0].Collaborator)
	assert.True(t, totals[0].Advance.Equal(dec("375")))
	assert.True(t, totals[0].Adjustment.Equal(dec("-150")))
	assert.True(t, totals[0].Net().Equal(dec("225")))
}
