package receivables_test

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de servicios externos
// ──────────────────────────────────────────────────────────────────────────────

type fakeInputs struct {
	rows  map[entity.Period][]entity.FinancialRow
	items []entity.CommercialItem
}

func (f *fakeInputs) LoadFinancial(_ context.Context, p entity.Period) ([]entity.FinancialRow, error) {
	return f.rows[p], nil
}

func (f *fakeInputs) LoadCommercial(_ context.Context) ([]entity.CommercialItem, error) {
	return f.items, nil
}

type fakeIdentifier map[string][]entity.Collaborator

func (f fakeIdentifier) Identify(_ context.Context, processID string, _ []entity.CommercialItem) ([]entity.Collaborator, error) {
	return f[processID], nil
}

type fakeRules map[string]entity.RateRule

func (f fakeRules) Rule(_ context.Context, _ entity.CommercialItem, role string) (entity.RateRule, error) {
	r, ok := f[role]
	if !ok {
		return entity.RateRule{}, errors.New("sin regla")
	}
	return r, nil
}

type fakeGoals map[string]decimal.Decimal

func (f fakeGoals) CorrectionFactor(_ context.Context, _ entity.CommercialItem, c entity.Collaborator) (decimal.Decimal, entity.FactorDetail, error) {
	v, ok := f[c.Name]
	if !ok {
		return decimal.Zero, entity.FactorDetail{}, errors.New("sin metas")
	}
	return v, entity.FactorDetail{}, nil
}

type recordingOutput struct {
	reports []*receivables.RunReport
}

func (o *recordingOutput) Write(_ context.Context, r *receivables.RunReport) error {
	o.reports = append(o.reports, r)
	return nil
}

type failingStore struct {
	*memory.LedgerRepo
}

func (failingStore) Save(context.Context, []entity.ProcessState) error {
	return errors.New("disco lleno")
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos de prueba
// ──────────────────────────────────────────────────────────────────────────────

var (
	february = entity.Period{Month: 2, Year: 2025}
	march    = entity.Period{Month: 3, Year: 2025}
	fixedNow = time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(p entity.Period, d int) time.Time {
	return time.Date(p.Year, time.Month(p.Month), d, 0, 0, 0, 0, time.UTC)
}

// commercialItems proceso 100002 (valor 20.000) facturado el 20/03 con la NF 654321.
func commercialItems(invoiced bool) []entity.CommercialItem {
	it := entity.CommercialItem{
		ProcessID: "100002", InvoiceNumber: "654321", ItemValue: dec("20000"),
		Line: "Linha A", Group: "G1", Subgroup: "S1", MerchandiseType: "Máquina",
	}
	if invoiced {
		it.Status = "FATURADO"
		it.InvoiceDate = day(march, 20)
	}
	return []entity.CommercialItem{it}
}

func advanceRow(p entity.Period, amount string) entity.FinancialRow {
	return entity.FinancialRow{Document: "ADV100002", NetAmount: dec(amount), SettlementDate: day(p, 5), SettlementType: "B"}
}

func regularRow(p entity.Period, amount string) entity.FinancialRow {
	return entity.FinancialRow{Document: "654321", NetAmount: dec(amount), SettlementDate: day(p, 25), SettlementType: "B"}
}

type harness struct {
	inputs *fakeInputs
	store  *memory.LedgerRepo
	output *recordingOutput
	ident  fakeIdentifier
	goals  fakeGoals
}

func newHarness(items []entity.CommercialItem) *harness {
	return &harness{
		inputs: &fakeInputs{rows: map[entity.Period][]entity.FinancialRow{}, items: items},
		store:  memory.NewLedgerRepository(),
		output: &recordingOutput{},
		ident:  fakeIdentifier{"100002": {{Name: "Ana", Role: "Consultor"}}},
		goals:  fakeGoals{"Ana": dec("0.6")},
	}
}

func (h *harness) orchestrator() *receivables.BatchOrchestrator {
	rules := fakeRules{"Consultor": {PoolPct: dec("10"), RoleSharePct: dec("50")}} // 0,05
	calc := receivables.NewRateCalculator(h.ident, rules, h.goals, nil)
	return receivables.NewBatchOrchestrator(h.inputs, h.store, calc, h.output,
		receivables.Settings{AdvancePrefix: "ADV", InvoicedStatus: "FATURADO"}, nil,
		receivables.WithClock(func() time.Time { return fixedNow }),
		receivables.WithRunIDGenerator(func() string { return "run-test" }),
	)
}

func findState(states []entity.ProcessState, id string) (entity.ProcessState, bool) {
	for _, s := range states {
		if s.ProcessID == id {
			return s, true
		}
	}
	return entity.ProcessState{}, false
}
