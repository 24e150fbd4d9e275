package receivables

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// Stage etapa de la máquina de estados de una ejecución.
type Stage string

const (
	StageLoadInputs      Stage = "LOAD_INPUTS"
	StageLoadLedger      Stage = "LOAD_LEDGER"
	StageProcessPayments Stage = "MAP_AND_PROCESS_PAYMENTS"
	StageComputeRates    Stage = "COMPUTE_RATES_FOR_NEWLY_INVOICED"
	StageReconcile       Stage = "RECONCILE"
	StageEmitOutputs     Stage = "EMIT_OUTPUTS"
)

// Outcome estado terminal de la ejecución.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeEmpty   Outcome = "EMPTY"  // sin filas financieras: salidas vacías, ledger intacto
	OutcomeFailed  Outcome = "FAILED" // error de entrada o persistencia
)

// RunReport todo lo producido por una ejecución mensual.
type RunReport struct {
	RunID      string
	Period     entity.Period
	Outcome    Outcome
	Stage      Stage // última etapa alcanzada
	StartedAt  time.Time
	FinishedAt time.Time

	PaymentRows       int
	Advances          []entity.CommissionLine
	Regulars          []entity.CommissionLine
	Reconciliations   []entity.ReconciliationLine
	Summaries         []entity.ReconciliationSummary
	RejectedLines     []entity.RejectedReconciliation
	Unmapped          []entity.UnmappedDocument
	Skipped           []entity.SkippedPayment
	RatesFrozen       []string // procesos cuyas tasas se congelaron en esta ejecución
	ReconciledProcess []string

	Ledger []entity.ProcessState
}

// TotalCommission suma de comisiones por tipo.
func (r *RunReport) TotalCommission(kind entity.EntryType) decimal.Decimal {
	lines := r.Advances
	if kind == entity.EntryRegular {
		lines = r.Regulars
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.CommissionAmount)
	}
	return total
}

// NetAdjustment suma de ajustes de reconciliación válidos.
func (r *RunReport) NetAdjustment() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Reconciliations {
		total = total.Add(l.AdjustmentAmount)
	}
	return total
}

// FactorFallbacks líneas regulares que usaron factor 1.0 por FCMP ausente.
func (r *RunReport) FactorFallbacks() []entity.CommissionLine {
	var out []entity.CommissionLine
	for _, l := range r.Regulars {
		if l.FactorFallback {
			out = append(out, l)
		}
	}
	return out
}

// CollaboratorTotal comisión y ajuste por colaborador.
type CollaboratorTotal struct {
	Collaborator string
	Role         string
	Advance      decimal.Decimal
	Regular      decimal.Decimal
	Adjustment   decimal.Decimal
}

// Net total a pagar (adelantos + regulares + ajustes).
func (c CollaboratorTotal) Net() decimal.Decimal {
	return c.Advance.Add(c.Regular).Add(c.Adjustment)
}

// CollaboratorTotals consolidado por colaborador en orden de primera aparición.
func (r *RunReport) CollaboratorTotals() []CollaboratorTotal {
	var out []CollaboratorTotal
	pos := make(map[string]int)
	get := func(name, role string) *CollaboratorTotal {
		i, ok := pos[name]
		if !ok {
			i = len(out)
			pos[name] = i
			out = append(out, CollaboratorTotal{Collaborator: name, Role: role,
				Advance: decimal.Zero, Regular: decimal.Zero, Adjustment: decimal.Zero})
		}
		if out[i].Role == "" {
			out[i].Role = role
		}
		return &out[i]
	}
	for _, l := range r.Advances {
		t := get(l.Collaborator, l.Role)
		t.Advance = t.Advance.Add(l.CommissionAmount)
	}
	for _, l := range r.Regulars {
		t := get(l.Collaborator, l.Role)
		t.Regular = t.Regular.Add(l.CommissionAmount)
	}
	for _, l := range r.Reconciliations {
		t := get(l.Collaborator, "")
		t.Adjustment = t.Adjustment.Add(l.AdjustmentAmount)
	}
	return out
}
