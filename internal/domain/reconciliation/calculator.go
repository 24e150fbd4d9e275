package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

var one = decimal.NewFromInt(1)

// Calculate genera una línea por colaborador con comisión adelantada positiva.
// FCMP ausente o cero se toma como 1.0 (ajuste cero) y la línea queda marcada.
// Los ajustes cero se registran igual.
func Calculate(s entity.ProcessState) []entity.ReconciliationLine {
	var lines []entity.ReconciliationLine
	for _, name := range s.AdvancedCommission.Names() {
		advanced := s.AdvancedCommission[name]
		if !advanced.IsPositive() {
			continue
		}
		fcmp, ok := s.FCMP[name]
		fallback := !ok || fcmp.IsZero()
		if fallback {
			fcmp = one
		}
		delta := fcmp.Sub(one)
		lines = append(lines, entity.ReconciliationLine{
			ProcessID:          s.ProcessID,
			Collaborator:       name,
			TCMP:               s.TCMP[name],
			FCMP:               fcmp,
			CommissionAdvanced: advanced,
			CommissionAtActual: advanced.Mul(fcmp),
			FactorDelta:        delta,
			AdjustmentAmount:   advanced.Mul(delta),
			InvoicingPeriod:    s.InvoicingPeriod,
			FactorFallback:     fallback,
		})
	}
	return lines
}
