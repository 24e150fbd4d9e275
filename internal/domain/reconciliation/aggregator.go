package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// Aggregate consolida por proceso conservando el orden de primera aparición.
func Aggregate(lines []entity.ReconciliationLine) []entity.ReconciliationSummary {
	var out []entity.ReconciliationSummary
	pos := make(map[string]int)
	for _, l := range lines {
		i, ok := pos[l.ProcessID]
		if !ok {
			i = len(out)
			pos[l.ProcessID] = i
			out = append(out, entity.ReconciliationSummary{
				ProcessID:       l.ProcessID,
				TotalAdvanced:   decimal.Zero,
				TotalAtActual:   decimal.Zero,
				NetAdjustment:   decimal.Zero,
				InvoicingPeriod: l.InvoicingPeriod,
			})
		}
		sum := &out[i]
		sum.Collaborators++
		sum.TotalAdvanced = sum.TotalAdvanced.Add(l.CommissionAdvanced)
		sum.TotalAtActual = sum.TotalAtActual.Add(l.CommissionAtActual)
		sum.NetAdjustment = sum.NetAdjustment.Add(l.AdjustmentAmount)
	}
	return out
}
