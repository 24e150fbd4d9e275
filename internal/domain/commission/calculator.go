package commission

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// Payment pago mapeado a un proceso.
type Payment struct {
	ProcessID string
	Document  string
	Amount    decimal.Decimal
	Date      time.Time
	Period    entity.Period // período de cálculo (ejecución)
}

var one = decimal.NewFromInt(1)

// CalculateAdvance comisión = monto × TCMP × 1.0 para cada colaborador con TCMP > 0.
func CalculateAdvance(p Payment, tcmp entity.RateMap, roles map[string]string) []entity.CommissionLine {
	var lines []entity.CommissionLine
	for _, name := range tcmp.Names() {
		rate := tcmp[name]
		if !rate.IsPositive() {
			continue
		}
		lines = append(lines, entity.CommissionLine{
			ProcessID:         p.ProcessID,
			Document:          p.Document,
			PaymentDate:       p.Date,
			PaidAmount:        p.Amount,
			Collaborator:      name,
			Role:              roles[name],
			TCMP:              rate,
			Factor:            one,
			CommissionAmount:  p.Amount.Mul(rate),
			EntryType:         entity.EntryAdvance,
			ComputationPeriod: p.Period,
		})
	}
	return lines
}

// CalculateRegular comisión = monto × TCMP × FCMP. FCMP ausente o no positivo usa 1.0
// y la línea queda marcada con FactorFallback.
func CalculateRegular(p Payment, tcmp, fcmp entity.RateMap, roles map[string]string, invoicing entity.Period) []entity.CommissionLine {
	var lines []entity.CommissionLine
	for _, name := range tcmp.Names() {
		rate := tcmp[name]
		if !rate.IsPositive() {
			continue
		}
		factor, ok := fcmp[name]
		fallback := !ok || !factor.IsPositive()
		if fallback {
			factor = one
		}
		lines = append(lines, entity.CommissionLine{
			ProcessID:         p.ProcessID,
			Document:          p.Document,
			PaymentDate:       p.Date,
			PaidAmount:        p.Amount,
			Collaborator:      name,
			Role:              roles[name],
			TCMP:              rate,
			Factor:            factor,
			CommissionAmount:  p.Amount.Mul(rate).Mul(factor),
			EntryType:         entity.EntryRegular,
			ComputationPeriod: p.Period,
			InvoicingPeriod:   invoicing,
			FactorFallback:    fallback,
		})
	}
	return lines
}

// SplitByCollaborator suma de comisión por colaborador.
func SplitByCollaborator(lines []entity.CommissionLine) entity.RateMap {
	out := entity.RateMap{}
	for _, l := range lines {
		out[l.Collaborator] = out[l.Collaborator].Add(l.CommissionAmount)
	}
	return out
}
