// Package reconciliation ajusta las comisiones adelantadas con factor 1.0 cuando
// el FCMP real del proceso queda congelado en el mes de facturación.
//
//	Detector → Calculator → Validator → Aggregator
//
// Todo es puro: el Engine no muta el ledger; el orquestador marca los procesos
// reconciliados con la lista que devuelve el Engine.
package reconciliation

import "github.com/jhoicas/receivables-commissions/internal/domain/entity"

// LedgerView vista de solo lectura del ledger.
type LedgerView interface {
	ListProcessIDs() []string
	Get(processID string) (entity.ProcessState, bool)
}

// Qualifies: tasas calculadas, facturado en el período, con adelantos y sin reconciliar.
func Qualifies(s entity.ProcessState, period entity.Period) bool {
	return s.RateCalcStatus == entity.RateCalcCalculated &&
		s.InvoicingPeriod == period &&
		s.TotalAdvanced.IsPositive() &&
		s.ReconciliationStatus != entity.ReconciliationCalculated
}

// Detector selecciona los procesos a reconciliar en un período.
type Detector struct {
	period entity.Period
}

// NewDetector construye el detector para el período de la ejecución.
func NewDetector(period entity.Period) Detector {
	return Detector{period: period}
}

// Detect devuelve los estados que califican, en el orden del ledger.
func (d Detector) Detect(view LedgerView) []entity.ProcessState {
	var out []entity.ProcessState
	for _, id := range view.ListProcessIDs() {
		s, ok := view.Get(id)
		if ok && Qualifies(s, d.period) {
			out = append(out, s)
		}
	}
	return out
}
