package reconciliation

import "github.com/jhoicas/receivables-commissions/internal/domain/entity"

// Result salida de una pasada de reconciliación.
type Result struct {
	Lines      []entity.ReconciliationLine
	Rejected   []entity.RejectedReconciliation
	Summaries  []entity.ReconciliationSummary
	Reconciled []string // procesos evaluados, a marcar como CALCULATED
	Detected   int
}

// Run ejecuta detección, cálculo, validación y consolidación para el período.
// Todo proceso detectado queda en Reconciled aunque tenga líneas rechazadas: las
// rechazadas se reportan para revisión manual y no se recalculan en otra ejecución.
func Run(view LedgerView, period entity.Period) Result {
	var res Result
	for _, s := range NewDetector(period).Detect(view) {
		res.Detected++
		valid, rejected := Partition(Calculate(s))
		res.Lines = append(res.Lines, valid...)
		res.Rejected = append(res.Rejected, rejected...)
		res.Reconciled = append(res.Reconciled, s.ProcessID)
	}
	res.Summaries = Aggregate(res.Lines)
	return res
}
