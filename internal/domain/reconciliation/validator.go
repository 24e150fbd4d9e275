package reconciliation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

var (
	maxFCMP   = decimal.NewFromInt(2)
	tolerance = decimal.RequireFromString("0.01")
)

// Validate devuelve todos los problemas de la línea (errors.Join) o nil.
func Validate(l entity.ReconciliationLine) error {
	var errs []error
	if l.ProcessID == "" {
		errs = append(errs, errors.New("process_id requerido"))
	}
	if l.Collaborator == "" {
		errs = append(errs, errors.New("colaborador requerido"))
	}
	if l.InvoicingPeriod.IsZero() {
		errs = append(errs, errors.New("período de facturación requerido"))
	}
	if l.FCMP.IsNegative() || l.FCMP.GreaterThan(maxFCMP) {
		errs = append(errs, fmt.Errorf("FCMP %s fuera de [0, 2]", l.FCMP))
	}
	if l.CommissionAdvanced.IsNegative() {
		errs = append(errs, fmt.Errorf("comisión adelantada negativa: %s", l.CommissionAdvanced))
	}
	expected := l.CommissionAdvanced.Mul(l.FactorDelta)
	if l.AdjustmentAmount.Sub(expected).Abs().GreaterThan(tolerance) {
		errs = append(errs, fmt.Errorf("ajuste %s difiere de %s × %s", l.AdjustmentAmount, l.CommissionAdvanced, l.FactorDelta))
	}
	return errors.Join(errs...)
}

// Partition separa líneas válidas de rechazadas, sin descartar ninguna.
func Partition(lines []entity.ReconciliationLine) (valid []entity.ReconciliationLine, rejected []entity.RejectedReconciliation) {
	for _, l := range lines {
		err := Validate(l)
		if err == nil {
			valid = append(valid, l)
			continue
		}
		rejected = append(rejected, entity.RejectedReconciliation{Line: l, Reasons: reasons(err)})
	}
	return valid, rejected
}

func reasons(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
