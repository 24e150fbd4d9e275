package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de pago derivado de lo pagado vs el valor total del proceso.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"  // Sin pagos
	PaymentPartial  PaymentStatus = "PARTIAL"  // Pagado parcialmente
	PaymentComplete PaymentStatus = "COMPLETE" // Pagado >= valor total
)

// PaymentStatusFor deriva el estado de pago. Nunca se persiste de forma independiente.
func PaymentStatusFor(paid, total decimal.Decimal) PaymentStatus {
	switch {
	case !paid.IsPositive():
		return PaymentPending
	case paid.GreaterThanOrEqual(total):
		return PaymentComplete
	default:
		return PaymentPartial
	}
}

// RateCalcStatus estado del cálculo de TCMP/FCMP. Transición única PENDING -> CALCULATED.
type RateCalcStatus string

const (
	RateCalcPending    RateCalcStatus = "PENDING"
	RateCalcCalculated RateCalcStatus = "CALCULATED"
)

// ParseRateCalcStatus valida un valor persistido (vacío = PENDING).
func ParseRateCalcStatus(s string) (RateCalcStatus, error) {
	switch RateCalcStatus(s) {
	case "", RateCalcPending:
		return RateCalcPending, nil
	case RateCalcCalculated:
		return RateCalcCalculated, nil
	}
	return "", fmt.Errorf("rate_calc_status desconocido: %q", s)
}

// ReconciliationStatus estado de la reconciliación. Transición única PENDING -> CALCULATED.
type ReconciliationStatus string

const (
	ReconciliationPending    ReconciliationStatus = "PENDING"
	ReconciliationCalculated ReconciliationStatus = "CALCULATED"
)

// ParseReconciliationStatus valida un valor persistido (vacío = PENDING).
func ParseReconciliationStatus(s string) (ReconciliationStatus, error) {
	switch ReconciliationStatus(s) {
	case "", ReconciliationPending:
		return ReconciliationPending, nil
	case ReconciliationCalculated:
		return ReconciliationCalculated, nil
	}
	return "", fmt.Errorf("reconciliation_status desconocido: %q", s)
}

// EntryType tipo de pago/línea de comisión.
type EntryType string

const (
	EntryAdvance EntryType = "ADVANCE" // Adelanto antes de la facturación
	EntryRegular EntryType = "REGULAR" // Pago posterior a la facturación
)
