package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionLine comisión de un colaborador por un pago (efímera por ejecución).
type CommissionLine struct {
	ProcessID         string
	Document          string
	PaymentDate       time.Time
	PaidAmount        decimal.Decimal
	Collaborator      string
	Role              string
	TCMP              decimal.Decimal
	Factor            decimal.Decimal // 1.0 en adelantos; FCMP en regulares
	CommissionAmount  decimal.Decimal
	EntryType         EntryType
	ComputationPeriod Period
	InvoicingPeriod   Period // solo REGULAR
	FactorFallback    bool   // FCMP ausente o no positivo, se usó 1.0
}

// ReconciliationLine ajuste de un colaborador sobre un proceso adelantado y luego facturado.
type ReconciliationLine struct {
	ProcessID          string
	Collaborator       string
	TCMP               decimal.Decimal
	FCMP               decimal.Decimal
	CommissionAdvanced decimal.Decimal // comisión adelantada con factor 1.0
	CommissionAtActual decimal.Decimal // CommissionAdvanced × FCMP
	FactorDelta        decimal.Decimal // FCMP − 1.0
	AdjustmentAmount   decimal.Decimal // CommissionAdvanced × FactorDelta
	InvoicingPeriod    Period
	FactorFallback     bool
}

// ReconciliationSummary consolidado de reconciliación por proceso.
type ReconciliationSummary struct {
	ProcessID       string
	Collaborators   int
	TotalAdvanced   decimal.Decimal
	TotalAtActual   decimal.Decimal
	NetAdjustment   decimal.Decimal
	InvoicingPeriod Period
}

// RejectedReconciliation línea que no pasó la validación, con los motivos.
type RejectedReconciliation struct {
	Line    ReconciliationLine
	Reasons []string
}
