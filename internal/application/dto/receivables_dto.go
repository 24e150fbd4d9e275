package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProcessStateResponse estado de un proceso en el ledger.
type ProcessStateResponse struct {
	ProcessID                  string                     `json:"process_id"`
	TotalValue                 decimal.Decimal            `json:"total_value"`
	TotalAdvanced              decimal.Decimal            `json:"total_advanced"`
	TotalRegularPaid           decimal.Decimal            `json:"total_regular_paid"`
	TotalPaidAccumulated       decimal.Decimal            `json:"total_paid_accumulated"`
	OutstandingBalance         decimal.Decimal            `json:"outstanding_balance"`
	TotalCommissionAdvanced    decimal.Decimal            `json:"total_commission_advanced"`
	TotalCommissionRegular     decimal.Decimal            `json:"total_commission_regular"`
	TotalCommissionAccumulated decimal.Decimal            `json:"total_commission_accumulated"`
	PaymentStatus              string                     `json:"payment_status"`
	RateCalcStatus             string                     `json:"rate_calc_status"`
	ReconciliationStatus       string                     `json:"reconciliation_status"`
	InvoicingPeriod            string                     `json:"invoicing_period,omitempty"`
	TCMP                       map[string]decimal.Decimal `json:"tcmp"`
	FCMP                       map[string]decimal.Decimal `json:"fcmp"`
	Collaborators              []string                   `json:"collaborators"`
	PaymentCount               int                        `json:"payment_count"`
	FirstPaymentDate           *time.Time                 `json:"first_payment_date,omitempty"`
	LastPaymentDate            *time.Time                 `json:"last_payment_date,omitempty"`
	LastUpdated                time.Time                  `json:"last_updated"`
}

// ProcessListResponse listado paginado del ledger.
type ProcessListResponse struct {
	Items []ProcessStateResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// RunRequest solicitud de ejecución de un período.
type RunRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// RunResponse resumen de una ejecución.
type RunResponse struct {
	RunID                string          `json:"run_id"`
	Period               string          `json:"period"`
	Outcome              string          `json:"outcome"`
	PaymentRows          int             `json:"payment_rows"`
	AdvanceLines         int             `json:"advance_lines"`
	RegularLines         int             `json:"regular_lines"`
	AdvanceCommission    decimal.Decimal `json:"advance_commission"`
	RegularCommission    decimal.Decimal `json:"regular_commission"`
	ReconciliationLines  int             `json:"reconciliation_lines"`
	RejectedLines        int             `json:"rejected_lines"`
	NetAdjustment        decimal.Decimal `json:"net_adjustment"`
	UnmappedDocuments    int             `json:"unmapped_documents"`
	SkippedPayments      int             `json:"skipped_payments"`
	RatesFrozen          []string        `json:"rates_frozen"`
	ReconciledProcesses  []string        `json:"reconciled_processes"`
	StartedAt            time.Time       `json:"started_at"`
	FinishedAt           time.Time       `json:"finished_at"`
}
