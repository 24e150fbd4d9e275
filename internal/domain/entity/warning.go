package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnmappedReason motivo por el cual un documento no se asoció a un proceso.
type UnmappedReason string

const (
	ReasonEmptyDocument        UnmappedReason = "empty document"
	ReasonInvalidAdvanceSuffix UnmappedReason = "invalid advance suffix"
	ReasonTooShort             UnmappedReason = "too short"
	ReasonInvoiceNotFound      UnmappedReason = "invoice number not found"
)

// UnmappedDocument aviso de documento sin proceso; el pago se omite.
type UnmappedDocument struct {
	Document     string
	CandidateKey string
	Reason       UnmappedReason
	PaymentDate  time.Time
	Amount       decimal.Decimal
}

// SkippedPayment pago mapeado cuya comisión no se pudo calcular; no suma al ledger.
type SkippedPayment struct {
	ProcessID   string
	Document    string
	EntryType   EntryType
	Amount      decimal.Decimal
	PaymentDate time.Time
	Reason      string
}
