package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialRow fila del razón financiero (baja de un título), ya filtrada al mes y tipo pagado.
type FinancialRow struct {
	Document       string
	NetAmount      decimal.Decimal
	SettlementDate time.Time
	SettlementType string
	SourceRow      int // fila en el archivo de origen (1-based, informativo)
}

// CommercialItem ítem de un proceso en la base comercial.
type CommercialItem struct {
	ProcessID           string
	InvoiceNumber       string
	InvoiceDate         time.Time
	Status              string
	ItemValue           decimal.Decimal
	Line                string
	Group               string
	Subgroup            string
	MerchandiseType     string
	InternalConsultant  string
	SalesRepresentative string
}

// Collaborator colaborador elegible en un proceso.
type Collaborator struct {
	Name string
	Role string
}

// RateRule par de porcentajes configurados para un ítem y cargo.
type RateRule struct {
	PoolPct      decimal.Decimal // taxa de rateio máximo (%)
	RoleSharePct decimal.Decimal // fatia del cargo (%)
}

var hundred = decimal.NewFromInt(100)

// Rate tasa efectiva = pool/100 × fatia/100.
func (r RateRule) Rate() decimal.Decimal {
	return r.PoolPct.Div(hundred).Mul(r.RoleSharePct.Div(hundred))
}

// FactorComponent aporte de una meta al factor de corrección.
type FactorComponent struct {
	Goal         string
	Weight       decimal.Decimal // fracción (0-1)
	Attainment   decimal.Decimal // ya limitado por el cap
	Contribution decimal.Decimal
}

// FactorDetail detalle opaco devuelto por el evaluador de metas.
type FactorDetail struct {
	Components []FactorComponent
	Capped     bool
}
