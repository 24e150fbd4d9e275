package entity

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RateMap colaborador -> tasa o factor.
type RateMap map[string]decimal.Decimal

// Clone copia el mapa (nil se conserva como mapa vacío).
func (m RateMap) Clone() RateMap {
	out := make(RateMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Names devuelve los colaboradores ordenados.
func (m RateMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Sum suma todos los valores.
func (m RateMap) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// Equal compara por valor numérico.
func (m RateMap) Equal(o RateMap) bool {
	if len(m) != len(o) {
		return false
	}
	for k, v := range m {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ProcessState estado acumulado de un proceso de venta entre ejecuciones.
// Solo el ledger lo muta; fuera de él se manejan copias.
type ProcessState struct {
	ProcessID  string
	TotalValue decimal.Decimal

	TotalAdvanced        decimal.Decimal
	TotalRegularPaid     decimal.Decimal
	TotalPaidAccumulated decimal.Decimal

	TotalCommissionAdvanced    decimal.Decimal
	TotalCommissionRegular     decimal.Decimal
	TotalCommissionAccumulated decimal.Decimal

	RateCalcStatus       RateCalcStatus
	ReconciliationStatus ReconciliationStatus
	InvoicingPeriod      Period

	TCMP RateMap
	FCMP RateMap
	// Cargo de cada colaborador al congelar las tasas.
	CollaboratorRoles map[string]string
	// Comisión adelantada (factor 1.0) por colaborador, base de la reconciliación.
	AdvancedCommission RateMap

	FirstPaymentDate time.Time
	LastPaymentDate  time.Time
	PaymentCount     int
	LastUpdated      time.Time
}

// NewProcessState estado inicial: acumuladores en cero y estados PENDING.
func NewProcessState(processID string, totalValue decimal.Decimal) ProcessState {
	return ProcessState{
		ProcessID:                  processID,
		TotalValue:                 totalValue,
		TotalAdvanced:              decimal.Zero,
		TotalRegularPaid:           decimal.Zero,
		TotalPaidAccumulated:       decimal.Zero,
		TotalCommissionAdvanced:    decimal.Zero,
		TotalCommissionRegular:     decimal.Zero,
		TotalCommissionAccumulated: decimal.Zero,
		RateCalcStatus:             RateCalcPending,
		ReconciliationStatus:       ReconciliationPending,
		TCMP:                       RateMap{},
		FCMP:                       RateMap{},
		CollaboratorRoles:          map[string]string{},
		AdvancedCommission:         RateMap{},
	}
}

// PaymentStatus se deriva siempre de los totales actuales.
func (s ProcessState) PaymentStatus() PaymentStatus {
	return PaymentStatusFor(s.TotalPaidAccumulated, s.TotalValue)
}

// OutstandingBalance saldo a recibir.
func (s ProcessState) OutstandingBalance() decimal.Decimal {
	return s.TotalValue.Sub(s.TotalPaidAccumulated)
}

// Collaborators colaboradores involucrados (claves de TCMP).
func (s ProcessState) Collaborators() []string {
	return s.TCMP.Names()
}

// RatesFrozen indica si TCMP/FCMP ya no pueden cambiar.
func (s ProcessState) RatesFrozen() bool {
	return s.RateCalcStatus == RateCalcCalculated
}

// Clone copia profunda (mapas incluidos).
func (s ProcessState) Clone() ProcessState {
	c := s
	c.TCMP = s.TCMP.Clone()
	c.FCMP = s.FCMP.Clone()
	c.AdvancedCommission = s.AdvancedCommission.Clone()
	c.CollaboratorRoles = make(map[string]string, len(s.CollaboratorRoles))
	for k, v := range s.CollaboratorRoles {
		c.CollaboratorRoles[k] = v
	}
	return c
}

// Validate verifica los invariantes aditivos y de estado.
func (s ProcessState) Validate() error {
	var errs []error
	if s.ProcessID == "" {
		errs = append(errs, errors.New("process_id vacío"))
	}
	if !s.TotalPaidAccumulated.Equal(s.TotalAdvanced.Add(s.TotalRegularPaid)) {
		errs = append(errs, fmt.Errorf("%s: total_paid_accumulated %s != %s + %s",
			s.ProcessID, s.TotalPaidAccumulated, s.TotalAdvanced, s.TotalRegularPaid))
	}
	if !s.TotalCommissionAccumulated.Equal(s.TotalCommissionAdvanced.Add(s.TotalCommissionRegular)) {
		errs = append(errs, fmt.Errorf("%s: total_commission_accumulated %s != %s + %s",
			s.ProcessID, s.TotalCommissionAccumulated, s.TotalCommissionAdvanced, s.TotalCommissionRegular))
	}
	if s.RateCalcStatus == RateCalcCalculated && s.InvoicingPeriod.IsZero() {
		errs = append(errs, fmt.Errorf("%s: tasas calculadas sin período de facturación", s.ProcessID))
	}
	if s.ReconciliationStatus == ReconciliationCalculated && s.RateCalcStatus != RateCalcCalculated {
		errs = append(errs, fmt.Errorf("%s: reconciliado sin tasas calculadas", s.ProcessID))
	}
	return errors.Join(errs...)
}

// Equal compara campo a campo por valor (decimales numéricamente, fechas por instante).
func (s ProcessState) Equal(o ProcessState) bool {
	return s.ProcessID == o.ProcessID &&
		s.TotalValue.Equal(o.TotalValue) &&
		s.TotalAdvanced.Equal(o.TotalAdvanced) &&
		s.TotalRegularPaid.Equal(o.TotalRegularPaid) &&
		s.TotalPaidAccumulated.Equal(o.TotalPaidAccumulated) &&
		s.TotalCommissionAdvanced.Equal(o.TotalCommissionAdvanced) &&
		s.TotalCommissionRegular.Equal(o.TotalCommissionRegular) &&
		s.TotalCommissionAccumulated.Equal(o.TotalCommissionAccumulated) &&
		s.RateCalcStatus == o.RateCalcStatus &&
		s.ReconciliationStatus == o.ReconciliationStatus &&
		s.InvoicingPeriod == o.InvoicingPeriod &&
		s.TCMP.Equal(o.TCMP) &&
		s.FCMP.Equal(o.FCMP) &&
		s.AdvancedCommission.Equal(o.AdvancedCommission) &&
		equalStringMaps(s.CollaboratorRoles, o.CollaboratorRoles) &&
		s.FirstPaymentDate.Equal(o.FirstPaymentDate) &&
		s.LastPaymentDate.Equal(o.LastPaymentDate) &&
		s.PaymentCount == o.PaymentCount &&
		s.LastUpdated.Equal(o.LastUpdated)
}

func equalStringMaps(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
