// Package ledger mantiene el estado por proceso entre ejecuciones batch.
//
// El Ledger es el único dueño de los ProcessState: expone solo operaciones aditivas
// (pagos) o de transición única (congelar tasas, marcar reconciliado). Fuera del
// paquete solo circulan copias.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// Rates tasas congeladas de un proceso.
type Rates struct {
	TCMP            entity.RateMap
	FCMP            entity.RateMap
	Roles           map[string]string
	InvoicingPeriod entity.Period
}

// Ledger arena de estados indexada por process_id. No es seguro para uso concurrente.
type Ledger struct {
	states []entity.ProcessState
	index  map[string]int
	now    func() time.Time
}

// Option configura el ledger.
type Option func(*Ledger)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New ledger vacío.
func New(opts ...Option) *Ledger {
	l := &Ledger{index: make(map[string]int), now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// FromSnapshot reconstruye el ledger validando invariantes y claves únicas.
func FromSnapshot(states []entity.ProcessState, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	var errs []error
	for _, s := range states {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := l.index[s.ProcessID]; dup {
			errs = append(errs, fmt.Errorf("process_id duplicado: %s", s.ProcessID))
			continue
		}
		l.index[s.ProcessID] = len(l.states)
		l.states = append(l.states, normalize(s.Clone()))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerCorrupt, errors.Join(errs...))
	}
	return l, nil
}

// normalize asegura mapas no nil y estados válidos tras una carga.
func normalize(s entity.ProcessState) entity.ProcessState {
	if s.RateCalcStatus == "" {
		s.RateCalcStatus = entity.RateCalcPending
	}
	if s.ReconciliationStatus == "" {
		s.ReconciliationStatus = entity.ReconciliationPending
	}
	return s
}

// Len cantidad de procesos.
func (l *Ledger) Len() int { return len(l.states) }

// Get devuelve una copia del estado.
func (l *Ledger) Get(processID string) (entity.ProcessState, bool) {
	i, ok := l.index[processID]
	if !ok {
		return entity.ProcessState{}, false
	}
	return l.states[i].Clone(), true
}

// CreateIfAbsent crea el proceso con acumuladores en cero. Si ya existe no lo modifica.
// Devuelve true si lo creó.
func (l *Ledger) CreateIfAbsent(processID string, totalValue decimal.Decimal) (bool, error) {
	if processID == "" {
		return false, fmt.Errorf("%w: process_id vacío", domain.ErrInvalidInput)
	}
	if _, ok := l.index[processID]; ok {
		return false, nil
	}
	s := entity.NewProcessState(processID, totalValue)
	s.LastUpdated = l.now()
	l.index[processID] = len(l.states)
	l.states = append(l.states, s)
	return true, nil
}

// RecordAdvance suma un adelanto y su comisión (por colaborador) al proceso.
func (l *Ledger) RecordAdvance(processID string, amount decimal.Decimal, commissions entity.RateMap, date time.Time) error {
	return l.recordPayment(processID, entity.EntryAdvance, amount, commissions, date)
}

// RecordRegular suma un pago regular y su comisión al proceso.
func (l *Ledger) RecordRegular(processID string, amount decimal.Decimal, commissions entity.RateMap, date time.Time) error {
	return l.recordPayment(processID, entity.EntryRegular, amount, commissions, date)
}

func (l *Ledger) recordPayment(processID string, kind entity.EntryType, amount decimal.Decimal, commissions entity.RateMap, date time.Time) error {
	s, err := l.mutable(processID)
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: monto negativo %s en %s", domain.ErrInvalidInput, amount, processID)
	}
	for name, c := range commissions {
		if c.IsNegative() {
			return fmt.Errorf("%w: comisión negativa para %s en %s", domain.ErrInvalidInput, name, processID)
		}
	}
	total := commissions.Sum()

	switch kind {
	case entity.EntryAdvance:
		s.TotalAdvanced = s.TotalAdvanced.Add(amount)
		s.TotalCommissionAdvanced = s.TotalCommissionAdvanced.Add(total)
		if s.AdvancedCommission == nil {
			s.AdvancedCommission = entity.RateMap{}
		}
		for name, c := range commissions {
			s.AdvancedCommission[name] = s.AdvancedCommission[name].Add(c)
		}
	case entity.EntryRegular:
		s.TotalRegularPaid = s.TotalRegularPaid.Add(amount)
		s.TotalCommissionRegular = s.TotalCommissionRegular.Add(total)
	}
	s.TotalPaidAccumulated = s.TotalAdvanced.Add(s.TotalRegularPaid)
	s.TotalCommissionAccumulated = s.TotalCommissionAdvanced.Add(s.TotalCommissionRegular)

	if !date.IsZero() {
		if s.FirstPaymentDate.IsZero() || date.Before(s.FirstPaymentDate) {
			s.FirstPaymentDate = date
		}
		if date.After(s.LastPaymentDate) {
			s.LastPaymentDate = date
		}
	}
	s.PaymentCount++
	s.LastUpdated = l.now()
	return nil
}

// SetRates congela TCMP/FCMP. Solo tiene efecto una vez: si ya están calculadas
// devuelve ErrRatesFrozen sin tocar el estado.
func (l *Ledger) SetRates(processID string, rates Rates) error {
	s, err := l.mutable(processID)
	if err != nil {
		return err
	}
	if s.RateCalcStatus == entity.RateCalcCalculated {
		return fmt.Errorf("%w: %s", domain.ErrRatesFrozen, processID)
	}
	if rates.InvoicingPeriod.IsZero() {
		return fmt.Errorf("%w: período de facturación requerido", domain.ErrInvalidInput)
	}
	s.TCMP = rates.TCMP.Clone()
	s.FCMP = rates.FCMP.Clone()
	s.CollaboratorRoles = make(map[string]string, len(rates.Roles))
	for k, v := range rates.Roles {
		s.CollaboratorRoles[k] = v
	}
	s.InvoicingPeriod = rates.InvoicingPeriod
	s.RateCalcStatus = entity.RateCalcCalculated
	s.LastUpdated = l.now()
	return nil
}

// GetRates devuelve las tasas solo si están congeladas.
func (l *Ledger) GetRates(processID string) (Rates, bool) {
	i, ok := l.index[processID]
	if !ok {
		return Rates{}, false
	}
	s := l.states[i]
	if s.RateCalcStatus != entity.RateCalcCalculated {
		return Rates{}, false
	}
	c := s.Clone()
	return Rates{TCMP: c.TCMP, FCMP: c.FCMP, Roles: c.CollaboratorRoles, InvoicingPeriod: c.InvoicingPeriod}, true
}

// MarkReconciled transición única a CALCULATED. Reintentar devuelve ErrConflict.
func (l *Ledger) MarkReconciled(processID string) error {
	s, err := l.mutable(processID)
	if err != nil {
		return err
	}
	if s.RateCalcStatus != entity.RateCalcCalculated {
		return fmt.Errorf("%w: %s sin tasas calculadas", domain.ErrConflict, processID)
	}
	if s.ReconciliationStatus == entity.ReconciliationCalculated {
		return fmt.Errorf("%w: %s ya reconciliado", domain.ErrConflict, processID)
	}
	s.ReconciliationStatus = entity.ReconciliationCalculated
	s.LastUpdated = l.now()
	return nil
}

// ListProcessIDs ids en orden de inserción.
func (l *Ledger) ListProcessIDs() []string {
	ids := make([]string, len(l.states))
	for i, s := range l.states {
		ids[i] = s.ProcessID
	}
	return ids
}

// Export tabla completa (copias) en orden de inserción, lista para persistir.
func (l *Ledger) Export() []entity.ProcessState {
	out := make([]entity.ProcessState, len(l.states))
	for i, s := range l.states {
		out[i] = s.Clone()
	}
	return out
}

func (l *Ledger) mutable(processID string) (*entity.ProcessState, error) {
	i, ok := l.index[processID]
	if !ok {
		return nil, fmt.Errorf("%w: proceso %s", domain.ErrNotFound, processID)
	}
	return &l.states[i], nil
}
