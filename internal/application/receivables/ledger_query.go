package receivables

import (
	"context"
	"fmt"

	"github.com/jhoicas/receivables-commissions/internal/application/dto"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/domain/repository"
)

// LedgerQueryUseCase consultas de solo lectura sobre el último snapshot persistido.
type LedgerQueryUseCase struct {
	store repository.LedgerRepository
}

// NewLedgerQueryUseCase construye el caso de uso.
func NewLedgerQueryUseCase(store repository.LedgerRepository) *LedgerQueryUseCase {
	return &LedgerQueryUseCase{store: store}
}

// List devuelve una página del ledger en el orden persistido.
func (uc *LedgerQueryUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProcessListResponse, error) {
	page.Normalize()
	states, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar ledger: %w", err)
	}
	out := &dto.ProcessListResponse{
		Items: []dto.ProcessStateResponse{},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(states)},
	}
	if page.Offset >= len(states) {
		return out, nil
	}
	end := page.Offset + page.Limit
	if end > len(states) {
		end = len(states)
	}
	for _, s := range states[page.Offset:end] {
		out.Items = append(out.Items, ToProcessStateResponse(s))
	}
	return out, nil
}

// GetByID devuelve nil si el proceso no existe.
func (uc *LedgerQueryUseCase) GetByID(ctx context.Context, processID string) (*dto.ProcessStateResponse, error) {
	states, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("cargar ledger: %w", err)
	}
	for _, s := range states {
		if s.ProcessID == processID {
			resp := ToProcessStateResponse(s)
			return &resp, nil
		}
	}
	return nil, nil
}

// ToProcessStateResponse mapea la entidad al DTO HTTP.
func ToProcessStateResponse(s entity.ProcessState) dto.ProcessStateResponse {
	resp := dto.ProcessStateResponse{
		ProcessID:                  s.ProcessID,
		TotalValue:                 s.TotalValue,
		TotalAdvanced:              s.TotalAdvanced,
		TotalRegularPaid:           s.TotalRegularPaid,
		TotalPaidAccumulated:       s.TotalPaidAccumulated,
		OutstandingBalance:         s.OutstandingBalance(),
		TotalCommissionAdvanced:    s.TotalCommissionAdvanced,
		TotalCommissionRegular:     s.TotalCommissionRegular,
		TotalCommissionAccumulated: s.TotalCommissionAccumulated,
		PaymentStatus:              string(s.PaymentStatus()),
		RateCalcStatus:             string(s.RateCalcStatus),
		ReconciliationStatus:       string(s.ReconciliationStatus),
		InvoicingPeriod:            s.InvoicingPeriod.String(),
		TCMP:                       s.TCMP.Clone(),
		FCMP:                       s.FCMP.Clone(),
		Collaborators:              s.Collaborators(),
		PaymentCount:               s.PaymentCount,
		LastUpdated:                s.LastUpdated,
	}
	if !s.FirstPaymentDate.IsZero() {
		d := s.FirstPaymentDate
		resp.FirstPaymentDate = &d
	}
	if !s.LastPaymentDate.IsZero() {
		d := s.LastPaymentDate
		resp.LastPaymentDate = &d
	}
	return resp
}
