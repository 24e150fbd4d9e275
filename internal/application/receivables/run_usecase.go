package receivables

import (
	"context"
	"fmt"

	"github.com/jhoicas/receivables-commissions/internal/application/dto"
	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// Runner ejecuta un período (lo implementa *BatchOrchestrator).
type Runner interface {
	Run(ctx context.Context, period entity.Period) (*RunReport, error)
}

// RunUseCase dispara una ejecución desde la API.
type RunUseCase struct {
	runner Runner
}

// NewRunUseCase construye el caso de uso.
func NewRunUseCase(runner Runner) *RunUseCase {
	return &RunUseCase{runner: runner}
}

// Execute valida el período y ejecuta de forma síncrona.
func (uc *RunUseCase) Execute(ctx context.Context, in dto.RunRequest) (*dto.RunResponse, error) {
	period, err := entity.NewPeriod(in.Month, in.Year)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	report, err := uc.runner.Run(ctx, period)
	if err != nil {
		return nil, err
	}
	return ToRunResponse(report), nil
}

// ToRunResponse resume el reporte para la API.
func ToRunResponse(r *RunReport) *dto.RunResponse {
	return &dto.RunResponse{
		RunID:               r.RunID,
		Period:              r.Period.String(),
		Outcome:             string(r.Outcome),
		PaymentRows:         r.PaymentRows,
		AdvanceLines:        len(r.Advances),
		RegularLines:        len(r.Regulars),
		AdvanceCommission:   r.TotalCommission(entity.EntryAdvance),
		RegularCommission:   r.TotalCommission(entity.EntryRegular),
		ReconciliationLines: len(r.Reconciliations),
		RejectedLines:       len(r.RejectedLines),
		NetAdjustment:       r.NetAdjustment(),
		UnmappedDocuments:   len(r.Unmapped),
		SkippedPayments:     len(r.Skipped),
		RatesFrozen:         r.RatesFrozen,
		ReconciledProcesses: r.ReconciledProcess,
		StartedAt:           r.StartedAt,
		FinishedAt:          r.FinishedAt,
	}
}
