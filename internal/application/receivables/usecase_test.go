package receivables_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/receivables-commissions/internal/application/dto"
	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/memory"
)

type runnerFunc func(ctx context.Context, p entity.Period) (*receivables.RunReport, error)

func (f runnerFunc) Run(ctx context.Context, p entity.Period) (*receivables.RunReport, error) {
	return f(ctx, p)
}

// ── RunUseCase ───────────────────────────────────────────────────────────────

func TestRunUseCase_PeriodoInvalido(t *testing.T) {
	called := false
	uc := receivables.NewRunUseCase(runnerFunc(func(context.Context, entity.Period) (*receivables.RunReport, error) {
		called = true
		return nil, nil
	}))

	_, err := uc.Execute(context.Background(), dto.RunRequest{Month: 0, Year: 2025})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.False(t, called, "no debe ejecutar con período inválido")
}

func TestRunUseCase_ResumeReporte(t *testing.T) {
	start := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	uc := receivables.NewRunUseCase(runnerFunc(func(_ context.Context, p entity.Period) (*receivables.RunReport, error) {
		return &receivables.RunReport{
			RunID:   "run-7",
			Period:  p,
			Outcome: receivables.OutcomeSuccess,
			Advances: []entity.CommissionLine{
				{Collaborator: "Ana", CommissionAmount: dec("375"), EntryType: entity.EntryAdvance},
				{Collaborator: "Bruno", CommissionAmount: dec("125"), EntryType: entity.EntryAdvance},
			},
			Reconciliations: []entity.ReconciliationLine{{Collaborator: "Ana", AdjustmentAmount: dec("-150")}},
			RatesFrozen:     []string{"100002"},
			StartedAt:       start,
			FinishedAt:      start.Add(time.Second),
		}, nil
	}))

	out, err := uc.Execute(context.Background(), dto.RunRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "run-7", out.RunID)
	assert.Equal(t, "03/2025", out.Period)
	assert.Equal(t, 2, out.AdvanceLines)
	assert.True(t, out.AdvanceCommission.Equal(dec("500")))
	assert.True(t, out.NetAdjustment.Equal(dec("-150")))
	assert.Equal(t, []string{"100002"}, out.RatesFrozen)
}

func TestRunUseCase_PropagaError(t *testing.T) {
	uc := receivables.NewRunUseCase(runnerFunc(func(context.Context, entity.Period) (*receivables.RunReport, error) {
		return nil, domain.ErrRunInProgress
	}))
	_, err := uc.Execute(context.Background(), dto.RunRequest{Month: 3, Year: 2025})
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
}

// ── LedgerQueryUseCase ───────────────────────────────────────────────────────

func seededQuery() *receivables.LedgerQueryUseCase {
	a := entity.NewProcessState("100001", dec("1000"))
	a.TotalPaidAccumulated = dec("1000")
	a.FirstPaymentDate = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	b := entity.NewProcessState("100002", dec("20000"))
	c := entity.NewProcessState("100003", dec("500"))
	return receivables.NewLedgerQueryUseCase(memory.NewLedgerRepository(a, b, c))
}

func TestLedgerQuery_Paginacion(t *testing.T) {
	uc := seededQuery()

	first, err := uc.List(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, first.Items, 3, "limit por defecto")
	assert.Equal(t, 20, first.Page.Limit)

	page, err := uc.List(context.Background(), dto.PageRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "100002", page.Items[0].ProcessID)
	assert.Equal(t, 3, page.Page.Total)

	beyond, err := uc.List(context.Background(), dto.PageRequest{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)

	clamped, err := uc.List(context.Background(), dto.PageRequest{Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, dto.MaxPageLimit, clamped.Page.Limit)
	assert.Equal(t, 0, clamped.Page.Offset)
}

func TestLedgerQuery_GetByID(t *testing.T) {
	uc := seededQuery()

	got, err := uc.GetByID(context.Background(), "100001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "COMPLETE", got.PaymentStatus)
	require.NotNil(t, got.FirstPaymentDate)
	assert.Nil(t, got.LastPaymentDate)

	missing, err := uc.GetByID(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
