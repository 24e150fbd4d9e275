package receivables

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// InputSource entrega las filas financieras del período y la base comercial.
type InputSource interface {
	// LoadFinancial filas ya filtradas al tipo "pagado" y al mes/año del período.
	LoadFinancial(ctx context.Context, period entity.Period) ([]entity.FinancialRow, error)
	LoadCommercial(ctx context.Context) ([]entity.CommercialItem, error)
}

// CollaboratorIdentifier devuelve los colaboradores elegibles de un proceso.
type CollaboratorIdentifier interface {
	Identify(ctx context.Context, processID string, items []entity.CommercialItem) ([]entity.Collaborator, error)
}

// RateRuleProvider devuelve el par de porcentajes para un ítem y cargo.
type RateRuleProvider interface {
	Rule(ctx context.Context, item entity.CommercialItem, role string) (entity.RateRule, error)
}

// GoalEvaluator devuelve el factor de corrección de un ítem para un colaborador.
type GoalEvaluator interface {
	CorrectionFactor(ctx context.Context, item entity.CommercialItem, collaborator entity.Collaborator) (decimal.Decimal, entity.FactorDetail, error)
}

// OutputWriter materializa las salidas de una ejecución (planillas, etc.).
type OutputWriter interface {
	Write(ctx context.Context, report *RunReport) error
}

// AuditReporter genera el reporte de auditoría de la ejecución (opcional).
type AuditReporter interface {
	Render(ctx context.Context, report *RunReport) error
}

// MetricsRecorder registra métricas de la ejecución (opcional).
type MetricsRecorder interface {
	ObserveRun(report *RunReport, duration time.Duration, err error)
}
