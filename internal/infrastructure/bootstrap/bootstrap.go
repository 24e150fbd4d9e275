package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain/repository"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/memory"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/pdf"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/postgres"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/rules"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/xlsx"
	"github.com/jhoicas/receivables-commissions/internal/observability/metrics"
	"github.com/jhoicas/receivables-commissions/pkg/config"
	"github.com/jhoicas/receivables-commissions/pkg/logger"
)

// App dependencias armadas a partir de la configuración.
type App struct {
	Orchestrator *receivables.BatchOrchestrator
	Ledger       repository.LedgerRepository
	Metrics      *metrics.Metrics

	pool *pgxpool.Pool
}

// Build carga reglas y parámetros, elige el backend del ledger y arma el orquestador.
// Las reglas se leen una sola vez; un cambio en la planilla requiere reiniciar el proceso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	params, err := rules.LoadParams(cfg.Inputs.ParamsPath)
	if err != nil {
		return nil, fmt.Errorf("parámetros: %w", err)
	}
	tables, err := xlsx.LoadRules(cfg.Inputs.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("reglas: %w", err)
	}
	log.Info().
		Int("rate_rules", len(tables.RateRules)).
		Int("collaborators", len(tables.Collaborators)).
		Int("goals", len(tables.Goals)).
		Str("rules_path", cfg.Inputs.RulesPath).
		Msg("reglas de comisión cargadas")

	app := &App{Metrics: metrics.New()}
	if err := app.openLedger(ctx, cfg); err != nil {
		return nil, err
	}

	rates := receivables.NewRateCalculator(
		rules.NewCollaboratorIdentifier(tables, params),
		rules.NewRateRules(tables, params),
		rules.NewGoalEvaluator(tables, params),
		log,
	)
	opts := []receivables.Option{receivables.WithMetrics(app.Metrics)}
	if cfg.Output.AuditPDFEnabled {
		opts = append(opts, receivables.WithAuditReporter(pdf.NewAuditReporter(cfg.Output.Dir)))
	}
	app.Orchestrator = receivables.NewBatchOrchestrator(
		xlsx.NewInputSource(cfg.Inputs.FinancialPath, cfg.Inputs.CommercialPath, cfg.Commission.PaidSettlementType),
		app.Ledger,
		rates,
		xlsx.NewOutputWriter(cfg.Output.Dir),
		receivables.Settings{
			AdvancePrefix:  cfg.Commission.AdvancePrefix,
			InvoicedStatus: params.InvoicedStatus,
		},
		log,
		opts...,
	)
	return app, nil
}

func (a *App) openLedger(ctx context.Context, cfg *config.Config) error {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("conectar a PostgreSQL: %w", err)
		}
		repo := postgres.NewLedgerRepository(postgres.OpenDB(pool))
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return err
		}
		a.pool = pool
		a.Ledger = repo
	case config.LedgerBackendMemory:
		a.Ledger = memory.NewLedgerRepository()
	default:
		a.Ledger = xlsx.NewLedgerStore(cfg.Ledger.Path)
	}
	return nil
}

// Close libera el pool de PostgreSQL si se abrió.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
