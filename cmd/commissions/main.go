// commissions ejecuta la corrida mensual de comisiones sobre recebimento.
//
// Uso: go run ./cmd/commissions [-month 3 -year 2025]
// Sin flags procesa el mes anterior al actual. Las rutas de entrada, el backend
// del ledger y el directorio de salida se leen de la configuración (.env / env vars).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/bootstrap"
	"github.com/jhoicas/receivables-commissions/pkg/config"
	"github.com/jhoicas/receivables-commissions/pkg/logger"
)

func main() {
	prev := entity.PeriodOf(time.Now()).Previous()
	month := flag.Int("month", prev.Month, "mes a procesar (1-12)")
	year := flag.Int("year", prev.Year, "año a procesar")
	flag.Parse()

	period, err := entity.NewPeriod(*month, *year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "período inválido: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, log, period)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, period entity.Period) int {
	deps, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("armar dependencias")
		return 1
	}
	defer deps.Close()

	report, runErr := deps.Orchestrator.Run(ctx, period)

	if cfg.Output.MetricsTextfile != "" {
		if err := deps.Metrics.WriteToTextfile(cfg.Output.MetricsTextfile); err != nil {
			log.Warn().Err(err).Str("path", cfg.Output.MetricsTextfile).Msg("exportar métricas")
		}
	}

	if runErr != nil {
		ev := log.Error().Err(runErr).Str("period", period.String())
		if report != nil {
			ev = ev.Str("stage", string(report.Stage))
		}
		ev.Msg("corrida fallida")
		if errors.Is(runErr, domain.ErrInvalidInput) {
			return 2
		}
		return 1
	}

	log.Info().
		Str("run_id", report.RunID).
		Str("period", period.String()).
		Str("outcome", string(report.Outcome)).
		Int("advances", len(report.Advances)).
		Int("regulars", len(report.Regulars)).
		Int("reconciliations", len(report.Reconciliations)).
		Str("advance_total", report.TotalCommission(entity.EntryAdvance).StringFixed(2)).
		Str("regular_total", report.TotalCommission(entity.EntryRegular).StringFixed(2)).
		Str("net_adjustment", report.NetAdjustment().StringFixed(2)).
		Msg("corrida finalizada")
	if report.Outcome == receivables.OutcomeFailed {
		return 1
	}
	return 0
}
