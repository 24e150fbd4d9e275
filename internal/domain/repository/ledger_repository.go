package repository

import (
	"context"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del ledger de procesos.
// Se lee completo al inicio de la ejecución y se reemplaza completo al final.
type LedgerRepository interface {
	// Load devuelve el último snapshot (vacío si nunca se persistió).
	Load(ctx context.Context) ([]entity.ProcessState, error)
	// Save reemplaza el snapshot de forma atómica: o se escribe todo o nada.
	Save(ctx context.Context, states []entity.ProcessState) error
}
