package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledger en memoria (tests y ejecuciones de prueba sin persistencia).
type LedgerRepo struct {
	mu     sync.RWMutex
	states []entity.ProcessState
	saves  int
}

// NewLedgerRepository construye el repo con un snapshot inicial opcional.
func NewLedgerRepository(initial ...entity.ProcessState) *LedgerRepo {
	r := &LedgerRepo{}
	r.states = cloneAll(initial)
	return r
}

// Load devuelve una copia del snapshot.
func (r *LedgerRepo) Load(_ context.Context) ([]entity.ProcessState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.states), nil
}

// Save reemplaza el snapshot.
func (r *LedgerRepo) Save(_ context.Context, states []entity.ProcessState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = cloneAll(states)
	r.saves++
	return nil
}

// Saves cantidad de veces que se persistió.
func (r *LedgerRepo) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

func cloneAll(states []entity.ProcessState) []entity.ProcessState {
	out := make([]entity.ProcessState, len(states))
	for i, s := range states {
		out[i] = s.Clone()
	}
	return out
}
