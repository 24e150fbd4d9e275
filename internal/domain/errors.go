package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrRatesFrozen   = errors.New("las tasas del proceso ya están congeladas")
	ErrNoRateData    = errors.New("sin datos de tasa para el proceso")
	ErrLedgerCorrupt = errors.New("snapshot del ledger inconsistente")
	ErrRunInProgress = errors.New("ya hay una ejecución en curso")
)
