package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerQuery    *receivables.LedgerQueryUseCase
	RunUC          *receivables.RunUseCase
	MetricsHandler http.Handler // nil = sin /metrics
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Ledger (cualquier rol)
	processes := protected.Group("/processes", RequireRole(RoleAdmin, RoleAnalyst))
	processHandler := NewProcessHandler(deps.LedgerQuery)
	processes.Get("/", processHandler.List)
	processes.Get("/:id", processHandler.GetByID)

	// Ejecuciones (solo admin)
	runs := protected.Group("/runs", RequireRole(RoleAdmin))
	runHandler := NewRunHandler(deps.RunUC)
	runs.Post("/", runHandler.Create)
}
