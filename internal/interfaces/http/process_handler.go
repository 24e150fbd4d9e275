package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/receivables-commissions/internal/application/dto"
	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
)

// ProcessHandler consultas del ledger de procesos (protegido).
type ProcessHandler struct {
	uc *receivables.LedgerQueryUseCase
}

// NewProcessHandler construye el handler.
func NewProcessHandler(uc *receivables.LedgerQueryUseCase) *ProcessHandler {
	return &ProcessHandler{uc: uc}
}

// List godoc
// @Summary      Listar procesos del ledger
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ProcessListResponse
// @Failure      500     {object}  dto.ErrorResponse
// @Router       /api/processes [get]
func (h *ProcessHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	out, err := h.uc.List(c.UserContext(), page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener proceso por ID
// @Tags         processes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del proceso"
// @Success      200  {object}  dto.ProcessStateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/processes/{id} [get]
func (h *ProcessHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "proceso no encontrado"})
	}
	return c.JSON(out)
}
