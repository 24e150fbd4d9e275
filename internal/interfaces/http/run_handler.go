package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/receivables-commissions/internal/application/dto"
	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain"
)

// RunHandler dispara la ejecución mensual (solo admin).
type RunHandler struct {
	uc *receivables.RunUseCase
}

// NewRunHandler construye el handler.
func NewRunHandler(uc *receivables.RunUseCase) *RunHandler {
	return &RunHandler{uc: uc}
}

// Create godoc
// @Summary      Ejecutar el cálculo de un período
// @Description  Ejecuta de forma síncrona. 409 si ya hay una ejecución en curso.
// @Tags         runs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RunRequest  true  "Mes y año"
// @Success      200   {object}  dto.RunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/runs [post]
func (h *RunHandler) Create(c *fiber.Ctx) error {
	var in dto.RunRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Execute(c.UserContext(), in)
	switch {
	case err == nil:
		return c.JSON(out)
	case errors.Is(err, domain.ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RUN_IN_PROGRESS", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "RUN_FAILED", Message: err.Error()})
	}
}
