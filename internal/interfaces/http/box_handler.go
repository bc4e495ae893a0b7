package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/marketbox-api/internal/application/usecase"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// BoxHandler catálogo maestro de cajas.
type BoxHandler struct {
	uc  *usecase.BoxUseCase
	log *logger.Logger
}

// NewBoxHandler construye el handler.
func NewBoxHandler(uc *usecase.BoxUseCase, log *logger.Logger) *BoxHandler {
	return &BoxHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar cajas disponibles
// @Tags         boxes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.BoxListResponse
// @Router       /api/boxes [get]
func (h *BoxHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
