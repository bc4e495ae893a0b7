package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/marketbox-api/internal/application/boxorder"
	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// BoxOrderHandler maneja las órdenes de cajas de empaque (protegido).
type BoxOrderHandler struct {
	uc  *boxorder.UseCase
	log *logger.Logger
}

// NewBoxOrderHandler construye el handler.
func NewBoxOrderHandler(uc *boxorder.UseCase, log *logger.Logger) *BoxOrderHandler {
	return &BoxOrderHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear orden de cajas
// @Description  Agrupa las líneas por caja (sumando cantidades) y guarda la orden en estado pending.
// @Tags         store-box-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStoreBoxOrderRequest  true  "Líneas de la orden"
// @Success      201   {object}  dto.StoreBoxOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/store-box-orders [post]
func (h *BoxOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStoreBoxOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.UserContext(), GetStoreURL(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de cajas
// @Tags         store-box-orders
// @Security     Bearer
// @Produce      json
// @Param        page  query  int  false  "Página (10 por página)"  default(1)
// @Success      200   {object}  dto.StoreBoxOrderListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/store-box-orders [get]
func (h *BoxOrderHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	out, err := h.uc.List(c.UserContext(), GetStoreURL(c), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Aprobar o cancelar una orden de cajas
// @Description  delivered suma la orden al inventario de cajas de la tienda y sincroniza el catálogo del marketplace.
// @Tags         store-box-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la orden"
// @Param        body  body  dto.UpdateStoreBoxOrderRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/store-box-orders/{id} [patch]
func (h *BoxOrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateStoreBoxOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateStatus(c.UserContext(), GetStoreURL(c), id, in.Status); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "orden actualizada a " + in.Status})
}
