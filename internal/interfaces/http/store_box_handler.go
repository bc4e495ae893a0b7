package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/marketbox-api/internal/application/boxorder"
	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/internal/application/usecase"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// StoreBoxHandler consulta y reconciliación del inventario de cajas por tienda.
type StoreBoxHandler struct {
	uc     *usecase.StoreBoxUseCase
	orders *boxorder.UseCase
	log    *logger.Logger
}

// NewStoreBoxHandler construye el handler.
func NewStoreBoxHandler(uc *usecase.StoreBoxUseCase, orders *boxorder.UseCase, log *logger.Logger) *StoreBoxHandler {
	return &StoreBoxHandler{uc: uc, orders: orders, log: log}
}

// Mine godoc
// @Summary      Inventario de cajas de la tienda autenticada
// @Description  Devuelve null si la tienda aún no recibió cajas.
// @Tags         store-boxes
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StoreBoxInventoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/store-boxes [get]
func (h *StoreBoxHandler) Mine(c *fiber.Ctx) error {
	return h.byStore(c, GetStoreURL(c))
}

// ByStore godoc
// @Summary      Inventario de cajas de otra tienda (solo tienda interna)
// @Tags         store-boxes
// @Security     Bearer
// @Produce      json
// @Param        storeUrl  query  string  true  "Dominio myshopify de la tienda"
// @Success      200  {object}  dto.StoreBoxInventoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/store-boxes/by-store [get]
func (h *StoreBoxHandler) ByStore(c *fiber.Ctx) error {
	storeURL := c.Query("storeUrl")
	if storeURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_STORE_URL", Message: "storeUrl es requerido"})
	}
	return h.byStore(c, storeURL)
}

func (h *StoreBoxHandler) byStore(c *fiber.Ctx, storeURL string) error {
	out, err := h.uc.GetByStoreURL(c.UserContext(), storeURL)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}

// Sync godoc
// @Summary      Re-sincronizar el catálogo con el inventario de cajas de una tienda
// @Description  Corre la sincronización de forma síncrona y devuelve el reporte por bundle.
// @Tags         store-boxes
// @Security     Bearer
// @Produce      json
// @Param        storeId  path  string  true  "ID de la tienda"
// @Success      200  {object}  dto.SyncReportResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/store-boxes/{storeId}/sync [post]
func (h *StoreBoxHandler) Sync(c *fiber.Ctx) error {
	out, err := h.orders.SyncStore(c.UserContext(), GetStoreURL(c), c.Params("storeId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(out)
}
