package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/marketbox-api/internal/application/boxorder"
	"github.com/jhoicas/marketbox-api/internal/application/usecase"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	BoxUC      *usecase.BoxUseCase
	StoreBoxUC *usecase.StoreBoxUseCase
	BoxOrderUC *boxorder.UseCase
	Stores     *usecase.StoreService
	JWTSecret  string
	Logger     *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger.WithComponent("http")

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token con store_url)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	internalOnly := RequireInternalStore(deps.Stores, log)

	// Boxes
	boxHandler := NewBoxHandler(deps.BoxUC, log)
	api.Get("/boxes", boxHandler.List)

	// Store box orders
	orders := api.Group("/store-box-orders")
	orderHandler := NewBoxOrderHandler(deps.BoxOrderUC, log)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Patch("/:id", internalOnly, orderHandler.UpdateStatus)

	// Store boxes (ledger)
	storeBoxes := api.Group("/store-boxes")
	storeBoxHandler := NewStoreBoxHandler(deps.StoreBoxUC, deps.BoxOrderUC, log)
	storeBoxes.Get("/", storeBoxHandler.Mine)
	storeBoxes.Get("/by-store", internalOnly, storeBoxHandler.ByStore)
	storeBoxes.Post("/:storeId/sync", internalOnly, storeBoxHandler.Sync)
}
