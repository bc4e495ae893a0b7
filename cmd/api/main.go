// @title           Marketbox API
// @version         1.0
// @description     Cajas de empaque para tiendas del marketplace: órdenes, inventario por tienda y sincronización con el catálogo Shopify.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/marketbox-api/docs"
	"github.com/jhoicas/marketbox-api/internal/application/boxorder"
	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
	"github.com/jhoicas/marketbox-api/internal/application/usecase"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
	"github.com/jhoicas/marketbox-api/internal/infrastructure/memory"
	"github.com/jhoicas/marketbox-api/internal/infrastructure/postgres"
	"github.com/jhoicas/marketbox-api/internal/infrastructure/shopify"
	httpRouter "github.com/jhoicas/marketbox-api/internal/interfaces/http"
	"github.com/jhoicas/marketbox-api/pkg/config"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// repos agrupa los adaptadores de persistencia elegidos según DB_DRIVER.
type repos struct {
	boxes       repository.BoxRepository
	stores      repository.StoreRepository
	bundles     repository.BundleRepository
	orders      repository.StoreBoxOrderRepository
	inventories repository.StoreBoxInventoryRepository
	tx          boxorder.TxRunner
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}
	if cfg.Shopify.MarketplaceStoreURL == "" {
		log.Warn().Msg("MARKETPLACE_STORE_URL vacío: la sincronización de catálogo fallará")
	}

	ctx := context.Background()
	r, err := openRepos(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer r.close()

	// Catálogo remoto: Admin GraphQL API de la tienda marketplace
	shopifyClient := shopify.NewClient(cfg.Shopify.APIVersion, cfg.Shopify.RequestTimeout)
	syncer := catalogsync.NewSyncer(
		shopify.NewCatalog(shopifyClient),
		r.stores, r.bundles, r.boxes, r.inventories,
		catalogsync.Options{
			MarketplaceStoreURL:  cfg.Shopify.MarketplaceStoreURL,
			PackagingOptionName:  cfg.Shopify.PackagingOptionName,
			PackagingOptionValue: cfg.Shopify.PackagingOptionValue,
			LocationName:         cfg.Shopify.LocationName,
			Concurrency:          cfg.Sync.Concurrency,
		},
		log,
	)

	boxOrderUC := boxorder.NewUseCase(
		r.tx, r.stores, r.boxes, r.orders, syncer,
		boxorder.SyncMode{Async: cfg.Sync.Async, Timeout: cfg.Sync.Timeout},
		log,
	)
	boxUC := usecase.NewBoxUseCase(r.boxes)
	storeBoxUC := usecase.NewStoreBoxUseCase(r.stores, r.inventories)
	storeSvc := usecase.NewStoreService(r.stores)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Marketbox API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		BoxUC:      boxUC,
		StoreBoxUC: storeBoxUC,
		BoxOrderUC: boxOrderUC,
		Stores:     storeSvc,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	// Las sincronizaciones en curso terminan antes de cerrar el pool.
	boxOrderUC.Wait()
	log.Info().Msg("aplicación detenida")
}

func openRepos(ctx context.Context, cfg config.DBConfig) (*repos, error) {
	if cfg.Driver == "memory" {
		db := memory.NewStore()
		return &repos{
			boxes:       db.Boxes(),
			stores:      db.Stores(),
			bundles:     db.Bundles(),
			orders:      db.Orders(),
			inventories: db.Inventories(),
			tx:          memory.NewTxRunner(db),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &repos{
		boxes:       postgres.NewBoxRepository(pool),
		stores:      postgres.NewStoreRepository(pool),
		bundles:     postgres.NewBundleRepository(pool),
		orders:      postgres.NewStoreBoxOrderRepository(pool),
		inventories: postgres.NewStoreBoxInventoryRepository(pool),
		tx:          postgres.NewTxRunner(pool),
		close:       pool.Close,
	}, nil
}
