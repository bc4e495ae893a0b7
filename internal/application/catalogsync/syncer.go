package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/packaging"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// Options parámetros de la sincronización (vienen de config.ShopifyConfig / SyncConfig).
type Options struct {
	MarketplaceStoreURL  string
	PackagingOptionName  string
	PackagingOptionValue string
	LocationName         string
	Concurrency          int
}

// Syncer propaga el ledger de cajas de una tienda a la variante "con empaque" de cada
// bundle publicado en el catálogo del marketplace.
//
// Es best-effort: cada caja se procesa en su propia goroutine y sus bundles en secuencia;
// el fallo de un bundle queda en el Report y en el log, nunca aborta a los demás ni se
// propaga al llamador. El ledger y el catálogo pueden divergir hasta la siguiente corrida.
type Syncer struct {
	client    CatalogClient
	stores    repository.StoreRepository
	bundles   repository.BundleRepository
	boxes     repository.BoxRepository
	inventory repository.StoreBoxInventoryRepository
	opts      Options
	log       *logger.Logger
}

// NewSyncer construye el sincronizador.
func NewSyncer(
	client CatalogClient,
	stores repository.StoreRepository,
	bundles repository.BundleRepository,
	boxes repository.BoxRepository,
	inventory repository.StoreBoxInventoryRepository,
	opts Options,
	log *logger.Logger,
) *Syncer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Syncer{
		client:    client,
		stores:    stores,
		bundles:   bundles,
		boxes:     boxes,
		inventory: inventory,
		opts:      opts,
		log:       log.WithComponent("catalogsync"),
	}
}

// SyncStore carga el ledger de la tienda y lo sincroniza. ErrNotFound si no hay ledger.
func (s *Syncer) SyncStore(ctx context.Context, storeID string) (*Report, error) {
	inv, err := s.inventory.GetByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("cargar ledger: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return s.SyncLedgerToCatalog(ctx, storeID, inv.Entries), nil
}

// SyncLedgerToCatalog sincroniza las entradas dadas y devuelve el reporte de la corrida.
func (s *Syncer) SyncLedgerToCatalog(ctx context.Context, storeID string, entries []entity.StoreBoxInventoryEntry) *Report {
	report := &Report{StoreID: storeID}
	if len(entries) == 0 {
		return report
	}

	shop, location, err := s.prepare(ctx)
	if err != nil {
		report.Err = err
		s.log.Error().Err(err).Str("store_id", storeID).Msg("sincronización de catálogo no iniciada")
		return report
	}

	boxes, err := s.resolveBoxes(ctx, entries)
	if err != nil {
		report.Err = err
		s.log.Error().Err(err).Str("store_id", storeID).Msg("no se pudieron cargar las cajas")
		return report
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.opts.Concurrency)
	for _, entry := range entries {
		g.Go(func() error {
			results := s.syncBox(ctx, shop, location, storeID, entry, boxes[entry.BoxID])
			mu.Lock()
			report.Results = append(report.Results, results...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // las goroutines nunca devuelven error

	report.sort()
	s.log.Info().
		Str("store_id", storeID).
		Int("synced", report.Count(StatusSynced)).
		Int("skipped", report.Count(StatusSkipped)).
		Int("failed", report.Count(StatusFailed)).
		Msg("sincronización de catálogo finalizada")
	return report
}

// prepare resuelve la tienda del marketplace y la ubicación de inventario.
func (s *Syncer) prepare(ctx context.Context) (Shop, Location, error) {
	market, err := s.stores.GetByURL(ctx, s.opts.MarketplaceStoreURL)
	if err != nil {
		return Shop{}, Location{}, fmt.Errorf("cargar tienda marketplace: %w", err)
	}
	if market == nil {
		return Shop{}, Location{}, fmt.Errorf("tienda marketplace %q: %w", s.opts.MarketplaceStoreURL, domain.ErrStoreNotFound)
	}
	shop := Shop{Domain: market.StoreURL, AccessToken: market.AccessToken}

	locations, err := s.client.GetLocations(ctx, shop)
	if err != nil {
		return Shop{}, Location{}, fmt.Errorf("consultar ubicaciones: %w", err)
	}
	loc, ok := pickLocation(locations, s.opts.LocationName)
	if !ok {
		return Shop{}, Location{}, errors.New("la tienda marketplace no tiene ubicaciones")
	}
	return shop, loc, nil
}

// pickLocation prefiere la ubicación con el nombre configurado; si no, la primera.
func pickLocation(locations []Location, name string) (Location, bool) {
	if len(locations) == 0 {
		return Location{}, false
	}
	for _, l := range locations {
		if l.Name == name {
			return l, true
		}
	}
	return locations[0], true
}

func (s *Syncer) resolveBoxes(ctx context.Context, entries []entity.StoreBoxInventoryEntry) (map[string]*entity.Box, error) {
	boxes := make(map[string]*entity.Box, len(entries))
	var missing []string
	for _, e := range entries {
		if e.Box != nil {
			boxes[e.BoxID] = e.Box
		} else {
			missing = append(missing, e.BoxID)
		}
	}
	if len(missing) == 0 {
		return boxes, nil
	}
	found, err := s.boxes.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, b := range found {
		boxes[id] = b
	}
	return boxes, nil
}

// syncBox procesa en secuencia los bundles de la tienda que usan la caja, en orden de
// creación. El vínculo con Shopify del ledger queda con el último bundle sincronizado.
func (s *Syncer) syncBox(ctx context.Context, shop Shop, loc Location, storeID string, entry entity.StoreBoxInventoryEntry, box *entity.Box) (results []BundleResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			s.log.Error().Err(err).Str("store_id", storeID).Str("box_id", entry.BoxID).Msg("sincronización de caja abortada")
			results = append(results, BundleResult{BoxID: entry.BoxID, Status: StatusFailed, Step: StepPanic, Err: err})
		}
	}()

	bundles, err := s.bundles.ListByStoreAndBox(ctx, storeID, entry.BoxID)
	if err != nil {
		s.log.Error().Err(err).Str("store_id", storeID).Str("box_id", entry.BoxID).Msg("no se pudieron listar los bundles")
		return []BundleResult{{BoxID: entry.BoxID, Status: StatusFailed, Step: StepListBundles, Err: err}}
	}

	for _, b := range bundles {
		res := s.syncBundle(ctx, shop, loc, storeID, entry, box, b)
		if res.Status == StatusFailed {
			s.log.Error().Err(res.Err).
				Str("store_id", storeID).
				Str("box_id", entry.BoxID).
				Str("bundle_id", b.ID).
				Str("product_id", b.ShopifyProductID).
				Str("step", res.Step).
				Msg("sincronización de bundle fallida")
		}
		results = append(results, res)
	}
	return results
}

func (s *Syncer) syncBundle(ctx context.Context, shop Shop, loc Location, storeID string, entry entity.StoreBoxInventoryEntry, box *entity.Box, b *entity.Bundle) BundleResult {
	res := BundleResult{BoxID: entry.BoxID, BundleID: b.ID}
	fail := func(step string, err error) BundleResult {
		res.Status, res.Step, res.Err = StatusFailed, step, err
		return res
	}

	if b.ShopifyProductID == "" {
		res.Status, res.Step = StatusSkipped, StepUnpublished
		return res
	}
	if box == nil {
		return fail(StepBox, fmt.Errorf("caja %s: %w", entry.BoxID, domain.ErrNotFound))
	}

	variants, err := s.client.GetProductVariants(ctx, shop, b.ShopifyProductID)
	if err != nil {
		return fail(StepFetchVariants, err)
	}
	variant := s.findPackagingVariant(variants)
	if variant == nil {
		variant, err = s.client.CreateVariant(ctx, shop, b.ShopifyProductID, SelectedOption{
			Name:  s.opts.PackagingOptionName,
			Value: s.opts.PackagingOptionValue,
		})
		if err != nil {
			return fail(StepCreateVariant, err)
		}
	}
	res.VariantID = variant.ID

	spec := packaging.BuildVariantSpec(b, box)
	if err := s.client.UpdateVariant(ctx, shop, b.ShopifyProductID, VariantUpdate{
		VariantID:       variant.ID,
		Price:           spec.Price,
		CompareAtPrice:  spec.CompareAtPrice,
		InventoryPolicy: spec.InventoryPolicy,
		SKU:             spec.SKU,
		Tracked:         true,
	}); err != nil {
		return fail(StepUpdateVariant, err)
	}

	delta := packaging.InventoryDelta(entry.Remaining, b.Inventory, variant.InventoryQuantity)
	if delta != 0 {
		if err := s.client.AdjustInventory(ctx, shop, InventoryAdjustment{
			InventoryItemID: variant.InventoryItemID,
			LocationID:      loc.ID,
			Delta:           delta,
		}); err != nil {
			return fail(StepAdjustInventory, err)
		}
	}
	res.Delta = delta

	link := entity.ShopifyLink{ProductID: b.ShopifyProductID, VariantID: variant.ID}
	if err := s.inventory.SetShopifyLink(ctx, storeID, entry.BoxID, link); err != nil {
		s.log.Warn().Err(err).Str("store_id", storeID).Str("box_id", entry.BoxID).Msg("no se pudo guardar el vínculo con Shopify")
	}

	res.Status = StatusSynced
	return res
}

func (s *Syncer) findPackagingVariant(variants []RemoteVariant) *RemoteVariant {
	for i := range variants {
		if variants[i].HasOption(s.opts.PackagingOptionName, s.opts.PackagingOptionValue) {
			return &variants[i]
		}
	}
	return nil
}
