package catalogsync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/infrastructure/memory"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	marketURL = "market.myshopify.com"
	storeID   = "store-merchant"
	boxA      = "box-a"
	boxB      = "box-b"
)

type fixture struct {
	db      *memory.Store
	catalog *memory.Catalog
	syncer  *catalogsync.Syncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewStore()
	db.AddStore(entity.Store{ID: "store-market", StoreURL: marketURL, AccessToken: "tok", IsInternal: true})
	db.AddStore(entity.Store{ID: storeID, StoreURL: "merchant.myshopify.com"})
	db.AddBox(entity.Box{ID: boxA, Name: "Caja A", Price: decimal.RequireFromString("5.00")})
	db.AddBox(entity.Box{ID: boxB, Name: "Caja B", Price: decimal.RequireFromString("7.50")})

	catalog := memory.NewCatalog(
		catalogsync.Location{ID: "gid://shopify/Location/1", Name: "Bodega"},
		catalogsync.Location{ID: "gid://shopify/Location/2", Name: "Shop location"},
	)
	syncer := catalogsync.NewSyncer(catalog, db.Stores(), db.Bundles(), db.Boxes(), db.Inventories(), catalogsync.Options{
		MarketplaceStoreURL:  marketURL,
		PackagingOptionName:  "Packaging",
		PackagingOptionValue: "With Packaging",
		LocationName:         "Shop location",
		Concurrency:          4,
	}, logger.Nop())
	return &fixture{db: db, catalog: catalog, syncer: syncer}
}

func packagingVariant(id string, qty int) catalogsync.RemoteVariant {
	return catalogsync.RemoteVariant{
		ID:                id,
		InventoryItemID:   id + "-item",
		InventoryQuantity: qty,
		SelectedOptions:   []catalogsync.SelectedOption{{Name: "Packaging", Value: "With Packaging"}},
	}
}

func TestSync_DeltaTopadoPorInventarioDelBundle(t *testing.T) {
	f := newFixture(t)
	f.db.AddBundle(entity.Bundle{ID: "bundle-1", StoreID: storeID, BoxID: boxA, ShopifyProductID: "prod-1",
		Price: decimal.NewFromInt(20), Inventory: 20, SKU: "B1"})
	f.catalog.AddVariant("prod-1", catalogsync.RemoteVariant{ID: "default", SelectedOptions: []catalogsync.SelectedOption{{Name: "Title", Value: "Default"}}})
	f.catalog.AddVariant("prod-1", packagingVariant("var-1", 5))
	f.db.Inventories().SetEntry(storeID, entity.StoreBoxInventoryEntry{BoxID: boxA, Quantity: 50, Remaining: 50})

	report, err := f.syncer.SyncStore(context.Background(), storeID)
	require.NoError(t, err)
	require.NoError(t, report.Err)

	res, ok := report.Find("bundle-1")
	require.True(t, ok)
	assert.Equal(t, catalogsync.StatusSynced, res.Status)
	assert.Equal(t, 15, res.Delta, "20 - 5, no 50 - 5")

	adj := f.catalog.AdjustmentsSnapshot()
	require.Len(t, adj, 1)
	assert.Equal(t, 15, adj[0].Delta)
	assert.Equal(t, "var-1-item", adj[0].InventoryItemID)
	assert.Equal(t, "gid://shopify/Location/2", adj[0].LocationID, "se prefiere la ubicación configurada")
	assert.Empty(t, f.catalog.Created, "la variante existente se reutiliza")

	inv, err := f.db.Inventories().GetByStore(context.Background(), storeID)
	require.NoError(t, err)
	require.NotNil(t, inv.Entries[0].Shopify)
	assert.Equal(t, entity.ShopifyLink{ProductID: "prod-1", VariantID: "var-1"}, *inv.Entries[0].Shopify)
}

func TestSync_CreaVarianteYFijaPrecio(t *testing.T) {
	f := newFixture(t)
	cmp := decimal.NewFromInt(30)
	f.db.AddBundle(entity.Bundle{ID: "bundle-1", StoreID: storeID, BoxID: boxB, ShopifyProductID: "prod-1",
		Price: decimal.NewFromInt(25), CompareAtPrice: &cmp, Inventory: 100, TrackInventory: true, SKU: "GIFT"})
	f.catalog.AddVariant("prod-1", catalogsync.RemoteVariant{ID: "default"})

	report := f.syncer.SyncLedgerToCatalog(context.Background(), storeID, []entity.StoreBoxInventoryEntry{
		{BoxID: boxB, Quantity: 8, Remaining: 8},
	})

	require.Equal(t, 1, report.Count(catalogsync.StatusSynced))
	assert.Equal(t, []string{"prod-1"}, f.catalog.Created)

	require.Len(t, f.catalog.Updates, 1)
	upd := f.catalog.Updates[0]
	assert.True(t, upd.Price.Equal(decimal.RequireFromString("32.50")))
	require.NotNil(t, upd.CompareAtPrice)
	assert.True(t, upd.CompareAtPrice.Equal(decimal.RequireFromString("37.50")))
	assert.Equal(t, "DENY", upd.InventoryPolicy)
	assert.Equal(t, "GIFT_P", upd.SKU)

	variants := f.catalog.Variants("prod-1")
	require.Len(t, variants, 2)
	assert.True(t, variants[1].HasOption("Packaging", "With Packaging"))
	assert.Equal(t, 8, variants[1].InventoryQuantity)
}

func TestSync_FalloDeUnBundleNoAfectaALosDemas(t *testing.T) {
	f := newFixture(t)
	f.db.AddBundle(entity.Bundle{ID: "bundle-x", StoreID: storeID, BoxID: boxA, ShopifyProductID: "prod-x", Inventory: 10, SKU: "X"})
	f.db.AddBundle(entity.Bundle{ID: "bundle-y", StoreID: storeID, BoxID: boxA, ShopifyProductID: "prod-y", Inventory: 10, SKU: "Y"})
	f.db.AddBundle(entity.Bundle{ID: "bundle-z", StoreID: storeID, BoxID: boxB, ShopifyProductID: "prod-z", Inventory: 10, SKU: "Z"})
	f.catalog.AddVariant("prod-x", packagingVariant("var-x", 0))
	f.catalog.AddVariant("prod-y", packagingVariant("var-y", 0))
	f.catalog.AddVariant("prod-z", packagingVariant("var-z", 0))
	f.catalog.FailProduct("prod-x", errors.New("shopify caído"))

	report := f.syncer.SyncLedgerToCatalog(context.Background(), storeID, []entity.StoreBoxInventoryEntry{
		{BoxID: boxA, Quantity: 4, Remaining: 4},
		{BoxID: boxB, Quantity: 6, Remaining: 6},
	})

	require.NoError(t, report.Err)
	x, _ := report.Find("bundle-x")
	assert.Equal(t, catalogsync.StatusFailed, x.Status)
	assert.Equal(t, catalogsync.StepFetchVariants, x.Step)
	assert.EqualError(t, x.Err, "shopify caído")

	y, _ := report.Find("bundle-y")
	assert.Equal(t, catalogsync.StatusSynced, y.Status)
	assert.Equal(t, 4, y.Delta)

	z, _ := report.Find("bundle-z")
	assert.Equal(t, catalogsync.StatusSynced, z.Status)
	assert.Equal(t, 6, z.Delta)

	assert.Equal(t, 1, report.Count(catalogsync.StatusFailed))
	assert.Equal(t, 2, report.Count(catalogsync.StatusSynced))
}

func TestSync_VinculoDelLedgerQuedaConElUltimoBundle(t *testing.T) {
	f := newFixture(t)
	f.db.AddBundle(entity.Bundle{ID: "bundle-1", StoreID: storeID, BoxID: boxA, ShopifyProductID: "prod-1", Inventory: 10, SKU: "B1"})
	f.db.AddBundle(entity.Bundle{ID: "bundle-2", StoreID: storeID, BoxID: boxA, ShopifyProductID: "prod-2", Inventory: 10, SKU: "B2"})
	f.catalog.AddVariant("prod-1", packagingVariant("var-1", 0))
	f.catalog.AddVariant("prod-2", packagingVariant("var-2", 0))
	f.db.Inventories().SetEntry(storeID, entity.StoreBoxInventoryEntry{BoxID: boxA, Quantity: 4, Remaining: 4})

	report, err := f.syncer.SyncStore(context.Background(), storeID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(catalogsync.StatusSynced))

	inv, err := f.db.Inventories().GetByStore(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, inv.Entries, 1, "un solo vínculo por caja")
	require.NotNil(t, inv.Entries[0].Shopify)
	assert.Equal(t, entity.ShopifyLink{ProductID: "prod-2", VariantID: "var-2"}, *inv.Entries[0].Shopify)
}

func TestSync_BundleSinPublicarSeOmite(t *testing.T) {
	f := newFixture(t)
	f.db.AddBundle(entity.Bundle{ID: "draft", StoreID: storeID, BoxID: boxA, Inventory: 5})

	report := f.syncer.SyncLedgerToCatalog(context.Background(), storeID, []entity.StoreBoxInventoryEntry{
		{BoxID: boxA, Quantity: 4, Remaining: 4},
	})

	res, ok := report.Find("draft")
	require.True(t, ok)
	assert.Equal(t, catalogsync.StatusSkipped, res.Status)
	assert.Empty(t, f.catalog.Updates)
	assert.Empty(t, f.catalog.AdjustmentsSnapshot())
}

func TestSync_SinBundlesNoHaceNada(t *testing.T) {
	f := newFixture(t)
	report := f.syncer.SyncLedgerToCatalog(context.Background(), storeID, []entity.StoreBoxInventoryEntry{
		{BoxID: boxA, Quantity: 4, Remaining: 4},
	})
	assert.NoError(t, report.Err)
	assert.Empty(t, report.Results)
}

func TestSync_DeltaCeroNoAjusta(t *testing.T) {
	f := newFixture(t)
	f.db.AddBundle(entity.Bundle{ID: "b", StoreID: storeID, BoxID: boxA, ShopifyProductID: "prod-1", Inventory: 10, SKU: "S"})
	f.catalog.AddVariant("prod-1", packagingVariant("var-1", 4))

	report := f.syncer.SyncLedgerToCatalog(context.Background(), storeID, []entity.StoreBoxInventoryEntry{
		{BoxID: boxA, Quantity: 4, Remaining: 4},
	})

	assert.Equal(t, 1, report.Count(catalogsync.StatusSynced))
	assert.Empty(t, f.catalog.AdjustmentsSnapshot())
	assert.Len(t, f.catalog.Updates, 1, "el precio se refresca igualmente")
}

func TestSync_SinTiendaMarketplace(t *testing.T) {
	f := newFixture(t)
	syncer := catalogsync.NewSyncer(f.catalog, f.db.Stores(), f.db.Bundles(), f.db.Boxes(), f.db.Inventories(),
		catalogsync.Options{MarketplaceStoreURL: "desconocida.myshopify.com"}, logger.Nop())

	report := syncer.SyncLedgerToCatalog(context.Background(), storeID, []entity.StoreBoxInventoryEntry{{BoxID: boxA}})
	assert.ErrorIs(t, report.Err, domain.ErrStoreNotFound)
	assert.Equal(t, "tienda marketplace \"desconocida.myshopify.com\": tienda no encontrada", report.DTO().Error)
}

func TestSyncStore_SinLedger(t *testing.T) {
	f := newFixture(t)
	_, err := f.syncer.SyncStore(context.Background(), storeID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
