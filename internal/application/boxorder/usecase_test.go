package boxorder_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jhoicas/marketbox-api/internal/application/boxorder"
	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/packaging"
	"github.com/jhoicas/marketbox-api/internal/infrastructure/memory"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	marketURL   = "market.myshopify.com"
	merchantURL = "merchant.myshopify.com"
	merchantID  = "store-merchant"
)

var (
	boxA = uuid.NewString()
	boxB = uuid.NewString()
)

type syncerFunc func(ctx context.Context, storeID string) (*catalogsync.Report, error)

func (f syncerFunc) SyncStore(ctx context.Context, storeID string) (*catalogsync.Report, error) {
	return f(ctx, storeID)
}

type fixture struct {
	db      *memory.Store
	catalog *memory.Catalog
	uc      *boxorder.UseCase
	synced  []string
}

func newFixture(t *testing.T, syncer boxorder.CatalogSyncer) *fixture {
	t.Helper()
	f := &fixture{db: memory.NewStore()}
	f.db.AddStore(entity.Store{ID: "store-market", StoreURL: marketURL, AccessToken: "tok", IsInternal: true})
	f.db.AddStore(entity.Store{ID: merchantID, StoreURL: merchantURL})
	f.db.AddBox(entity.Box{ID: boxA, Name: "Caja A", Price: decimal.NewFromInt(5), Size: "S"})
	f.db.AddBox(entity.Box{ID: boxB, Name: "Caja B", Price: decimal.NewFromInt(8), Size: "M"})

	f.catalog = memory.NewCatalog(catalogsync.Location{ID: "loc-1", Name: "Shop location"})
	if syncer == nil {
		inner := catalogsync.NewSyncer(f.catalog, f.db.Stores(), f.db.Bundles(), f.db.Boxes(), f.db.Inventories(), catalogsync.Options{
			MarketplaceStoreURL:  marketURL,
			PackagingOptionName:  "Packaging",
			PackagingOptionValue: "With Packaging",
			LocationName:         "Shop location",
			Concurrency:          2,
		}, logger.Nop())
		syncer = syncerFunc(func(ctx context.Context, storeID string) (*catalogsync.Report, error) {
			f.synced = append(f.synced, storeID)
			return inner.SyncStore(ctx, storeID)
		})
	}
	f.uc = boxorder.NewUseCase(memory.NewTxRunner(f.db), f.db.Stores(), f.db.Boxes(), f.db.Orders(), syncer,
		boxorder.SyncMode{Async: false}, logger.Nop())
	return f
}

func qty(v float64) *float64 { return &v }

func (f *fixture) createOrder(t *testing.T, items ...dto.OrderItemRequest) *dto.StoreBoxOrderResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), merchantURL, dto.CreateStoreBoxOrderRequest{OrderItems: items})
	require.NoError(t, err)
	return out
}

func (f *fixture) ledger(t *testing.T) map[string]entity.StoreBoxInventoryEntry {
	t.Helper()
	inv, err := f.db.Inventories().GetByStore(context.Background(), merchantID)
	require.NoError(t, err)
	if inv == nil {
		return nil
	}
	out := map[string]entity.StoreBoxInventoryEntry{}
	for _, e := range inv.Entries {
		out[e.BoxID] = e
	}
	return out
}

func TestCreate_AgrupaLineasPorCaja(t *testing.T) {
	f := newFixture(t, nil)
	out := f.createOrder(t,
		dto.OrderItemRequest{Box: boxA, Quantity: qty(2)},
		dto.OrderItemRequest{Box: boxB, Quantity: qty(1)},
		dto.OrderItemRequest{Box: boxA, Quantity: qty(3)},
	)

	assert.Equal(t, entity.BoxOrderStatusPending, out.Status)
	assert.Equal(t, merchantID, out.Store)
	assert.Equal(t, 6, out.TotalQuantity)
	require.Len(t, out.OrderItems, 2)
	assert.Equal(t, boxA, out.OrderItems[0].Box)
	assert.Equal(t, 5, out.OrderItems[0].Quantity)
	require.NotNil(t, out.OrderItems[0].Details)
	assert.Equal(t, "Caja A", out.OrderItems[0].Details.Name)
	assert.Equal(t, boxB, out.OrderItems[1].Box)
	assert.Equal(t, 1, out.OrderItems[1].Quantity)

	stored, err := f.db.Orders().GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 2)
}

func TestCreate_CantidadCeroNoPersisteNada(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), merchantURL, dto.CreateStoreBoxOrderRequest{OrderItems: []dto.OrderItemRequest{
		{Box: boxA, Quantity: qty(2)},
		{Box: boxB, Quantity: qty(0)},
	}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "orderItems[1].quantity", verr.Violations[0].Field)

	list, err := f.db.Orders().ListByStore(context.Background(), merchantID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_CajaInexistente(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), merchantURL, dto.CreateStoreBoxOrderRequest{OrderItems: []dto.OrderItemRequest{
		{Box: boxA, Quantity: qty(1)},
		{Box: uuid.NewString(), Quantity: qty(1)},
	}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "orderItems[1].box", verr.Violations[0].Field)
}

func TestCreate_ReportaCajaInexistenteJuntoAOtrasViolaciones(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), merchantURL, dto.CreateStoreBoxOrderRequest{OrderItems: []dto.OrderItemRequest{
		{Box: uuid.NewString(), Quantity: qty(1)},
		{Box: boxA, Quantity: qty(0)},
	}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"orderItems[0].box", "orderItems[1].quantity"}, fields)
}

func TestCreate_CajaAgrupadaExcedeMaximo(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), merchantURL, dto.CreateStoreBoxOrderRequest{OrderItems: []dto.OrderItemRequest{
		{Box: boxA, Quantity: qty(packaging.MaxQuantity)},
		{Box: boxA, Quantity: qty(packaging.MaxQuantity)},
	}})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "orderItems[0].quantity", verr.Violations[0].Field)

	list, err := f.db.Orders().ListByStore(context.Background(), merchantID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "no se persiste una orden con cantidades fuera de rango")
}

func TestCreate_TiendaDesconocida(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), "nadie.myshopify.com", dto.CreateStoreBoxOrderRequest{OrderItems: []dto.OrderItemRequest{
		{Box: boxA, Quantity: qty(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}

func TestList_PaginaDeDiez(t *testing.T) {
	f := newFixture(t, nil)
	for range 12 {
		f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(1)})
	}

	first, err := f.uc.List(context.Background(), merchantURL, 1)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, dto.PageResponse{Page: 1, Limit: 10}, first.Page)

	second, err := f.uc.List(context.Background(), merchantURL, 2)
	require.NoError(t, err)
	assert.Len(t, second.Items, 2)

	zero, err := f.uc.List(context.Background(), merchantURL, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, zero.Page.Page)
}

func TestUpdateStatus_PrimeraEntregaCreaLedger(t *testing.T) {
	f := newFixture(t, nil)
	order := f.createOrder(t,
		dto.OrderItemRequest{Box: boxA, Quantity: qty(5)},
		dto.OrderItemRequest{Box: boxB, Quantity: qty(1)},
	)
	require.Nil(t, f.ledger(t))

	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusDelivered))

	ledger := f.ledger(t)
	require.Len(t, ledger, 2)
	assert.Equal(t, 5, ledger[boxA].Quantity)
	assert.Equal(t, 5, ledger[boxA].Remaining)
	assert.Equal(t, 0, ledger[boxA].Used)
	assert.Equal(t, 1, ledger[boxB].Remaining)
	assert.Equal(t, []string{merchantID}, f.synced)

	stored, err := f.db.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BoxOrderStatusDelivered, stored.Status)
}

func TestUpdateStatus_SegundaEntregaSumaAlLedger(t *testing.T) {
	f := newFixture(t, nil)
	first := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})
	second := f.createOrder(t,
		dto.OrderItemRequest{Box: boxA, Quantity: qty(3)},
		dto.OrderItemRequest{Box: boxB, Quantity: qty(2)},
	)

	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, first.ID, entity.BoxOrderStatusDelivered))
	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, second.ID, entity.BoxOrderStatusDelivered))

	ledger := f.ledger(t)
	require.Len(t, ledger, 2, "una entrada por caja")
	assert.Equal(t, 8, ledger[boxA].Quantity)
	assert.Equal(t, 8, ledger[boxA].Remaining)
	assert.Equal(t, 2, ledger[boxB].Remaining)
}

func TestUpdateStatus_CancelarNoTocaLedger(t *testing.T) {
	f := newFixture(t, nil)
	order := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})

	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusCancelled))

	assert.Nil(t, f.ledger(t))
	assert.Empty(t, f.synced)
	stored, err := f.db.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BoxOrderStatusCancelled, stored.Status)
}

func TestUpdateStatus_TiendaNoInterna(t *testing.T) {
	f := newFixture(t, nil)
	order := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})

	err := f.uc.UpdateStatus(context.Background(), merchantURL, order.ID, entity.BoxOrderStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, f.ledger(t))
}

func TestUpdateStatus_EstadoInvalido(t *testing.T) {
	f := newFixture(t, nil)
	order := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})

	err := f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusPending)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Violations[0].Field)
}

func TestUpdateStatus_OrdenInexistente(t *testing.T) {
	f := newFixture(t, nil)
	for _, id := range []string{uuid.NewString(), "no-es-uuid"} {
		err := f.uc.UpdateStatus(context.Background(), marketURL, id, entity.BoxOrderStatusDelivered)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound, id)
	}
}

func TestUpdateStatus_OrdenYaProcesada(t *testing.T) {
	f := newFixture(t, nil)
	order := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})
	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusDelivered))

	err := f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 5, f.ledger(t)[boxA].Remaining, "no se acredita dos veces")
}

func TestUpdateStatus_EntregasConcurrentesNoPierdenStock(t *testing.T) {
	var mu sync.Mutex
	synced := 0
	f := newFixture(t, syncerFunc(func(ctx context.Context, storeID string) (*catalogsync.Report, error) {
		mu.Lock()
		defer mu.Unlock()
		synced++
		return &catalogsync.Report{StoreID: storeID}, nil
	}))

	const n = 20
	ids := make([]string, 0, n)
	wantA := 0
	for i := 1; i <= n; i++ {
		order := f.createOrder(t,
			dto.OrderItemRequest{Box: boxA, Quantity: qty(float64(i))},
			dto.OrderItemRequest{Box: boxB, Quantity: qty(1)},
		)
		ids = append(ids, order.ID)
		wantA += i
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			errs <- f.uc.UpdateStatus(context.Background(), marketURL, id, entity.BoxOrderStatusDelivered)
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	ledger := f.ledger(t)
	require.Len(t, ledger, 2, "una entrada por caja aunque las entregas se crucen")
	assert.Equal(t, wantA, ledger[boxA].Quantity)
	assert.Equal(t, wantA, ledger[boxA].Remaining)
	assert.Equal(t, n, ledger[boxB].Quantity)
	assert.Equal(t, n, ledger[boxB].Remaining)
	assert.Equal(t, n, synced)

	for _, id := range ids {
		stored, err := f.db.Orders().GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, entity.BoxOrderStatusDelivered, stored.Status)
	}
}

func TestUpdateStatus_FalloDeSyncNoRevierteLedger(t *testing.T) {
	f := newFixture(t, syncerFunc(func(ctx context.Context, storeID string) (*catalogsync.Report, error) {
		return nil, errors.New("shopify caído")
	}))
	order := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})

	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusDelivered))
	assert.Equal(t, 5, f.ledger(t)[boxA].Remaining)
}

func TestUpdateStatus_SyncAsincronoSeDrenaConWait(t *testing.T) {
	db := memory.NewStore()
	db.AddStore(entity.Store{ID: "store-market", StoreURL: marketURL, IsInternal: true})
	db.AddStore(entity.Store{ID: merchantID, StoreURL: merchantURL})
	db.AddBox(entity.Box{ID: boxA, Name: "Caja A", Price: decimal.NewFromInt(5)})

	done := make(chan string, 1)
	syncer := syncerFunc(func(ctx context.Context, storeID string) (*catalogsync.Report, error) {
		done <- storeID
		return &catalogsync.Report{StoreID: storeID}, nil
	})
	uc := boxorder.NewUseCase(memory.NewTxRunner(db), db.Stores(), db.Boxes(), db.Orders(), syncer,
		boxorder.SyncMode{Async: true}, logger.Nop())

	order, err := uc.Create(context.Background(), merchantURL, dto.CreateStoreBoxOrderRequest{OrderItems: []dto.OrderItemRequest{
		{Box: boxA, Quantity: qty(2)},
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, uc.UpdateStatus(ctx, marketURL, order.ID, entity.BoxOrderStatusDelivered))
	cancel()
	uc.Wait()

	assert.Equal(t, merchantID, <-done)
}

func TestSyncStore_SoloInternas(t *testing.T) {
	f := newFixture(t, nil)
	order := f.createOrder(t, dto.OrderItemRequest{Box: boxA, Quantity: qty(5)})
	require.NoError(t, f.uc.UpdateStatus(context.Background(), marketURL, order.ID, entity.BoxOrderStatusDelivered))

	_, err := f.uc.SyncStore(context.Background(), merchantURL, merchantID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	report, err := f.uc.SyncStore(context.Background(), marketURL, merchantID)
	require.NoError(t, err)
	assert.Equal(t, merchantID, report.StoreID)
	assert.Empty(t, report.Error)
}
