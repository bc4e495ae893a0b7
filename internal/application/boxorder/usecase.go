package boxorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/packaging"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// SyncMode define cómo se dispara la sincronización de catálogo tras una entrega.
type SyncMode struct {
	Async   bool          // en segundo plano, desacoplada del request
	Timeout time.Duration // límite de la corrida en modo async
}

// UseCase órdenes de cajas de empaque: creación, listado y aprobación (entrega/cancelación).
type UseCase struct {
	txRunner TxRunner
	stores   repository.StoreRepository
	boxes    repository.BoxRepository
	orders   repository.StoreBoxOrderRepository
	syncer   CatalogSyncer
	syncMode SyncMode
	log      *logger.Logger
	inflight sync.WaitGroup
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	stores repository.StoreRepository,
	boxes repository.BoxRepository,
	orders repository.StoreBoxOrderRepository,
	syncer CatalogSyncer,
	syncMode SyncMode,
	log *logger.Logger,
) *UseCase {
	if syncMode.Timeout <= 0 {
		syncMode.Timeout = 2 * time.Minute
	}
	return &UseCase{
		txRunner: txRunner,
		stores:   stores,
		boxes:    boxes,
		orders:   orders,
		syncer:   syncer,
		syncMode: syncMode,
		log:      log.WithComponent("boxorder"),
		now:      time.Now,
	}
}

// Create valida, agrupa por caja y persiste una orden en estado pending.
// Ante cualquier línea inválida no se persiste nada.
func (uc *UseCase) Create(ctx context.Context, storeURL string, in dto.CreateStoreBoxOrderRequest) (*dto.StoreBoxOrderResponse, error) {
	store, err := uc.storeByURL(ctx, storeURL)
	if err != nil {
		return nil, err
	}

	raw := make([]packaging.RawItem, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		raw = append(raw, packaging.RawItem{BoxID: it.Box, Quantity: it.Quantity})
	}
	// Las violaciones de formato y las de cajas inexistentes se reportan juntas.
	verr := &domain.ValidationError{}
	items, err := packaging.ValidateItems(raw)
	if err != nil && !errors.As(err, &verr) {
		return nil, err
	}
	var boxes map[string]*entity.Box
	if ids := packaging.BoxIDs(raw); len(ids) > 0 {
		boxes, err = uc.boxes.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}
	for i, r := range raw {
		if !packaging.IsBoxID(r.BoxID) {
			continue
		}
		if _, ok := boxes[r.BoxID]; !ok {
			verr.Add(fmt.Sprintf("orderItems[%d].box", i), fmt.Sprintf("la caja %s no existe", r.BoxID))
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	merged, total := packaging.MergeItems(items)
	if err := packaging.ValidateMerged(raw, merged, total); err != nil {
		return nil, err
	}
	for i := range merged {
		merged[i].Box = boxes[merged[i].BoxID]
	}

	now := uc.now()
	order := &entity.StoreBoxOrder{
		ID:            uuid.New().String(),
		StoreID:       store.ID,
		Status:        entity.BoxOrderStatusPending,
		Items:         merged,
		TotalQuantity: total,
		OrderedAt:     now,
		UpdatedAt:     now,
	}
	err = uc.txRunner.Run(ctx, func(orders repository.StoreBoxOrderRepository, _ repository.StoreBoxInventoryRepository) error {
		return orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("store_id", store.ID).Str("order_id", order.ID).Int("total_quantity", total).Msg("orden de cajas creada")
	return toOrderResponse(order), nil
}

// List devuelve las órdenes de la tienda, más recientes primero, en páginas de 10.
func (uc *UseCase) List(ctx context.Context, storeURL string, page int) (*dto.StoreBoxOrderListResponse, error) {
	store, err := uc.storeByURL(ctx, storeURL)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	list, err := uc.orders.ListByStore(ctx, store.ID, dto.BoxOrderPageSize, (page-1)*dto.BoxOrderPageSize)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StoreBoxOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOrderResponse(o))
	}
	return &dto.StoreBoxOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Page: page, Limit: dto.BoxOrderPageSize},
	}, nil
}

// UpdateStatus aprueba (delivered) o cancela una orden pendiente. Solo tiendas internas.
//
// En delivered, el cambio de estado y el ledger de la tienda dueña de la orden se aplican en
// una transacción (incremento atómico por caja). La sincronización de catálogo corre después
// del commit y sus fallos no revierten nada: se registran en el log.
func (uc *UseCase) UpdateStatus(ctx context.Context, callerStoreURL, orderID, status string) error {
	caller, err := uc.storeByURL(ctx, callerStoreURL)
	if err != nil {
		return err
	}
	if !caller.IsInternal {
		return domain.ErrUnauthorized
	}
	if status != entity.BoxOrderStatusDelivered && status != entity.BoxOrderStatusCancelled {
		verr := &domain.ValidationError{}
		verr.Add("status", "el estado debe ser 'delivered' o 'cancelled'")
		return verr
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return domain.ErrOrderNotFound
	}

	var ownerStoreID string
	err = uc.txRunner.Run(ctx, func(orders repository.StoreBoxOrderRepository, inventory repository.StoreBoxInventoryRepository) error {
		order, err := orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		if !order.IsPending() {
			return fmt.Errorf("orden en estado %s: %w", order.Status, domain.ErrConflict)
		}
		if err := orders.UpdateStatus(ctx, order.ID, status); err != nil {
			return err
		}
		ownerStoreID = order.StoreID
		if status != entity.BoxOrderStatusDelivered {
			return nil
		}

		inventoryID, err := inventory.EnsureForStore(ctx, order.StoreID)
		if err != nil {
			return err
		}
		for _, it := range order.Items {
			if err := inventory.AddStock(ctx, inventoryID, it.BoxID, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("order_id", orderID).
		Str("store_id", ownerStoreID).
		Str("status", status).
		Str("approved_by", caller.StoreURL).
		Msg("estado de la orden de cajas actualizado")

	if status == entity.BoxOrderStatusDelivered {
		uc.dispatchSync(ctx, ownerStoreID)
	}
	return nil
}

// SyncStore re-ejecuta la sincronización de catálogo de una tienda (reconciliación manual).
func (uc *UseCase) SyncStore(ctx context.Context, callerStoreURL, storeID string) (*dto.SyncReportResponse, error) {
	caller, err := uc.storeByURL(ctx, callerStoreURL)
	if err != nil {
		return nil, err
	}
	if !caller.IsInternal {
		return nil, domain.ErrUnauthorized
	}
	report, err := uc.syncer.SyncStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := report.DTO()
	return &out, nil
}

// Wait bloquea hasta que terminen las sincronizaciones en segundo plano.
func (uc *UseCase) Wait() {
	uc.inflight.Wait()
}

func (uc *UseCase) dispatchSync(ctx context.Context, storeID string) {
	if !uc.syncMode.Async {
		uc.runSync(ctx, storeID)
		return
	}
	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.syncMode.Timeout)
		defer cancel()
		uc.runSync(sctx, storeID)
	}()
}

func (uc *UseCase) runSync(ctx context.Context, storeID string) *catalogsync.Report {
	defer func() {
		if r := recover(); r != nil {
			uc.log.Error().Str("store_id", storeID).Interface("panic", r).Msg("sincronización de catálogo abortada")
		}
	}()
	report, err := uc.syncer.SyncStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("store_id", storeID).Msg("la tienda no tiene ledger de cajas")
		} else {
			uc.log.Error().Err(err).Str("store_id", storeID).Msg("sincronización de catálogo fallida")
		}
		return nil
	}
	if failed := report.Count(catalogsync.StatusFailed); failed > 0 || report.Err != nil {
		uc.log.Warn().Str("store_id", storeID).Int("failed", failed).Msg("catálogo desincronizado con el ledger")
	}
	return report
}

func (uc *UseCase) storeByURL(ctx context.Context, storeURL string) (*entity.Store, error) {
	if storeURL == "" {
		return nil, domain.ErrStoreNotFound
	}
	store, err := uc.stores.GetByURL(ctx, storeURL)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

func toOrderResponse(o *entity.StoreBoxOrder) *dto.StoreBoxOrderResponse {
	items := make([]dto.StoreBoxOrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		item := dto.StoreBoxOrderItemResponse{Box: it.BoxID, Quantity: it.Quantity}
		if it.Box != nil {
			item.Details = &dto.BoxResponse{ID: it.Box.ID, Name: it.Box.Name, Price: it.Box.Price, Size: it.Box.Size}
		}
		items = append(items, item)
	}
	return &dto.StoreBoxOrderResponse{
		ID:            o.ID,
		Store:         o.StoreID,
		Status:        o.Status,
		OrderItems:    items,
		TotalQuantity: o.TotalQuantity,
		OrderedAt:     o.OrderedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
