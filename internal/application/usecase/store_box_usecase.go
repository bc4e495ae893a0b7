package usecase

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

// StoreBoxUseCase consulta del ledger de cajas de una tienda.
type StoreBoxUseCase struct {
	stores    repository.StoreRepository
	inventory repository.StoreBoxInventoryRepository
}

// NewStoreBoxUseCase construye el caso de uso.
func NewStoreBoxUseCase(stores repository.StoreRepository, inventory repository.StoreBoxInventoryRepository) *StoreBoxUseCase {
	return &StoreBoxUseCase{stores: stores, inventory: inventory}
}

// GetByStoreURL devuelve el ledger de la tienda con totales.
// Si la tienda existe pero aún no recibió cajas devuelve nil, nil.
func (uc *StoreBoxUseCase) GetByStoreURL(ctx context.Context, storeURL string) (*dto.StoreBoxInventoryResponse, error) {
	store, err := uc.stores.GetByURL(ctx, storeURL)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	inv, err := uc.inventory.GetByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, nil
	}
	return toStoreBoxInventoryResponse(inv), nil
}

func toStoreBoxInventoryResponse(inv *entity.StoreBoxInventory) *dto.StoreBoxInventoryResponse {
	entries := make([]dto.StoreBoxEntryResponse, 0, len(inv.Entries))
	for _, e := range inv.Entries {
		out := dto.StoreBoxEntryResponse{
			Box:       e.BoxID,
			Quantity:  e.Quantity,
			Remaining: e.Remaining,
			Used:      e.Used,
		}
		if e.Box != nil {
			details := toBoxResponse(e.Box)
			out.Details = &details
		}
		if e.Shopify != nil {
			out.Shopify = &dto.ShopifyLinkResponse{ProductID: e.Shopify.ProductID, VariantID: e.Shopify.VariantID}
		}
		entries = append(entries, out)
	}
	remaining, used := inv.Totals()
	return &dto.StoreBoxInventoryResponse{
		ID:             inv.ID,
		Store:          inv.StoreID,
		Inventory:      entries,
		TotalRemaining: remaining,
		TotalUsed:      used,
		UpdatedAt:      inv.UpdatedAt,
	}
}
