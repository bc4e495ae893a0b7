package repository

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// StoreBoxInventoryRepository define el puerto del ledger de cajas (uno por tienda).
type StoreBoxInventoryRepository interface {
	// GetByStore devuelve nil, nil si la tienda aún no tiene ledger. Entradas con caja poblada.
	GetByStore(ctx context.Context, storeID string) (*entity.StoreBoxInventory, error)
	// EnsureForStore crea el ledger si no existe (upsert por store_id) y devuelve su ID.
	EnsureForStore(ctx context.Context, storeID string) (string, error)
	// AddStock incrementa quantity y remaining de la entrada (inventoryID, boxID), o la inserta
	// con used = 0. Operación atómica en la base de datos.
	AddStock(ctx context.Context, inventoryID, boxID string, quantity int) error
	// SetShopifyLink guarda el vínculo (producto, variante) de la entrada. Hay un solo vínculo
	// por caja: si varios bundles usan la caja queda el del último sincronizado.
	SetShopifyLink(ctx context.Context, storeID, boxID string, link entity.ShopifyLink) error
}
