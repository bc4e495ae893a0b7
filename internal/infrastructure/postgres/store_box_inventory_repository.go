package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

var _ repository.StoreBoxInventoryRepository = (*StoreBoxInventoryRepo)(nil)

// StoreBoxInventoryRepo ledger de cajas sobre PostgreSQL (usable con pool o tx).
// store_box_inventories tiene UNIQUE(store_id) y store_box_inventory_entries UNIQUE(inventory_id, box_id):
// los incrementos se resuelven con upserts y no con lectura-modificación-escritura.
type StoreBoxInventoryRepo struct {
	q Querier
}

// NewStoreBoxInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreBoxInventoryRepository(q Querier) *StoreBoxInventoryRepo {
	return &StoreBoxInventoryRepo{q: q}
}

// GetByStore obtiene el ledger de la tienda con sus entradas y cajas.
func (r *StoreBoxInventoryRepo) GetByStore(ctx context.Context, storeID string) (*entity.StoreBoxInventory, error) {
	var inv entity.StoreBoxInventory
	err := r.q.QueryRow(ctx, `
		SELECT id, store_id, created_at, updated_at
		FROM store_box_inventories WHERE store_id = $1`, storeID,
	).Scan(&inv.ID, &inv.StoreID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store box inventory: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT e.box_id, e.quantity, e.remaining, e.used,
		       COALESCE(e.shopify_product_id, ''), COALESCE(e.shopify_variant_id, ''),
		       b.id, b.name, b.price, b.size, b.created_at, b.updated_at
		FROM store_box_inventory_entries e
		LEFT JOIN boxes b ON b.id = e.box_id
		WHERE e.inventory_id = $1
		ORDER BY e.created_at, e.box_id`, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("list store box inventory entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e                    entity.StoreBoxInventoryEntry
			productID, variantID string
			box                  nullableBox
		)
		dest := append([]any{&e.BoxID, &e.Quantity, &e.Remaining, &e.Used, &productID, &variantID}, box.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan store box inventory entry: %w", err)
		}
		if productID != "" || variantID != "" {
			e.Shopify = &entity.ShopifyLink{ProductID: productID, VariantID: variantID}
		}
		e.Box = box.entity()
		inv.Entries = append(inv.Entries, e)
	}
	return &inv, rows.Err()
}

// EnsureForStore crea el ledger si no existe y devuelve su ID (upsert por store_id).
func (r *StoreBoxInventoryRepo) EnsureForStore(ctx context.Context, storeID string) (string, error) {
	now := time.Now()
	var id string
	err := r.q.QueryRow(ctx, `
		INSERT INTO store_box_inventories (id, store_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (store_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		RETURNING id`,
		uuid.New().String(), storeID, now,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ensure store box inventory: %w", err)
	}
	return id, nil
}

// AddStock suma quantity a la entrada de la caja; si no existe la crea con used = 0.
func (r *StoreBoxInventoryRepo) AddStock(ctx context.Context, inventoryID, boxID string, quantity int) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO store_box_inventory_entries (inventory_id, box_id, quantity, remaining, used, created_at, updated_at)
		VALUES ($1, $2, $3, $3, 0, now(), now())
		ON CONFLICT (inventory_id, box_id)
		DO UPDATE SET quantity = store_box_inventory_entries.quantity + EXCLUDED.quantity,
		              remaining = store_box_inventory_entries.remaining + EXCLUDED.quantity,
		              updated_at = now()`,
		inventoryID, boxID, quantity,
	)
	if err != nil {
		return fmt.Errorf("add store box stock: %w", err)
	}
	return nil
}

// SetShopifyLink guarda la variante remota sincronizada para la caja.
func (r *StoreBoxInventoryRepo) SetShopifyLink(ctx context.Context, storeID, boxID string, link entity.ShopifyLink) error {
	_, err := r.q.Exec(ctx, `
		UPDATE store_box_inventory_entries e
		SET shopify_product_id = $3, shopify_variant_id = $4, updated_at = now()
		FROM store_box_inventories i
		WHERE e.inventory_id = i.id AND i.store_id = $1 AND e.box_id = $2`,
		storeID, boxID, link.ProductID, link.VariantID,
	)
	if err != nil {
		return fmt.Errorf("set shopify link: %w", err)
	}
	return nil
}
