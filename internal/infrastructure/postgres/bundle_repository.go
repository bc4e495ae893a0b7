package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

var _ repository.BundleRepository = (*BundleRepo)(nil)

// BundleRepo lectura de bundles (los escribe el módulo de bundles).
type BundleRepo struct {
	q Querier
}

// NewBundleRepository construye el adaptador de bundles.
func NewBundleRepository(q Querier) *BundleRepo {
	return &BundleRepo{q: q}
}

// ListByStoreAndBox lista los bundles de la tienda que usan la caja.
func (r *BundleRepo) ListByStoreAndBox(ctx context.Context, storeID, boxID string) ([]*entity.Bundle, error) {
	query := `
		SELECT id, store_id, box_id, name, COALESCE(shopify_product_id, ''), price, compare_at_price,
		       inventory, track_inventory, sku
		FROM bundles WHERE store_id = $1 AND box_id = $2
		ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, storeID, boxID)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Bundle
	for rows.Next() {
		var b entity.Bundle
		if err := rows.Scan(&b.ID, &b.StoreID, &b.BoxID, &b.Name, &b.ShopifyProductID, &b.Price, &b.CompareAtPrice,
			&b.Inventory, &b.TrackInventory, &b.SKU); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
