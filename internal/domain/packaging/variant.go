package packaging

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// Políticas de inventario de Shopify.
const (
	InventoryPolicyDeny     = "DENY"
	InventoryPolicyContinue = "CONTINUE"
)

// VariantSpec valores de la variante con empaque de un bundle.
type VariantSpec struct {
	Price           decimal.Decimal
	CompareAtPrice  *decimal.Decimal
	InventoryPolicy string
	SKU             string
}

// BuildVariantSpec precio = bundle + caja; compareAt solo si el bundle lo define.
func BuildVariantSpec(b *entity.Bundle, box *entity.Box) VariantSpec {
	spec := VariantSpec{
		Price:           b.Price.Add(box.Price),
		InventoryPolicy: InventoryPolicyContinue,
		SKU:             b.SKU + "_P",
	}
	if b.CompareAtPrice != nil {
		c := b.CompareAtPrice.Add(box.Price)
		spec.CompareAtPrice = &c
	}
	if b.TrackInventory {
		spec.InventoryPolicy = InventoryPolicyDeny
	}
	return spec
}

// InventoryDelta ajuste a enviar al catálogo: el objetivo es min(remaining, ceiling),
// el tope configurado en el bundle aunque haya más cajas físicas.
func InventoryDelta(remaining, ceiling, current int) int {
	return min(remaining, ceiling) - current
}
