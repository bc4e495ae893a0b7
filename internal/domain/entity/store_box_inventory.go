package entity

import "time"

// ShopifyLink variante remota sincronizada para una entrada del inventario.
type ShopifyLink struct {
	ProductID string
	VariantID string
}

// StoreBoxInventoryEntry saldo de un tipo de caja. Quantity == Remaining + Used.
type StoreBoxInventoryEntry struct {
	BoxID     string
	Quantity  int // acumulado recibido
	Remaining int // disponible para vender
	Used      int // acumulado consumido
	Shopify   *ShopifyLink
	Box       *Box // poblado en lecturas
}

// StoreBoxInventory ledger de cajas de una tienda (uno por tienda).
type StoreBoxInventory struct {
	ID        string
	StoreID   string
	Entries   []StoreBoxInventoryEntry
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Totals devuelve la suma de cajas disponibles y usadas.
func (inv *StoreBoxInventory) Totals() (remaining, used int) {
	for _, e := range inv.Entries {
		remaining += e.Remaining
		used += e.Used
	}
	return remaining, used
}
