package entity

import "github.com/shopspring/decimal"

// Bundle producto compuesto de un comerciante; aquí solo se leen los campos que
// afectan la variante con empaque en el catálogo remoto.
type Bundle struct {
	ID               string
	StoreID          string
	BoxID            string
	Name             string
	ShopifyProductID string // vacío mientras el bundle no esté publicado
	Price            decimal.Decimal
	CompareAtPrice   *decimal.Decimal
	Inventory        int // máximo vendible configurado por el comerciante
	TrackInventory   bool
	SKU              string
}
