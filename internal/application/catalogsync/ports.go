package catalogsync

import (
	"context"

	"github.com/shopspring/decimal"
)

// Shop credenciales de la tienda cuyo catálogo se sincroniza.
type Shop struct {
	Domain      string
	AccessToken string
}

// SelectedOption par opción/valor de una variante.
type SelectedOption struct {
	Name  string
	Value string
}

// RemoteVariant variante del catálogo remoto con su inventario actual.
type RemoteVariant struct {
	ID                string
	InventoryItemID   string
	InventoryQuantity int
	SelectedOptions   []SelectedOption
}

// HasOption indica si la variante tiene seleccionado el par opción/valor.
func (v RemoteVariant) HasOption(name, value string) bool {
	for _, o := range v.SelectedOptions {
		if o.Name == name && o.Value == value {
			return true
		}
	}
	return false
}

// Location ubicación de inventario de la tienda.
type Location struct {
	ID   string
	Name string
}

// VariantUpdate campos que se fijan en la variante con empaque.
type VariantUpdate struct {
	VariantID       string
	Price           decimal.Decimal
	CompareAtPrice  *decimal.Decimal
	InventoryPolicy string
	SKU             string
	Tracked         bool
}

// InventoryAdjustment ajuste por delta (no absoluto) en una ubicación.
type InventoryAdjustment struct {
	InventoryItemID string
	LocationID      string
	Delta           int
}

// CatalogClient puerto de salida hacia el catálogo remoto (Shopify Admin GraphQL).
type CatalogClient interface {
	GetProductVariants(ctx context.Context, shop Shop, productID string) ([]RemoteVariant, error)
	GetLocations(ctx context.Context, shop Shop) ([]Location, error)
	CreateVariant(ctx context.Context, shop Shop, productID string, option SelectedOption) (*RemoteVariant, error)
	UpdateVariant(ctx context.Context, shop Shop, productID string, in VariantUpdate) error
	AdjustInventory(ctx context.Context, shop Shop, in InventoryAdjustment) error
}
