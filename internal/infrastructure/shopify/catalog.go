package shopify

import (
	"context"
	"fmt"

	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
)

var _ catalogsync.CatalogClient = (*Catalog)(nil)

// Ajustes de inventario: corrección sobre la cantidad disponible.
const (
	adjustReason   = "correction"
	adjustQuantity = "available"
)

// Catalog adaptador de catalogsync.CatalogClient sobre la Admin GraphQL API.
type Catalog struct {
	client *Client
}

// NewCatalog construye el adaptador.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

type variantNode struct {
	ID                string `json:"id"`
	InventoryQuantity int    `json:"inventoryQuantity"`
	SelectedOptions   []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"selectedOptions"`
	InventoryItem struct {
		ID string `json:"id"`
	} `json:"inventoryItem"`
}

func (n variantNode) remote() catalogsync.RemoteVariant {
	v := catalogsync.RemoteVariant{
		ID:                n.ID,
		InventoryItemID:   n.InventoryItem.ID,
		InventoryQuantity: n.InventoryQuantity,
	}
	for _, o := range n.SelectedOptions {
		v.SelectedOptions = append(v.SelectedOptions, catalogsync.SelectedOption{Name: o.Name, Value: o.Value})
	}
	return v
}

// GetProductVariants lista las variantes del producto con opciones e inventario.
func (c *Catalog) GetProductVariants(ctx context.Context, shop catalogsync.Shop, productID string) ([]catalogsync.RemoteVariant, error) {
	type data struct {
		Product *struct {
			Variants struct {
				Nodes []variantNode `json:"nodes"`
			} `json:"variants"`
		} `json:"product"`
	}
	out, err := postGraphQL[data](ctx, c.client, shop.Domain, shop.AccessToken, "ProductVariants", productVariantsQuery,
		map[string]any{"id": productID})
	if err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, fmt.Errorf("shopify ProductVariants: producto %s no existe", productID)
	}
	variants := make([]catalogsync.RemoteVariant, 0, len(out.Product.Variants.Nodes))
	for _, n := range out.Product.Variants.Nodes {
		variants = append(variants, n.remote())
	}
	return variants, nil
}

// GetLocations lista las ubicaciones de inventario de la tienda.
func (c *Catalog) GetLocations(ctx context.Context, shop catalogsync.Shop) ([]catalogsync.Location, error) {
	type data struct {
		Locations struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"locations"`
	}
	out, err := postGraphQL[data](ctx, c.client, shop.Domain, shop.AccessToken, "Locations", locationsQuery, map[string]any{})
	if err != nil {
		return nil, err
	}
	locations := make([]catalogsync.Location, 0, len(out.Locations.Nodes))
	for _, n := range out.Locations.Nodes {
		locations = append(locations, catalogsync.Location{ID: n.ID, Name: n.Name})
	}
	return locations, nil
}

// CreateVariant crea la variante con el par opción/valor dado.
func (c *Catalog) CreateVariant(ctx context.Context, shop catalogsync.Shop, productID string, option catalogsync.SelectedOption) (*catalogsync.RemoteVariant, error) {
	type data struct {
		ProductVariantsBulkCreate struct {
			ProductVariants []variantNode `json:"productVariants"`
			UserErrors      []UserError   `json:"userErrors"`
		} `json:"productVariantsBulkCreate"`
	}
	vars := map[string]any{
		"productId": productID,
		"variants": []map[string]any{{
			"optionValues": []map[string]string{{"optionName": option.Name, "name": option.Value}},
		}},
	}
	out, err := postGraphQL[data](ctx, c.client, shop.Domain, shop.AccessToken, "ProductVariantsBulkCreate",
		productVariantsBulkCreateMutation, vars)
	if err != nil {
		return nil, err
	}
	res := out.ProductVariantsBulkCreate
	if err := userErrorsErr("ProductVariantsBulkCreate", res.UserErrors); err != nil {
		return nil, err
	}
	if len(res.ProductVariants) == 0 {
		return nil, fmt.Errorf("shopify ProductVariantsBulkCreate: respuesta sin variantes")
	}
	v := res.ProductVariants[0].remote()
	return &v, nil
}

// UpdateVariant fija precio, política de inventario y sku de la variante.
func (c *Catalog) UpdateVariant(ctx context.Context, shop catalogsync.Shop, productID string, in catalogsync.VariantUpdate) error {
	type data struct {
		ProductVariantsBulkUpdate struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"productVariantsBulkUpdate"`
	}
	variant := map[string]any{
		"id":              in.VariantID,
		"price":           in.Price.StringFixed(2),
		"inventoryPolicy": in.InventoryPolicy,
		"inventoryItem":   map[string]any{"sku": in.SKU, "tracked": in.Tracked},
	}
	if in.CompareAtPrice != nil {
		variant["compareAtPrice"] = in.CompareAtPrice.StringFixed(2)
	}
	out, err := postGraphQL[data](ctx, c.client, shop.Domain, shop.AccessToken, "ProductVariantsBulkUpdate",
		productVariantsBulkUpdateMutation, map[string]any{"productId": productID, "variants": []any{variant}})
	if err != nil {
		return err
	}
	return userErrorsErr("ProductVariantsBulkUpdate", out.ProductVariantsBulkUpdate.UserErrors)
}

// AdjustInventory aplica un delta a la cantidad disponible en la ubicación.
func (c *Catalog) AdjustInventory(ctx context.Context, shop catalogsync.Shop, in catalogsync.InventoryAdjustment) error {
	type data struct {
		InventoryAdjustQuantities struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"inventoryAdjustQuantities"`
	}
	input := map[string]any{
		"reason": adjustReason,
		"name":   adjustQuantity,
		"changes": []map[string]any{{
			"delta":           in.Delta,
			"inventoryItemId": in.InventoryItemID,
			"locationId":      in.LocationID,
		}},
	}
	out, err := postGraphQL[data](ctx, c.client, shop.Domain, shop.AccessToken, "InventoryAdjustQuantities",
		inventoryAdjustQuantitiesMutation, map[string]any{"input": input})
	if err != nil {
		return err
	}
	return userErrorsErr("InventoryAdjustQuantities", out.InventoryAdjustQuantities.UserErrors)
}
