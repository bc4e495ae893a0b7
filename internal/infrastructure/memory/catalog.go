package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
)

var _ catalogsync.CatalogClient = (*Catalog)(nil)

// Catalog catálogo remoto en memoria: productos con variantes, ubicaciones y ajustes
// registrados. Permite inyectar fallos por producto.
type Catalog struct {
	mu          sync.Mutex
	variants    map[string][]catalogsync.RemoteVariant // por product id
	locations   []catalogsync.Location
	failures    map[string]error // por product id
	Updates     []catalogsync.VariantUpdate
	Adjustments []catalogsync.InventoryAdjustment
	Created     []string // product ids donde se creó la variante
}

// NewCatalog crea un catálogo vacío con las ubicaciones dadas.
func NewCatalog(locations ...catalogsync.Location) *Catalog {
	return &Catalog{
		variants:  map[string][]catalogsync.RemoteVariant{},
		locations: locations,
		failures:  map[string]error{},
	}
}

// AddVariant registra una variante existente de un producto.
func (c *Catalog) AddVariant(productID string, v catalogsync.RemoteVariant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variants[productID] = append(c.variants[productID], v)
}

// FailProduct hace fallar toda llamada sobre el producto.
func (c *Catalog) FailProduct(productID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[productID] = err
}

// Variants devuelve una copia de las variantes del producto.
func (c *Catalog) Variants(productID string) []catalogsync.RemoteVariant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalogsync.RemoteVariant(nil), c.variants[productID]...)
}

// AdjustmentsSnapshot devuelve una copia de los ajustes registrados.
func (c *Catalog) AdjustmentsSnapshot() []catalogsync.InventoryAdjustment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalogsync.InventoryAdjustment(nil), c.Adjustments...)
}

func (c *Catalog) GetProductVariants(ctx context.Context, shop catalogsync.Shop, productID string) ([]catalogsync.RemoteVariant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[productID]; err != nil {
		return nil, err
	}
	vs, ok := c.variants[productID]
	if !ok {
		return nil, fmt.Errorf("producto %s no existe", productID)
	}
	return append([]catalogsync.RemoteVariant(nil), vs...), nil
}

func (c *Catalog) GetLocations(ctx context.Context, shop catalogsync.Shop) ([]catalogsync.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]catalogsync.Location(nil), c.locations...), nil
}

func (c *Catalog) CreateVariant(ctx context.Context, shop catalogsync.Shop, productID string, option catalogsync.SelectedOption) (*catalogsync.RemoteVariant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[productID]; err != nil {
		return nil, err
	}
	v := catalogsync.RemoteVariant{
		ID:              "gid://shopify/ProductVariant/" + uuid.NewString(),
		InventoryItemID: "gid://shopify/InventoryItem/" + uuid.NewString(),
		SelectedOptions: []catalogsync.SelectedOption{option},
	}
	c.variants[productID] = append(c.variants[productID], v)
	c.Created = append(c.Created, productID)
	return &v, nil
}

func (c *Catalog) UpdateVariant(ctx context.Context, shop catalogsync.Shop, productID string, in catalogsync.VariantUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failures[productID]; err != nil {
		return err
	}
	c.Updates = append(c.Updates, in)
	return nil
}

func (c *Catalog) AdjustInventory(ctx context.Context, shop catalogsync.Shop, in catalogsync.InventoryAdjustment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Adjustments = append(c.Adjustments, in)
	for pid, vs := range c.variants {
		for i := range vs {
			if vs[i].InventoryItemID == in.InventoryItemID {
				c.variants[pid][i].InventoryQuantity += in.Delta
			}
		}
	}
	return nil
}
