// Package memory implementa los puertos de persistencia en memoria.
// Se usa en desarrollo local (DB_DRIVER=memory) y en los tests de aplicación y HTTP.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

var (
	_ repository.BoxRepository               = (*BoxRepo)(nil)
	_ repository.StoreRepository             = (*StoreRepo)(nil)
	_ repository.BundleRepository            = (*BundleRepo)(nil)
	_ repository.StoreBoxOrderRepository     = (*StoreBoxOrderRepo)(nil)
	_ repository.StoreBoxInventoryRepository = (*StoreBoxInventoryRepo)(nil)
)

// Store datos compartidos por los repositorios en memoria.
type Store struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	boxes       map[string]*entity.Box
	stores      map[string]*entity.Store
	bundles     []*entity.Bundle
	orders      map[string]*entity.StoreBoxOrder
	inventories map[string]*entity.StoreBoxInventory // por store_id
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		boxes:       map[string]*entity.Box{},
		stores:      map[string]*entity.Store{},
		orders:      map[string]*entity.StoreBoxOrder{},
		inventories: map[string]*entity.StoreBoxInventory{},
	}
}

// AddBox registra una caja del catálogo maestro.
func (s *Store) AddBox(b entity.Box) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boxes[b.ID] = &b
}

// AddStore registra una tienda.
func (s *Store) AddStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = &st
}

// AddBundle registra un bundle.
func (s *Store) AddBundle(b entity.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles = append(s.bundles, &b)
}

// Boxes repositorio de cajas.
func (s *Store) Boxes() *BoxRepo { return &BoxRepo{s: s} }

// Stores repositorio de tiendas.
func (s *Store) Stores() *StoreRepo { return &StoreRepo{s: s} }

// Bundles repositorio de bundles.
func (s *Store) Bundles() *BundleRepo { return &BundleRepo{s: s} }

// Orders repositorio de órdenes de cajas.
func (s *Store) Orders() *StoreBoxOrderRepo { return &StoreBoxOrderRepo{s: s} }

// Inventories repositorio del ledger de cajas.
func (s *Store) Inventories() *StoreBoxInventoryRepo { return &StoreBoxInventoryRepo{s: s} }

// TxRunner serializa las transacciones y restaura el estado si fn falla.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos del almacén; si fn devuelve error se descartan sus cambios.
func (r *TxRunner) Run(ctx context.Context, fn func(
	orders repository.StoreBoxOrderRepository,
	inventory repository.StoreBoxInventoryRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.Lock()
	orders := make(map[string]*entity.StoreBoxOrder, len(r.s.orders))
	for k, v := range r.s.orders {
		orders[k] = cloneOrder(v)
	}
	inventories := make(map[string]*entity.StoreBoxInventory, len(r.s.inventories))
	for k, v := range r.s.inventories {
		inventories[k] = cloneInventory(v)
	}
	r.s.mu.Unlock()

	if err := fn(r.s.Orders(), r.s.Inventories()); err != nil {
		r.s.mu.Lock()
		r.s.orders, r.s.inventories = orders, inventories
		r.s.mu.Unlock()
		return err
	}
	return nil
}

// BoxRepo cajas en memoria.
type BoxRepo struct{ s *Store }

func (r *BoxRepo) List(ctx context.Context) ([]*entity.Box, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Box, 0, len(r.s.boxes))
	for _, b := range r.s.boxes {
		cp := *b
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *BoxRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Box, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*entity.Box, len(ids))
	for _, id := range ids {
		if b, ok := r.s.boxes[id]; ok {
			cp := *b
			out[id] = &cp
		}
	}
	return out, nil
}

// StoreRepo tiendas en memoria.
type StoreRepo struct{ s *Store }

func (r *StoreRepo) GetByURL(ctx context.Context, storeURL string) (*entity.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range r.s.stores {
		if st.StoreURL == storeURL {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.stores[id]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

// BundleRepo bundles en memoria.
type BundleRepo struct{ s *Store }

func (r *BundleRepo) ListByStoreAndBox(ctx context.Context, storeID, boxID string) ([]*entity.Bundle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Bundle
	for _, b := range r.s.bundles {
		if b.StoreID == storeID && b.BoxID == boxID {
			cp := *b
			list = append(list, &cp)
		}
	}
	return list, nil
}

// StoreBoxOrderRepo órdenes en memoria.
type StoreBoxOrderRepo struct{ s *Store }

func (r *StoreBoxOrderRepo) Create(ctx context.Context, order *entity.StoreBoxOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *StoreBoxOrderRepo) GetByID(ctx context.Context, id string) (*entity.StoreBoxOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return r.populate(cloneOrder(o)), nil
}

func (r *StoreBoxOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.StoreBoxOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *StoreBoxOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.orders[id]; ok {
		o.Status = status
		o.UpdatedAt = time.Now()
	}
	return nil
}

func (r *StoreBoxOrderRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.StoreBoxOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.StoreBoxOrder
	for _, o := range r.s.orders {
		if o.StoreID == storeID {
			list = append(list, r.populate(cloneOrder(o)))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].OrderedAt.After(list[j].OrderedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	end := min(offset+limit, len(list))
	return list[offset:end], nil
}

// populate se llama con el mutex tomado.
func (r *StoreBoxOrderRepo) populate(o *entity.StoreBoxOrder) *entity.StoreBoxOrder {
	for i := range o.Items {
		if b, ok := r.s.boxes[o.Items[i].BoxID]; ok {
			cp := *b
			o.Items[i].Box = &cp
		}
	}
	return o
}

// StoreBoxInventoryRepo ledger en memoria (uno por tienda).
type StoreBoxInventoryRepo struct{ s *Store }

func (r *StoreBoxInventoryRepo) GetByStore(ctx context.Context, storeID string) (*entity.StoreBoxInventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventories[storeID]
	if !ok {
		return nil, nil
	}
	out := cloneInventory(inv)
	for i := range out.Entries {
		if b, ok := r.s.boxes[out.Entries[i].BoxID]; ok {
			cp := *b
			out.Entries[i].Box = &cp
		}
	}
	return out, nil
}

func (r *StoreBoxInventoryRepo) EnsureForStore(ctx context.Context, storeID string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if inv, ok := r.s.inventories[storeID]; ok {
		inv.UpdatedAt = time.Now()
		return inv.ID, nil
	}
	now := time.Now()
	inv := &entity.StoreBoxInventory{ID: uuid.New().String(), StoreID: storeID, CreatedAt: now, UpdatedAt: now}
	r.s.inventories[storeID] = inv
	return inv.ID, nil
}

func (r *StoreBoxInventoryRepo) AddStock(ctx context.Context, inventoryID, boxID string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.inventories {
		if inv.ID != inventoryID {
			continue
		}
		for i := range inv.Entries {
			if inv.Entries[i].BoxID == boxID {
				inv.Entries[i].Quantity += quantity
				inv.Entries[i].Remaining += quantity
				return nil
			}
		}
		inv.Entries = append(inv.Entries, entity.StoreBoxInventoryEntry{BoxID: boxID, Quantity: quantity, Remaining: quantity})
		return nil
	}
	return nil
}

// SetShopifyLink espera a las transacciones en curso: un rollback restaura el ledger completo.
// No llamar dentro de TxRunner.Run.
func (r *StoreBoxInventoryRepo) SetShopifyLink(ctx context.Context, storeID, boxID string, link entity.ShopifyLink) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventories[storeID]
	if !ok {
		return nil
	}
	for i := range inv.Entries {
		if inv.Entries[i].BoxID == boxID {
			l := link
			inv.Entries[i].Shopify = &l
		}
	}
	return nil
}

// SetEntry fija una entrada del ledger tal cual (seed de tests y desarrollo).
func (r *StoreBoxInventoryRepo) SetEntry(storeID string, e entity.StoreBoxInventoryEntry) {
	_, _ = r.EnsureForStore(context.Background(), storeID)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv := r.s.inventories[storeID]
	for i := range inv.Entries {
		if inv.Entries[i].BoxID == e.BoxID {
			inv.Entries[i] = e
			return
		}
	}
	inv.Entries = append(inv.Entries, e)
}

func cloneOrder(o *entity.StoreBoxOrder) *entity.StoreBoxOrder {
	cp := *o
	cp.Items = make([]entity.StoreBoxOrderItem, len(o.Items))
	for i, it := range o.Items {
		cp.Items[i] = entity.StoreBoxOrderItem{BoxID: it.BoxID, Quantity: it.Quantity}
	}
	return &cp
}

func cloneInventory(inv *entity.StoreBoxInventory) *entity.StoreBoxInventory {
	cp := *inv
	cp.Entries = make([]entity.StoreBoxInventoryEntry, len(inv.Entries))
	for i, e := range inv.Entries {
		cp.Entries[i] = e
		cp.Entries[i].Box = nil
		if e.Shopify != nil {
			l := *e.Shopify
			cp.Entries[i].Shopify = &l
		}
	}
	return &cp
}
