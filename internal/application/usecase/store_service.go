package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

// StoreService resuelve atributos de la tienda autenticada.
// Es el único punto que conoce qué hace "interna" a una tienda.
type StoreService struct {
	stores repository.StoreRepository
}

// NewStoreService construye el servicio de tiendas.
func NewStoreService(stores repository.StoreRepository) *StoreService {
	return &StoreService{stores: stores}
}

// IsInternal informa si la tienda es interna del marketplace.
// Devuelve false (sin error) si la tienda no existe.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *StoreService) IsInternal(ctx context.Context, storeURL string) (bool, error) {
	if storeURL == "" {
		return false, fmt.Errorf("store: storeURL es obligatorio")
	}
	store, err := s.stores.GetByURL(ctx, storeURL)
	if err != nil {
		return false, err
	}
	return store != nil && store.IsInternal, nil
}
