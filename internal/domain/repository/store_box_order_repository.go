package repository

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// StoreBoxOrderRepository define el puerto de persistencia de órdenes de cajas.
// Usado dentro de transacciones (GetForUpdate, UpdateStatus).
type StoreBoxOrderRepository interface {
	Create(ctx context.Context, order *entity.StoreBoxOrder) error
	// GetByID devuelve nil, nil si la orden no existe. Los ítems traen la caja poblada.
	GetByID(ctx context.Context, id string) (*entity.StoreBoxOrder, error)
	// GetForUpdate bloquea la fila de la orden (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StoreBoxOrder, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.StoreBoxOrder, error)
}
