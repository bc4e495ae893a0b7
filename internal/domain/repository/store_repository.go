package repository

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// StoreRepository define el puerto de lectura de tiendas.
type StoreRepository interface {
	GetByURL(ctx context.Context, storeURL string) (*entity.Store, error)
	GetByID(ctx context.Context, id string) (*entity.Store, error)
}
