package repository

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// BundleRepository define el puerto de lectura de bundles (los gestiona otro módulo).
type BundleRepository interface {
	ListByStoreAndBox(ctx context.Context, storeID, boxID string) ([]*entity.Bundle, error)
}
