package boxorder

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/application/catalogsync"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el cambio de estado de la orden y el ledger se apliquen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		orders repository.StoreBoxOrderRepository,
		inventory repository.StoreBoxInventoryRepository,
	) error) error
}

// CatalogSyncer propaga el ledger de una tienda al catálogo del marketplace.
// Lo implementa *catalogsync.Syncer.
type CatalogSyncer interface {
	SyncStore(ctx context.Context, storeID string) (*catalogsync.Report, error)
}
