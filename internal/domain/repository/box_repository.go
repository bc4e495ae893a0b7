package repository

import (
	"context"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// BoxRepository define el puerto de lectura del catálogo maestro de cajas.
type BoxRepository interface {
	List(ctx context.Context) ([]*entity.Box, error)
	// GetByIDs devuelve las cajas encontradas indexadas por ID (las inexistentes se omiten).
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Box, error)
}
