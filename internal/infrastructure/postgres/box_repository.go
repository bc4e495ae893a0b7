package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

var _ repository.BoxRepository = (*BoxRepo)(nil)

// BoxRepo implementación del puerto BoxRepository sobre PostgreSQL.
type BoxRepo struct {
	q Querier
}

// NewBoxRepository construye el adaptador del catálogo de cajas.
func NewBoxRepository(q Querier) *BoxRepo {
	return &BoxRepo{q: q}
}

const boxColumns = `id, name, price, size, created_at, updated_at`

// List devuelve todas las cajas ordenadas por nombre.
func (r *BoxRepo) List(ctx context.Context) ([]*entity.Box, error) {
	rows, err := r.q.Query(ctx, `SELECT `+boxColumns+` FROM boxes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Box
	for rows.Next() {
		var b entity.Box
		if err := rows.Scan(&b.ID, &b.Name, &b.Price, &b.Size, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// GetByIDs obtiene las cajas existentes entre los IDs dados.
func (r *BoxRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Box, error) {
	out := make(map[string]*entity.Box, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+boxColumns+` FROM boxes WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		if isInvalidText(err) {
			return out, nil
		}
		return nil, fmt.Errorf("get boxes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.Box
		if err := rows.Scan(&b.ID, &b.Name, &b.Price, &b.Size, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		out[b.ID] = &b
	}
	return out, rows.Err()
}
