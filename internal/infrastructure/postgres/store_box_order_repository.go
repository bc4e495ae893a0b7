package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
)

var _ repository.StoreBoxOrderRepository = (*StoreBoxOrderRepo)(nil)

// StoreBoxOrderRepo órdenes de cajas sobre PostgreSQL (usable con pool o tx).
// Las líneas viven en store_box_order_items, en el orden de la petición (position).
type StoreBoxOrderRepo struct {
	q Querier
}

// NewStoreBoxOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreBoxOrderRepository(q Querier) *StoreBoxOrderRepo {
	return &StoreBoxOrderRepo{q: q}
}

const orderColumns = `id, store_id, status, total_quantity, ordered_at, updated_at`

// Create persiste la orden y sus líneas. Llamar dentro de una tx para que sea atómico.
func (r *StoreBoxOrderRepo) Create(ctx context.Context, order *entity.StoreBoxOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO store_box_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.StoreID, order.Status, order.TotalQuantity, order.OrderedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("orden %s duplicada: %w", order.ID, domain.ErrConflict)
		}
		return fmt.Errorf("insert store box order: %w", err)
	}
	for i, it := range order.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO store_box_order_items (order_id, box_id, quantity, position)
			VALUES ($1, $2, $3, $4)`,
			order.ID, it.BoxID, it.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert store box order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una orden con sus líneas y cajas.
func (r *StoreBoxOrderRepo) GetByID(ctx context.Context, id string) (*entity.StoreBoxOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM store_box_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea su fila hasta el fin de la tx (SELECT FOR UPDATE).
// Dos aprobaciones concurrentes de la misma orden quedan serializadas.
func (r *StoreBoxOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.StoreBoxOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM store_box_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *StoreBoxOrderRepo) get(ctx context.Context, query, id string) (*entity.StoreBoxOrder, error) {
	var o entity.StoreBoxOrder
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.StoreID, &o.Status, &o.TotalQuantity, &o.OrderedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store box order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// UpdateStatus cambia el estado de la orden.
func (r *StoreBoxOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE store_box_orders SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update store box order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ListByStore lista órdenes de la tienda, más recientes primero, con paginación.
func (r *StoreBoxOrderRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.StoreBoxOrder, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM store_box_orders
		WHERE store_id = $1 ORDER BY ordered_at DESC LIMIT $2 OFFSET $3`,
		storeID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list store box orders: %w", err)
	}
	var (
		list []*entity.StoreBoxOrder
		ids  []string
	)
	for rows.Next() {
		var o entity.StoreBoxOrder
		if err := rows.Scan(&o.ID, &o.StoreID, &o.Status, &o.TotalQuantity, &o.OrderedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan store box order: %w", err)
		}
		list = append(list, &o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list store box orders: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

// loadItems carga las líneas de varias órdenes con la caja poblada (LEFT JOIN: la caja pudo borrarse).
func (r *StoreBoxOrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]entity.StoreBoxOrderItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.order_id, i.box_id, i.quantity,
		       b.id, b.name, b.price, b.size, b.created_at, b.updated_at
		FROM store_box_order_items i
		LEFT JOIN boxes b ON b.id = i.box_id
		WHERE i.order_id = ANY($1::uuid[])
		ORDER BY i.order_id, i.position`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list store box order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.StoreBoxOrderItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			it      entity.StoreBoxOrderItem
			box     nullableBox
		)
		dest := append([]any{&orderID, &it.BoxID, &it.Quantity}, box.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan store box order item: %w", err)
		}
		it.Box = box.entity()
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

// nullableBox columnas de boxes provenientes de un LEFT JOIN.
type nullableBox struct {
	id, name, size       *string
	price                decimal.NullDecimal
	createdAt, updatedAt *time.Time
}

func (b *nullableBox) dest() []any {
	return []any{&b.id, &b.name, &b.price, &b.size, &b.createdAt, &b.updatedAt}
}

func (b *nullableBox) entity() *entity.Box {
	if b.id == nil {
		return nil
	}
	box := &entity.Box{ID: *b.id, Price: b.price.Decimal}
	if b.name != nil {
		box.Name = *b.name
	}
	if b.size != nil {
		box.Size = *b.size
	}
	if b.createdAt != nil {
		box.CreatedAt = *b.createdAt
	}
	if b.updatedAt != nil {
		box.UpdatedAt = *b.updatedAt
	}
	return box
}
