package entity

import "time"

// Estados de una orden de cajas.
const (
	BoxOrderStatusPending   = "pending"
	BoxOrderStatusDelivered = "delivered"
	BoxOrderStatusCancelled = "cancelled"
)

// StoreBoxOrderItem línea de una orden; el BoxID es único dentro de la orden.
type StoreBoxOrderItem struct {
	BoxID    string
	Quantity int
	Box      *Box // poblado en lecturas
}

// StoreBoxOrder pedido de cajas de empaque de una tienda.
// TotalQuantity se calcula al crear y no se modifica después.
type StoreBoxOrder struct {
	ID            string
	StoreID       string
	Status        string
	Items         []StoreBoxOrderItem
	TotalQuantity int
	OrderedAt     time.Time
	UpdatedAt     time.Time
}

// IsPending indica si la orden aún admite un cambio de estado.
func (o *StoreBoxOrder) IsPending() bool {
	return o.Status == BoxOrderStatusPending
}
