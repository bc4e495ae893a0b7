package dto

import "time"

// OrderItemRequest línea del body. Quantity es puntero para distinguir "ausente" de 0.
type OrderItemRequest struct {
	Box      string   `json:"box"`
	Quantity *float64 `json:"quantity"`
}

// CreateStoreBoxOrderRequest body para POST /api/store-box-orders.
type CreateStoreBoxOrderRequest struct {
	OrderItems []OrderItemRequest `json:"orderItems"`
}

// UpdateStoreBoxOrderRequest body para PATCH /api/store-box-orders/:id.
type UpdateStoreBoxOrderRequest struct {
	Status string `json:"status"`
}

// StoreBoxOrderItemResponse línea con la caja poblada (si existe).
type StoreBoxOrderItemResponse struct {
	Box      string       `json:"box"`
	Quantity int          `json:"quantity"`
	Details  *BoxResponse `json:"boxDetails,omitempty"`
}

// StoreBoxOrderResponse salida de una orden de cajas.
type StoreBoxOrderResponse struct {
	ID            string                      `json:"id"`
	Store         string                      `json:"store"`
	Status        string                      `json:"status"`
	OrderItems    []StoreBoxOrderItemResponse `json:"orderItems"`
	TotalQuantity int                         `json:"totalQuantity"`
	OrderedAt     time.Time                   `json:"orderedAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// StoreBoxOrderListResponse lista paginada de órdenes.
type StoreBoxOrderListResponse struct {
	Items []StoreBoxOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
