package entity

import "time"

// Store representa una tienda Shopify registrada en el marketplace (tenant).
type Store struct {
	ID          string
	StoreURL    string // dominio myshopify, único
	Name        string
	AccessToken string // token Admin API de la tienda
	IsInternal  bool   // tienda interna del marketplace: puede aprobar órdenes de cajas
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
