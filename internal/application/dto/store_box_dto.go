package dto

import "time"

// ShopifyLinkResponse variante remota vinculada a la entrada.
type ShopifyLinkResponse struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId"`
}

// StoreBoxEntryResponse saldo de un tipo de caja.
type StoreBoxEntryResponse struct {
	Box       string               `json:"box"`
	Details   *BoxResponse         `json:"boxDetails,omitempty"`
	Quantity  int                  `json:"quantity"`
	Remaining int                  `json:"remaining"`
	Used      int                  `json:"used"`
	Shopify   *ShopifyLinkResponse `json:"shopify,omitempty"`
}

// StoreBoxInventoryResponse ledger de cajas de una tienda con totales.
type StoreBoxInventoryResponse struct {
	ID             string                  `json:"id"`
	Store          string                  `json:"store"`
	Inventory      []StoreBoxEntryResponse `json:"inventory"`
	TotalRemaining int                     `json:"totalRemaining"`
	TotalUsed      int                     `json:"totalUsed"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// BundleSyncResult resultado de sincronizar un bundle con el catálogo.
type BundleSyncResult struct {
	BoxID     string `json:"box"`
	BundleID  string `json:"bundle"`
	Status    string `json:"status"` // synced | skipped | failed
	Step      string `json:"step,omitempty"`
	Error     string `json:"error,omitempty"`
	VariantID string `json:"variantId,omitempty"`
	Delta     int    `json:"delta"`
}

// SyncReportResponse resumen de una sincronización ledger → catálogo.
type SyncReportResponse struct {
	StoreID string             `json:"store"`
	Synced  int                `json:"synced"`
	Skipped int                `json:"skipped"`
	Failed  int                `json:"failed"`
	Error   string             `json:"error,omitempty"`
	Results []BundleSyncResult `json:"results"`
}
