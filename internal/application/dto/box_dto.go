package dto

import "github.com/shopspring/decimal"

// BoxResponse salida de una caja del catálogo maestro.
type BoxResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Size  string          `json:"size"`
}

// BoxListResponse lista del catálogo de cajas.
type BoxListResponse struct {
	Items []BoxResponse `json:"items"`
}
