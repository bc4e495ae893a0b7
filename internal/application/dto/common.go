package dto

import "github.com/jhoicas/marketbox-api/internal/domain"

// BoxOrderPageSize tamaño fijo de página del listado de órdenes de cajas.
const BoxOrderPageSize = 10

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []domain.FieldViolation `json:"details,omitempty"`
}

// MessageResponse cuerpo de éxito sin payload.
type MessageResponse struct {
	Message string `json:"message"`
}
