package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Box representa un tipo de caja de empaque (colección maestra, solo lectura en este servicio).
type Box struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio que se suma al bundle en la variante con empaque
	Size      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
