package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Facturación solo lee el precio y modifica Stock.
type Product struct {
	ID           string
	SKU          string
	Name         string
	SellingPrice decimal.Decimal
	Stock        int64 // nunca negativo
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
