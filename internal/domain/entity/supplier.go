package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier proveedor. Code se genera con la secuencia "vendor" (VEND-00001).
// OutstandingBalance es lo que se le debe por compras a crédito.
type Supplier struct {
	ID                 string
	Code               string
	Name               string
	Phone              string
	Email              string
	Address            string
	PaymentTerms       string // "Cash", "Net 30", ...
	OutstandingBalance decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
