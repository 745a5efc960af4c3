package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago aceptado en caja.
type PaymentMethod string

// Medios de pago soportados.
const (
	PaymentCash      PaymentMethod = "Cash"
	PaymentCard      PaymentMethod = "Card"
	PaymentEasyPaisa PaymentMethod = "EasyPaisa"
	PaymentJazzCash  PaymentMethod = "JazzCash"
)

// PaymentMethods lista completa en el orden en que se muestran en caja.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentEasyPaisa, PaymentJazzCash}

// Valid indica si el medio de pago pertenece al enum.
func (m PaymentMethod) Valid() bool {
	for _, p := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// Invoice representa una venta confirmada. Los totales se derivan siempre en el servidor
// y no se modifican después de persistir.
type Invoice struct {
	ID             string
	Number         string // PREFIX-<n>, único
	Sequence       int64  // valor del contador usado para Number
	CreatedAt      time.Time
	Lines          []InvoiceLine
	Subtotal       decimal.Decimal
	DiscountTotal  decimal.Decimal
	TaxTotal       decimal.Decimal
	NetTotal       decimal.Decimal
	PaymentMethod  PaymentMethod
	AmountReceived decimal.Decimal
	ChangeReturned decimal.Decimal
	CreatedBy      string
}
