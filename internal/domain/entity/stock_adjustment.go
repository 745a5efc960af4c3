package entity

import "time"

// Estados del descuento de stock pendiente de una factura.
const (
	StockAdjustmentPending = "PENDING"
	StockAdjustmentApplied = "APPLIED"
)

// StockAdjustment marca durable que se guarda junto con la factura. Mientras esté en
// PENDING el barrido de recuperación reintenta aplicar el descuento; APPLIED se escribe
// en la misma transacción que los descuentos, así que se aplica una sola vez.
type StockAdjustment struct {
	InvoiceID string
	Status    string
	Attempts  int
	LastError string
	CreatedAt time.Time
	AppliedAt *time.Time
}
