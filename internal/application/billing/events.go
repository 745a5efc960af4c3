package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de alerta de stock.
const (
	AlertStockInconsistency = "STOCK_INCONSISTENCY"
	AlertLowStock           = "LOW_STOCK"
)

// InvoiceCreatedEvent se publica después de confirmar una factura (reportes, recibos).
type InvoiceCreatedEvent struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CreatedAt     time.Time       `json:"created_at"`
	NetTotal      decimal.Decimal `json:"net_total"`
	PaymentMethod string          `json:"payment_method"`
	Lines         int             `json:"lines"`
}

// StockAlertEvent alerta para operadores: inconsistencia detectada o stock bajo.
type StockAlertEvent struct {
	Type      string    `json:"type"`
	InvoiceID string    `json:"invoice_id"`
	ProductID string    `json:"product_id"`
	Requested int64     `json:"requested,omitempty"`
	Before    int64     `json:"before"`
	After     int64     `json:"after"`
	At        time.Time `json:"at"`
}
