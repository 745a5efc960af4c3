package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceItemRequest línea del carrito. Si UnitPrice viene vacío se usa el precio
// del catálogo.
type CreateInvoiceItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	// LineTotal lo calcula el servidor; si el cliente lo envía se ignora.
	LineTotal *decimal.Decimal `json:"line_total,omitempty"`
}

// CreateInvoiceRequest entrada para confirmar una venta.
// TaxTotal nil = se calcula con el porcentaje configurado.
// Subtotal, NetTotal y ChangeReturned se aceptan por compatibilidad con la caja pero se
// recalculan siempre.
type CreateInvoiceRequest struct {
	Items          []CreateInvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountTotal  decimal.Decimal            `json:"discount_total"`
	TaxTotal       *decimal.Decimal           `json:"tax_total,omitempty"`
	PaymentMethod  string                     `json:"payment_method" validate:"required"`
	AmountReceived decimal.Decimal            `json:"amount_received"`

	Subtotal       *decimal.Decimal `json:"subtotal,omitempty"`
	NetTotal       *decimal.Decimal `json:"net_total,omitempty"`
	ChangeReturned *decimal.Decimal `json:"change_returned,omitempty"`
}

// InvoiceLineResponse línea de factura.
type InvoiceLineResponse struct {
	Position  int             `json:"position"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceResponse salida de una factura confirmada.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	CreatedAt      time.Time             `json:"created_at"`
	Lines          []InvoiceLineResponse `json:"lines"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountTotal  decimal.Decimal       `json:"discount_total"`
	TaxTotal       decimal.Decimal       `json:"tax_total"`
	NetTotal       decimal.Decimal       `json:"net_total"`
	PaymentMethod  string                `json:"payment_method"`
	AmountReceived decimal.Decimal       `json:"amount_received"`
	ChangeReturned decimal.Decimal       `json:"change_returned"`
	CreatedBy      string                `json:"created_by,omitempty"`
}

// InvoiceListRequest filtros del listado (fechas en RFC3339 o YYYY-MM-DD).
type InvoiceListRequest struct {
	From          string `query:"from"`
	To            string `query:"to"`
	PaymentMethod string `query:"payment_method"`
	PageRequest
}

// InvoiceListResponse lista paginada de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PaymentMethodTotal total de ventas por medio de pago.
type PaymentMethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	InvoiceCount  int             `json:"invoice_count"`
	NetTotal      decimal.Decimal `json:"net_total"`
}

// SalesReportResponse resumen de ventas de un período.
type SalesReportResponse struct {
	From          time.Time            `json:"from"`
	To            time.Time            `json:"to"`
	InvoiceCount  int                  `json:"invoice_count"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	DiscountTotal decimal.Decimal      `json:"discount_total"`
	TaxTotal      decimal.Decimal      `json:"tax_total"`
	NetTotal      decimal.Decimal      `json:"net_total"`
	ByPayment     []PaymentMethodTotal `json:"by_payment_method"`
}
