package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceFilter filtros para listados y reportes. From/To nil = sin límite.
type InvoiceFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentMethod entity.PaymentMethod
	Limit         int
	Offset        int
}

// PaymentMethodSummary totales de un medio de pago en el período.
type PaymentMethodSummary struct {
	PaymentMethod entity.PaymentMethod
	InvoiceCount  int
	NetTotal      decimal.Decimal
}

// SalesSummary resultado crudo del reporte de ventas.
type SalesSummary struct {
	InvoiceCount  int
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	NetTotal      decimal.Decimal
	ByPayment     []PaymentMethodSummary
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
// No hay Update ni Delete: una factura confirmada es inmutable.
type InvoiceRepository interface {
	// Create persiste la cabecera; Number es único (ErrDuplicate si se repite).
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	// GetByID retorna (nil, nil) si no existe. Incluye las líneas.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error)
	// List devuelve cabeceras con sus líneas, más recientes primero.
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Summarize(ctx context.Context, from, to time.Time) (*SalesSummary, error)
}
