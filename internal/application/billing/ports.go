package billing

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// BillingTxRunner ejecuta funciones dentro de una transacción del almacenamiento.
// RunBilling confirma la factura junto con su marca de stock pendiente; RunStock aplica los
// descuentos de stock y marca la factura como aplicada.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error) error
	RunStock(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error) error
}

// EventPublisher publica eventos hacia un broker (o al log si no hay broker).
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}
