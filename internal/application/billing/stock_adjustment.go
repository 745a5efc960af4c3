package billing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// StockConfig parámetros del descuento de stock.
type StockConfig struct {
	LowStockThreshold int64 // 0 = sin alerta de stock bajo
	AlertTopic        string
	Timeout           time.Duration
}

// StockDelta cantidad a descontar de un producto.
type StockDelta struct {
	ProductID string
	Quantity  int64
}

// StockAdjustmentCoordinator aplica los descuentos de stock de una factura ya confirmada.
// Aplicar dos veces la misma factura no descuenta dos veces: la marca APPLIED se escribe en
// la misma transacción que los descuentos.
type StockAdjustmentCoordinator struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	publisher   EventPublisher
	cfg         StockConfig
	log         *logger.Logger
}

// NewStockAdjustmentCoordinator construye el coordinador.
func NewStockAdjustmentCoordinator(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	publisher EventPublisher,
	cfg StockConfig,
	log *logger.Logger,
) *StockAdjustmentCoordinator {
	if log == nil {
		log = logger.Nop()
	}
	return &StockAdjustmentCoordinator{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		publisher:   publisher,
		cfg:         cfg,
		log:         log.Component("stock"),
	}
}

// AggregateDeltas suma las cantidades por producto y ordena por ID de producto. Todas las
// transacciones bloquean filas de producto en el mismo orden. Una cantidad no positiva o
// una suma que no cabe en int64 es ErrInvalidQuantity.
func AggregateDeltas(lines []entity.InvoiceLine) ([]StockDelta, error) {
	byProduct := make(map[string]int64, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 || l.Quantity > math.MaxInt64-byProduct[l.ProductID] {
			return nil, fmt.Errorf("%w: producto %s, cantidad %d", domain.ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
		byProduct[l.ProductID] += l.Quantity
	}
	out := make([]StockDelta, 0, len(byProduct))
	for id, qty := range byProduct {
		out = append(out, StockDelta{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ApplyForInvoice carga las líneas de la factura y aplica sus descuentos. Lo usa el barrido
// de recuperación.
func (c *StockAdjustmentCoordinator) ApplyForInvoice(ctx context.Context, invoiceID string) error {
	readCtx, cancel := withTimeout(ctx, c.cfg.Timeout)
	lines, err := c.invoiceRepo.GetLines(readCtx, invoiceID)
	cancel()
	if err != nil {
		return storageErr("leer líneas de factura", err)
	}
	return c.ApplyStockDeltas(ctx, invoiceID, lines)
}

// ApplyStockDeltas descuenta del stock las cantidades vendidas en la factura invoiceID.
// Si la marca ya está APPLIED no hace nada. Cuando el stock real no alcanza, el producto
// queda en 0 y se publica una alerta de inconsistencia; la factura no se revierte.
// Si falla, la marca sigue PENDING con el intento registrado.
func (c *StockAdjustmentCoordinator) ApplyStockDeltas(ctx context.Context, invoiceID string, lines []entity.InvoiceLine) error {
	deltas, err := AggregateDeltas(lines)
	if err != nil {
		c.recordFailure(ctx, invoiceID, err)
		return err
	}
	var alerts []StockAlertEvent
	skipped := false

	txCtx, cancel := withTimeout(ctx, c.cfg.Timeout)
	err = c.txRunner.RunStock(txCtx, func(
		productRepo repository.ProductRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error {
		alerts = alerts[:0]
		adj, err := adjustmentRepo.GetForUpdate(txCtx, invoiceID)
		if err != nil {
			return err
		}
		if adj == nil {
			return fmt.Errorf("marca de stock de factura %s: %w", invoiceID, domain.ErrNotFound)
		}
		if adj.Status == entity.StockAdjustmentApplied {
			skipped = true
			return nil
		}
		now := time.Now().UTC()
		for _, d := range deltas {
			before, after, err := productRepo.DecrementStock(txCtx, d.ProductID, d.Quantity)
			if err != nil {
				return fmt.Errorf("descontar stock de %s: %w", d.ProductID, err)
			}
			if before < d.Quantity {
				alerts = append(alerts, StockAlertEvent{
					Type: AlertStockInconsistency, InvoiceID: invoiceID, ProductID: d.ProductID,
					Requested: d.Quantity, Before: before, After: after, At: now,
				})
			} else if t := c.cfg.LowStockThreshold; t > 0 && before > t && after <= t {
				alerts = append(alerts, StockAlertEvent{
					Type: AlertLowStock, InvoiceID: invoiceID, ProductID: d.ProductID,
					Requested: d.Quantity, Before: before, After: after, At: now,
				})
			}
		}
		return adjustmentRepo.MarkApplied(txCtx, invoiceID)
	})
	cancel()

	if err != nil {
		err = storageErr("aplicar descuento de stock", err)
		c.recordFailure(ctx, invoiceID, err)
		return err
	}
	if skipped {
		c.log.Debug().Str("invoice_id", invoiceID).Msg("descuento de stock ya aplicado")
		return nil
	}
	for _, a := range alerts {
		c.raise(ctx, a)
	}
	return nil
}

func (c *StockAdjustmentCoordinator) recordFailure(ctx context.Context, invoiceID string, cause error) {
	c.log.Warn().Err(cause).Str("invoice_id", invoiceID).Msg("descuento de stock pendiente")
	txCtx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	err := c.txRunner.RunStock(txCtx, func(_ repository.ProductRepository, adjustmentRepo repository.StockAdjustmentRepository) error {
		return adjustmentRepo.RecordFailure(txCtx, invoiceID, cause.Error())
	})
	if err != nil {
		c.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("no se pudo registrar el intento fallido")
	}
}

func (c *StockAdjustmentCoordinator) raise(ctx context.Context, a StockAlertEvent) {
	if a.Type == AlertStockInconsistency {
		inconsistency := &domain.StockInconsistencyError{
			InvoiceID: a.InvoiceID, ProductID: a.ProductID, Requested: a.Requested, Available: a.Before,
		}
		c.log.Error().Err(inconsistency).
			Str("invoice_id", a.InvoiceID).
			Str("product_id", a.ProductID).
			Msg("stock insuficiente al aplicar factura confirmada, quedó en 0")
	} else {
		c.log.Warn().
			Str("product_id", a.ProductID).
			Int64("stock", a.After).
			Int64("threshold", c.cfg.LowStockThreshold).
			Msg("stock bajo")
	}
	if c.publisher == nil {
		return
	}
	pubCtx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	if err := c.publisher.PublishEvent(pubCtx, c.cfg.AlertTopic, a.ProductID, a); err != nil {
		c.log.Warn().Err(err).Str("type", a.Type).Msg("no se pudo publicar alerta de stock")
	}
}
