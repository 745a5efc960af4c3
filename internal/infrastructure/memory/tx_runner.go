package memory

import (
	"context"

	"github.com/jhoicas/pos-api/internal/application/billing"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner transacciones sobre el Store: todo o nada, una a la vez.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunBilling ejecuta fn con repos de facturas y marcas de stock atados a la tx.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.run(func(tx *txState) error {
		return fn(&InvoiceRepo{s: r.s, tx: tx}, &StockAdjustmentRepo{s: r.s, tx: tx})
	})
}

// RunStock ejecuta fn con repos de productos y marcas de stock atados a la tx.
func (r *TxRunner) RunStock(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	adjustmentRepo repository.StockAdjustmentRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.s.run(func(tx *txState) error {
		return fn(&ProductRepo{s: r.s, tx: tx}, &StockAdjustmentRepo{s: r.s, tx: tx})
	})
}
