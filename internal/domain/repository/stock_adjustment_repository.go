package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// StockAdjustmentRepository persiste las marcas de descuento de stock pendientes.
type StockAdjustmentRepository interface {
	CreatePending(ctx context.Context, adj *entity.StockAdjustment) error
	// GetForUpdate bloquea la marca (SELECT FOR UPDATE). (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, invoiceID string) (*entity.StockAdjustment, error)
	MarkApplied(ctx context.Context, invoiceID string) error
	RecordFailure(ctx context.Context, invoiceID string, cause string) error
	ListPending(ctx context.Context, limit int) ([]*entity.StockAdjustment, error)
}
