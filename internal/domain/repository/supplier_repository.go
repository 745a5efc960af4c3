package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SupplierRepository define el puerto de persistencia para Supplier.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	// GetByID retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error)
	// AdjustOutstanding suma amount a la deuda con el proveedor en una sola operación.
	// ErrNotFound si no existe.
	AdjustOutstanding(ctx context.Context, id string, amount decimal.Decimal) (*entity.Supplier, error)
}
