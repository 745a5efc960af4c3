package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	// Create persiste un cliente; el teléfono es único (ErrDuplicate si se repite).
	Create(ctx context.Context, customer *entity.Customer) error
	// GetByID retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	// AdjustCredit suma amount al saldo en una sola operación y devuelve el cliente
	// actualizado. ErrNotFound si no existe.
	AdjustCredit(ctx context.Context, id string, amount decimal.Decimal) (*entity.Customer, error)
}
