package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID retorna (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// DecrementStock resta amount al stock en una sola sentencia, con piso en 0.
	// Devuelve el stock previo y el resultante.
	DecrementStock(ctx context.Context, id string, amount int64) (before, after int64, err error)
}
