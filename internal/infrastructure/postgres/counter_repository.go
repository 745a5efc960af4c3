package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.CounterRepository = (*CounterRepo)(nil)

// CounterRepo secuencias en la tabla sequence_counters.
type CounterRepo struct {
	q Querier
}

// NewCounterRepository construye el adaptador. Se usa con el pool: el incremento no debe
// revertirse con la transacción de la factura.
func NewCounterRepository(q Querier) *CounterRepo {
	return &CounterRepo{q: q}
}

// Increment crea o incrementa el contador en un único upsert atómico.
func (r *CounterRepo) Increment(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO sequence_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`
	var value int64
	if err := r.q.QueryRow(ctx, query, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return value, nil
}
