package billing

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// SequenceGenerator entrega valores de secuencias con nombre ("invoice", "vendor").
// Cada valor se entrega una sola vez aunque haya llamadas concurrentes; si la operación que
// lo pidió falla después, el valor queda consumido (puede haber huecos).
type SequenceGenerator struct {
	counters repository.CounterRepository
	timeout  time.Duration
}

// NewSequenceGenerator construye el generador. timeout <= 0 = sin límite propio.
func NewSequenceGenerator(counters repository.CounterRepository, timeout time.Duration) *SequenceGenerator {
	return &SequenceGenerator{counters: counters, timeout: timeout}
}

// NextSequence incrementa y devuelve la secuencia name (la primera llamada devuelve 1).
func (g *SequenceGenerator) NextSequence(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, domain.Validationf("nombre de secuencia vacío")
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()
	n, err := g.counters.Increment(ctx, name)
	if err != nil {
		return 0, storageErr("siguiente secuencia "+name, err)
	}
	return n, nil
}
