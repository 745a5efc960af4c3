package repository

import "context"

// CounterRepository secuencias atómicas. Increment crea el contador si no existe y
// devuelve el nuevo valor en una sola operación del almacenamiento.
type CounterRepository interface {
	Increment(ctx context.Context, name string) (int64, error)
}
