package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
)

// domainErrs errores de negocio que una llamada al almacenamiento puede devolver; no son
// fallas de disponibilidad y no se reintentan.
var domainErrs = []error{
	domain.ErrStorageUnavailable, domain.ErrDuplicate, domain.ErrNotFound,
	domain.ErrValidation, domain.ErrOutOfStock, domain.ErrStockInconsistency,
	domain.ErrInvalidQuantity, domain.ErrInvalidDiscount, domain.ErrInsufficientPayment,
}

// storageErr deja pasar los errores de dominio y convierte las fallas del almacenamiento
// (incluido el vencimiento del timeout) en ErrStorageUnavailable.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range domainErrs {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}

// withTimeout limita una llamada al almacenamiento; d <= 0 deja el ctx del caller.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// RetryPolicy reintentos con backoff exponencial (base, 2·base, 4·base, ...).
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Retry ejecuta fn y reintenta solo cuando falla con ErrStorageUnavailable. Los errores de
// negocio se devuelven de inmediato.
func Retry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.BaseDelay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil || !errors.Is(err, domain.ErrStorageUnavailable) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
