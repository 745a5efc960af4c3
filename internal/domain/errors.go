package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrValidation          = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrOutOfStock          = errors.New("stock insuficiente")
	ErrInsufficientPayment = errors.New("monto recibido menor al total neto")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInvalidDiscount     = errors.New("descuento inválido")
	ErrStorageUnavailable  = errors.New("almacenamiento no disponible")
	ErrStockInconsistency  = errors.New("inconsistencia de stock")
)

// OutOfStockError indica qué producto no alcanza para la venta.
// errors.Is(err, ErrOutOfStock) es true.
type OutOfStockError struct {
	ProductID string
	Name      string
	Requested int64
	Available int64
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q (%s): solicitado %d, disponible %d",
		e.Name, e.ProductID, e.Requested, e.Available)
}

func (e *OutOfStockError) Unwrap() error { return ErrOutOfStock }

// StockInconsistencyError se detecta al aplicar el descuento de stock de una factura ya
// confirmada: el stock real era menor a la cantidad vendida y quedó en 0.
type StockInconsistencyError struct {
	InvoiceID string
	ProductID string
	Requested int64
	Available int64
}

func (e *StockInconsistencyError) Error() string {
	return fmt.Sprintf("inconsistencia de stock en factura %s, producto %s: vendido %d, disponible %d",
		e.InvoiceID, e.ProductID, e.Requested, e.Available)
}

func (e *StockInconsistencyError) Unwrap() error { return ErrStockInconsistency }

// Validationf envuelve ErrValidation con un detalle legible.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
