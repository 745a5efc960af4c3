package entity

import "github.com/shopspring/decimal"

// InvoiceLine línea de venta con nombre y precio tomados al momento de facturar.
type InvoiceLine struct {
	ID        string
	InvoiceID string
	Position  int
	ProductID string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}
