package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente de la caja. CreditBalance positivo = el cliente le debe al negocio;
// negativo = el negocio le debe al cliente (devolución o pago de más).
type Customer struct {
	ID            string
	Name          string
	Phone         string // único
	Email         string
	Address       string
	Notes         string
	CreditBalance decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
