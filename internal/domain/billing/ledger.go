package billing

import (
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/shopspring/decimal"
)

// maxBalance límite de NUMERIC(14,2).
var maxBalance = decimal.RequireFromString("999999999999.99")

// ValidateBalanceAdjustment valida un movimiento de saldo (crédito de cliente o deuda con
// proveedor). Positivo aumenta la deuda, negativo registra un pago.
func ValidateBalanceAdjustment(amount decimal.Decimal) error {
	if amount.IsZero() {
		return domain.Validationf("amount no puede ser cero")
	}
	if amount.Abs().GreaterThan(maxBalance) {
		return domain.Validationf("amount fuera de rango: %s", amount.String())
	}
	return CheckCents("amount", amount)
}

// ApplyBalanceAdjustment devuelve el saldo resultante, redondeado a centavos.
func ApplyBalanceAdjustment(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateBalanceAdjustment(amount); err != nil {
		return balance, err
	}
	next := balance.Add(amount).Round(moneyPlaces)
	if next.Abs().GreaterThan(maxBalance) {
		return balance, domain.Validationf("el saldo resultante excede el máximo permitido")
	}
	return next, nil
}
