// Package billing contiene las reglas puras de facturación: totales derivados y formato
// de consecutivos. No accede a repositorios ni a reloj.
package billing

import (
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// moneyPlaces decimales de la unidad mínima de la moneda.
const moneyPlaces = 2

// MaxLineQuantity tope de unidades por línea. Con este tope la suma por producto de una
// factura no se acerca al límite de int64.
const MaxLineQuantity int64 = 1_000_000

var hundred = decimal.NewFromInt(100)

// LineInput línea tal como llega del carrito (precio ya resuelto contra el catálogo).
type LineInput struct {
	ProductID string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Totals resultado del cálculo: líneas con LineTotal y los campos derivados de la factura.
type Totals struct {
	Lines          []entity.InvoiceLine
	Subtotal       decimal.Decimal
	DiscountTotal  decimal.Decimal
	TaxTotal       decimal.Decimal
	NetTotal       decimal.Decimal
	AmountReceived decimal.Decimal
	ChangeReturned decimal.Decimal
}

// Policy reglas configurables del cálculo.
// MaxDiscountPct limita el descuento a ese porcentaje del subtotal; cero = solo se exige
// descuento <= subtotal.
type Policy struct {
	MaxDiscountPct decimal.Decimal
}

// ComputeTotals calcula los totales sin tope porcentual de descuento.
func ComputeTotals(lines []LineInput, discountTotal, taxTotal, amountReceived decimal.Decimal) (*Totals, error) {
	return Policy{}.ComputeTotals(lines, discountTotal, taxTotal, amountReceived)
}

// ComputeTotals deriva:
//
//	lineTotal = quantity * unitPrice
//	subtotal  = Σ lineTotal
//	netTotal  = subtotal - discountTotal + taxTotal
//	change    = amountReceived - netTotal
//
// Cada total derivado se redondea a 2 decimales.
func (p Policy) ComputeTotals(lines []LineInput, discountTotal, taxTotal, amountReceived decimal.Decimal) (*Totals, error) {
	if len(lines) == 0 {
		return nil, domain.Validationf("la factura debe tener al menos una línea")
	}
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"discount_total", discountTotal}, {"tax_total", taxTotal}, {"amount_received", amountReceived},
	} {
		if err := CheckCents(f.name, f.v); err != nil {
			return nil, err
		}
	}
	out := &Totals{Lines: make([]entity.InvoiceLine, 0, len(lines))}
	subtotal := decimal.Zero
	for i, l := range lines {
		if l.Quantity <= 0 || l.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: producto %s, cantidad %d", domain.ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
		if l.UnitPrice.IsNegative() {
			return nil, domain.Validationf("precio unitario negativo en producto %s", l.ProductID)
		}
		if err := CheckCents("unit_price de "+l.ProductID, l.UnitPrice); err != nil {
			return nil, err
		}
		lineTotal := l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).Round(moneyPlaces)
		subtotal = subtotal.Add(lineTotal)
		out.Lines = append(out.Lines, entity.InvoiceLine{
			Position:  i + 1,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: lineTotal,
		})
	}
	subtotal = subtotal.Round(moneyPlaces)

	if discountTotal.IsNegative() || discountTotal.GreaterThan(subtotal) {
		return nil, domain.ErrInvalidDiscount
	}
	if p.MaxDiscountPct.IsPositive() {
		limit := subtotal.Mul(p.MaxDiscountPct).Div(hundred).Round(moneyPlaces)
		if discountTotal.GreaterThan(limit) {
			return nil, domain.ErrInvalidDiscount
		}
	}
	if taxTotal.IsNegative() {
		return nil, domain.Validationf("impuesto negativo")
	}

	netTotal := subtotal.Sub(discountTotal).Add(taxTotal).Round(moneyPlaces)
	if amountReceived.LessThan(netTotal) {
		return nil, domain.ErrInsufficientPayment
	}

	out.Subtotal = subtotal
	out.DiscountTotal = discountTotal
	out.TaxTotal = taxTotal
	out.NetTotal = netTotal
	out.AmountReceived = amountReceived
	out.ChangeReturned = amountReceived.Sub(netTotal).Round(moneyPlaces)
	return out, nil
}

// ComputeTax impuesto sobre el subtotal a partir de un porcentaje (5 = 5%).
func ComputeTax(subtotal, taxPct decimal.Decimal) decimal.Decimal {
	if !taxPct.IsPositive() || !subtotal.IsPositive() {
		return decimal.Zero
	}
	return subtotal.Mul(taxPct).Div(hundred).Round(moneyPlaces)
}

// Subtotal suma quantity*unitPrice de las líneas válidas; sirve para calcular el impuesto
// antes de ComputeTotals.
func Subtotal(lines []LineInput) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)).Round(moneyPlaces))
	}
	return sum.Round(moneyPlaces)
}

// CheckCents rechaza importes con más de 2 decimales: las columnas son NUMERIC(14,2) y un
// importe más fino dejaría los totales guardados inconsistentes con sus líneas.
func CheckCents(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(moneyPlaces)) {
		return domain.Validationf("%s admite como máximo %d decimales: %s", field, moneyPlaces, d.String())
	}
	return nil
}
