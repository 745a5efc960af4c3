package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/pos-api/internal/domain"
)

// DefaultInvoicePrefix y DefaultInvoiceStart: la primera factura es INV-1001.
const (
	DefaultInvoicePrefix = "INV"
	DefaultInvoiceStart  = 1001
	vendorCodePrefix     = "VEND"
)

// FormatInvoiceNumber arma PREFIX-<n> con n = start - 1 + seq (seq empieza en 1).
func FormatInvoiceNumber(prefix string, start, seq int64) string {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	if start <= 0 {
		start = DefaultInvoiceStart
	}
	return fmt.Sprintf("%s-%d", prefix, start-1+seq)
}

// ParseInvoiceNumber separa prefijo y número de un consecutivo PREFIX-<n>.
func ParseInvoiceNumber(s string) (prefix string, n int64, err error) {
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return "", 0, fmt.Errorf("consecutivo inválido %q", s)
	}
	n, err = strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("consecutivo inválido %q", s)
	}
	return s[:i], n, nil
}

// ValidateInvoiceNumbering comprueba que la primera factura con este prefijo e inicio se
// pueda leer de vuelta: mismo prefijo y número igual a start.
func ValidateInvoiceNumbering(prefix string, start int64) error {
	if strings.TrimSpace(prefix) != prefix || strings.ContainsAny(prefix, " \t") {
		return domain.Validationf("prefijo de factura con espacios: %q", prefix)
	}
	if strings.HasSuffix(prefix, "-") {
		return domain.Validationf("prefijo de factura no puede terminar en '-': %q", prefix)
	}
	first := FormatInvoiceNumber(prefix, start, 1)
	gotPrefix, n, err := ParseInvoiceNumber(first)
	if err != nil {
		return domain.Validationf("numeración de facturas inválida: %v", err)
	}
	wantPrefix, wantStart := prefix, start
	if wantPrefix == "" {
		wantPrefix = DefaultInvoicePrefix
	}
	if wantStart <= 0 {
		wantStart = DefaultInvoiceStart
	}
	if gotPrefix != wantPrefix || n != wantStart {
		return domain.Validationf("numeración de facturas ambigua: %q", first)
	}
	return nil
}

// FormatVendorCode código de proveedor VEND-00001.
func FormatVendorCode(seq int64) string {
	return fmt.Sprintf("%s-%05d", vendorCodePrefix, seq)
}
