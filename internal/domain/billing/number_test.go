package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/billing"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-1001", billing.FormatInvoiceNumber("INV", 1001, 1))
	assert.Equal(t, "INV-1002", billing.FormatInvoiceNumber("INV", 1001, 2))
	assert.Equal(t, "POS-1", billing.FormatInvoiceNumber("POS", 1, 1))
	assert.Equal(t, "INV-1001", billing.FormatInvoiceNumber("", 0, 1), "valores por defecto")
}

func TestParseInvoiceNumber(t *testing.T) {
	prefix, n, err := billing.ParseInvoiceNumber("INV-1042")
	require.NoError(t, err)
	assert.Equal(t, "INV", prefix)
	assert.Equal(t, int64(1042), n)

	prefix, n, err = billing.ParseInvoiceNumber("CAJA-2-77")
	require.NoError(t, err)
	assert.Equal(t, "CAJA-2", prefix)
	assert.Equal(t, int64(77), n)

	for _, bad := range []string{"", "INV", "INV-", "-12", "INV-abc", "INV-0"} {
		_, _, err := billing.ParseInvoiceNumber(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateInvoiceNumbering(t *testing.T) {
	assert.NoError(t, billing.ValidateInvoiceNumbering("INV", 1001))
	assert.NoError(t, billing.ValidateInvoiceNumbering("CAJA-2", 1))
	assert.NoError(t, billing.ValidateInvoiceNumbering("", 0), "valores por defecto")

	for _, prefix := range []string{"INV-", " INV", "IN V", "INV\t"} {
		err := billing.ValidateInvoiceNumbering(prefix, 1001)
		assert.ErrorIs(t, err, domain.ErrValidation, prefix)
	}
}

func TestFormatVendorCode(t *testing.T) {
	assert.Equal(t, "VEND-00001", billing.FormatVendorCode(1))
	assert.Equal(t, "VEND-12345", billing.FormatVendorCode(12345))
	assert.Equal(t, "VEND-123456", billing.FormatVendorCode(123456))
}
