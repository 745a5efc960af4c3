package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/billing"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	domainbilling "github.com/jhoicas/pos-api/internal/domain/billing"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// CreateInvoice: camino feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_EscenarioCaja(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Arroz 1kg", "100", 10)
	f.addProduct(t, "p2", "Azúcar 1kg", "50", 10)

	req := dto.CreateInvoiceRequest{
		Items:          []dto.CreateInvoiceItemRequest{item("p1", 2), item("p2", 1)},
		DiscountTotal:  dec("10"),
		TaxTotal:       decPtr("5"),
		PaymentMethod:  "Cash",
		AmountReceived: dec("300"),
	}
	inv, err := f.uc.CreateInvoice(context.Background(), "cajero-1", req)
	require.NoError(t, err)

	assert.Equal(t, "INV-1001", inv.InvoiceNumber)
	assert.True(t, inv.Subtotal.Equal(dec("250")), "subtotal=%s", inv.Subtotal)
	assert.True(t, inv.NetTotal.Equal(dec("245")), "net=%s", inv.NetTotal)
	assert.True(t, inv.ChangeReturned.Equal(dec("55")), "change=%s", inv.ChangeReturned)
	assert.Equal(t, "cajero-1", inv.CreatedBy)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, "Arroz 1kg", inv.Lines[0].Name)
	assert.True(t, inv.Lines[0].LineTotal.Equal(dec("200")))

	assert.Equal(t, int64(8), f.stockOf(t, "p1"))
	assert.Equal(t, int64(9), f.stockOf(t, "p2"))

	adj, err := f.store.StockAdjustments().GetForUpdate(context.Background(), inv.ID)
	require.NoError(t, err)
	require.NotNil(t, adj)
	assert.Equal(t, entity.StockAdjustmentApplied, adj.Status)

	created := f.pub.created()
	require.Len(t, created, 1)
	assert.Equal(t, "INV-1001", created[0].InvoiceNumber)
}

func TestCreateInvoice_IgnoraTotalesDelCliente(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Pan", "2.50", 10)

	it := item("p1", 4)
	it.LineTotal = decPtr("1")
	req := cashRequest("20", it)
	req.Subtotal = decPtr("1")
	req.NetTotal = decPtr("1")
	req.ChangeReturned = decPtr("999")

	inv, err := f.uc.CreateInvoice(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.True(t, inv.Lines[0].LineTotal.Equal(dec("10")))
	assert.True(t, inv.Subtotal.Equal(dec("10")))
	assert.True(t, inv.NetTotal.Equal(dec("10")))
	assert.True(t, inv.ChangeReturned.Equal(dec("10")))
}

func TestCreateInvoice_PrecioDelCatalogoONegociado(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Café", "12", 10)

	it := item("p1", 1)
	it.UnitPrice = decPtr("10")
	inv, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("50", it, item("p1", 1)))
	require.NoError(t, err)
	assert.True(t, inv.Lines[0].UnitPrice.Equal(dec("10")))
	assert.True(t, inv.Lines[1].UnitPrice.Equal(dec("12")))
	assert.True(t, inv.Subtotal.Equal(dec("22")))
}

func TestCreateInvoice_ImpuestoConfigurado(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{TaxPct: dec("5")})
	f.addProduct(t, "p1", "Aceite", "100", 10)

	req := cashRequest("500", item("p1", 2))
	req.TaxTotal = nil
	inv, err := f.uc.CreateInvoice(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.True(t, inv.TaxTotal.Equal(dec("10")), "tax=%s", inv.TaxTotal)
	assert.True(t, inv.NetTotal.Equal(dec("210")))
}

func TestCreateInvoice_PrefijoYNumeroInicialConfigurables(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{Prefix: "POS", Start: 1})
	f.addProduct(t, "p1", "Sal", "1", 10)

	inv, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("1", item("p1", 1)))
	require.NoError(t, err)
	assert.Equal(t, "POS-1", inv.InvoiceNumber)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateInvoice: rechazos sin estado parcial
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_SinStockNoDejaEstado(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Leche", "3", 3)

	_, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("100", item("p1", 5)))
	require.ErrorIs(t, err, domain.ErrOutOfStock)
	var oos *domain.OutOfStockError
	require.True(t, errors.As(err, &oos))
	assert.Equal(t, "Leche", oos.Name)
	assert.Equal(t, int64(5), oos.Requested)
	assert.Equal(t, int64(3), oos.Available)

	assert.Equal(t, 0, f.invoiceCount(t))
	assert.Equal(t, int64(3), f.stockOf(t, "p1"))
	n, err := f.seq.NextSequence(context.Background(), entity.SequenceInvoice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "el rechazo no consume consecutivo")
}

func TestCreateInvoice_StockSeSumaPorProducto(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Huevos", "1", 3)

	_, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("100", item("p1", 2), item("p1", 2)))
	require.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, int64(3), f.stockOf(t, "p1"))
}

// Dos líneas de 2^62 del mismo producto suman más que int64: la suma no puede dar la
// vuelta y pasar el control de stock.
func TestCreateInvoice_CantidadesQueDesbordanSeRechazan(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Azúcar", "1", 5)

	big := dto.CreateInvoiceItemRequest{ProductID: "p1", Quantity: 1 << 62, UnitPrice: decPtr("0")}
	req := dto.CreateInvoiceRequest{
		Items:          []dto.CreateInvoiceItemRequest{big, big},
		PaymentMethod:  "Cash",
		AmountReceived: dec("0"),
		TaxTotal:       decPtr("0"),
	}
	_, err := f.uc.CreateInvoice(context.Background(), "u1", req)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.NotErrorIs(t, err, domain.ErrStorageUnavailable)

	assert.Equal(t, 0, f.invoiceCount(t))
	assert.Equal(t, int64(5), f.stockOf(t, "p1"))
	pending, err := f.store.StockAdjustments().ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	inv, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("5", item("p1", 5)))
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", inv.InvoiceNumber, "el rechazo no consume consecutivo")
	assert.Equal(t, int64(0), f.stockOf(t, "p1"))
}

func TestCreateInvoice_PagoInsuficienteNoDejaEstado(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Arroz", "100", 10)
	f.addProduct(t, "p2", "Azúcar", "50", 10)

	req := dto.CreateInvoiceRequest{
		Items:          []dto.CreateInvoiceItemRequest{item("p1", 2), item("p2", 1)},
		DiscountTotal:  dec("10"),
		TaxTotal:       decPtr("5"),
		PaymentMethod:  "Card",
		AmountReceived: dec("200"),
	}
	_, err := f.uc.CreateInvoice(context.Background(), "u1", req)
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)
	assert.Equal(t, 0, f.invoiceCount(t))
	assert.Equal(t, int64(10), f.stockOf(t, "p1"))
	assert.Equal(t, int64(10), f.stockOf(t, "p2"))
	assert.Empty(t, f.pub.created())
}

func TestCreateInvoice_Validaciones(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{MaxDiscountPct: dec("20")})
	f.addProduct(t, "p1", "Jabón", "10", 100)

	withDiscount := func(d string) dto.CreateInvoiceRequest {
		r := cashRequest("1000", item("p1", 10))
		r.DiscountTotal = dec(d)
		return r
	}
	withMethod := func(m string) dto.CreateInvoiceRequest {
		r := cashRequest("1000", item("p1", 1))
		r.PaymentMethod = m
		return r
	}
	cases := []struct {
		name string
		req  dto.CreateInvoiceRequest
		want error
	}{
		{"sin medio de pago", withMethod(""), domain.ErrValidation},
		{"medio de pago fuera del enum", withMethod("Bitcoin"), domain.ErrValidation},
		{"sin líneas", cashRequest("10"), domain.ErrValidation},
		{"producto inexistente", cashRequest("10", item("nope", 1)), domain.ErrValidation},
		{"sin product_id", cashRequest("10", item("", 1)), domain.ErrValidation},
		{"cantidad cero", cashRequest("10", item("p1", 0)), domain.ErrInvalidQuantity},
		{"cantidad negativa", cashRequest("10", item("p1", -2)), domain.ErrInvalidQuantity},
		{"descuento mayor al subtotal", withDiscount("100.01"), domain.ErrInvalidDiscount},
		{"descuento sobre el tope", withDiscount("20.01"), domain.ErrInvalidDiscount},
		{"descuento negativo", withDiscount("-1"), domain.ErrInvalidDiscount},
		{"descuento con fracción de centavo", withDiscount("0.005"), domain.ErrValidation},
		{"cantidad sobre el tope", cashRequest("10", item("p1", domainbilling.MaxLineQuantity+1)), domain.ErrInvalidQuantity},
		{"precio con fracción de centavo", func() dto.CreateInvoiceRequest {
			r := cashRequest("1000", item("p1", 3))
			r.Items[0].UnitPrice = decPtr("0.335")
			return r
		}(), domain.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.CreateInvoice(context.Background(), "u1", tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, f.invoiceCount(t))
	assert.Equal(t, int64(100), f.stockOf(t, "p1"))
}

func TestCreateInvoice_MedioDePagoDeshabilitado(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{PaymentMethods: []entity.PaymentMethod{entity.PaymentCash}})
	f.addProduct(t, "p1", "Té", "5", 10)

	req := cashRequest("5", item("p1", 1))
	req.PaymentMethod = "JazzCash"
	_, err := f.uc.CreateInvoice(context.Background(), "u1", req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y fallas del almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateInvoice_DosConcurrentesNumerosConsecutivos(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Agua", "1", 10)

	numbers := createConcurrently(t, f, 2)
	assert.Equal(t, []string{"INV-1001", "INV-1002"}, numbers)
}

func TestCreateInvoice_NConcurrentesNumerosUnicos(t *testing.T) {
	const n = 50
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Agua", "1", n)

	numbers := createConcurrently(t, f, n)
	want := make([]string, 0, n)
	for i := 0; i < n; i++ {
		want = append(want, fmt.Sprintf("INV-%d", 1001+i))
	}
	sort.Strings(want)
	assert.Equal(t, want, numbers)
	assert.Equal(t, int64(0), f.stockOf(t, "p1"))
}

func createConcurrently(t *testing.T, f *fixture, n int) []string {
	t.Helper()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("1", item("p1", 1)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, inv.InvoiceNumber)
		}()
	}
	wg.Wait()
	require.Empty(t, errs)
	sort.Strings(numbers)
	return numbers
}

func TestCreateInvoice_FallaAlGuardarEsStorageUnavailable(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Fideos", "4", 10)
	f.store.InjectFault(memory.OpAdjustmentCreate, errors.New("conexión perdida"), 1)

	_, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("10", item("p1", 1)))
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 0, f.invoiceCount(t), "la factura se revierte con la marca")
	assert.Equal(t, int64(10), f.stockOf(t, "p1"))

	// El consecutivo consumido queda como hueco.
	inv, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("10", item("p1", 1)))
	require.NoError(t, err)
	assert.Equal(t, "INV-1002", inv.InvoiceNumber)
}

func TestCreateInvoice_ContadorCaido(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Fideos", "4", 10)
	f.store.InjectFault(memory.OpCounterIncrement, errors.New("timeout"), 1)

	_, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("10", item("p1", 1)))
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 0, f.invoiceCount(t))
}

func TestCreateInvoice_DescuentoDeStockFallidoLoCompletaElBarrido(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Yerba", "8", 10)
	f.store.InjectFault(memory.OpProductDecrement, errors.New("conexión perdida"), 1)

	inv, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("30", item("p1", 3)))
	require.NoError(t, err, "la factura queda confirmada")
	assert.Equal(t, int64(10), f.stockOf(t, "p1"))

	adj, err := f.store.StockAdjustments().GetForUpdate(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StockAdjustmentPending, adj.Status)
	assert.Equal(t, 1, adj.Attempts)
	assert.NotEmpty(t, adj.LastError)

	applied, err := f.sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, int64(7), f.stockOf(t, "p1"))

	applied, err = f.sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.Equal(t, int64(7), f.stockOf(t, "p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestGetInvoice(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Galletas", "3.33", 10)

	created, err := f.uc.CreateInvoice(context.Background(), "u1", cashRequest("10", item("p1", 3)))
	require.NoError(t, err)

	got, err := f.uc.GetInvoice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.InvoiceNumber, got.InvoiceNumber)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].LineTotal.Equal(dec("9.99")))

	_, err = f.uc.GetInvoice(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListInvoicesYReporte(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})
	f.addProduct(t, "p1", "Jugo", "10", 100)
	ctx := context.Background()

	_, err := f.uc.CreateInvoice(ctx, "u1", cashRequest("100", item("p1", 2)))
	require.NoError(t, err)
	card := cashRequest("100", item("p1", 5))
	card.PaymentMethod = "Card"
	card.DiscountTotal = dec("5")
	_, err = f.uc.CreateInvoice(ctx, "u1", card)
	require.NoError(t, err)

	all, err := f.uc.ListInvoices(ctx, dto.InvoiceListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "INV-1002", all.Items[0].InvoiceNumber, "más recientes primero")
	assert.Equal(t, 20, all.Page.Limit)

	onlyCard, err := f.uc.ListInvoices(ctx, dto.InvoiceListRequest{PaymentMethod: "Card"})
	require.NoError(t, err)
	require.Len(t, onlyCard.Items, 1)
	assert.Equal(t, "Card", onlyCard.Items[0].PaymentMethod)

	past, err := f.uc.ListInvoices(ctx, dto.InvoiceListRequest{From: "2000-01-01", To: "2000-01-31"})
	require.NoError(t, err)
	assert.Empty(t, past.Items)

	report, err := f.uc.SalesReport(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.InvoiceCount)
	assert.True(t, report.Subtotal.Equal(dec("70")))
	assert.True(t, report.DiscountTotal.Equal(dec("5")))
	assert.True(t, report.NetTotal.Equal(dec("65")))
	require.Len(t, report.ByPayment, 2)
	assert.Equal(t, "Cash", report.ByPayment[0].PaymentMethod)
	assert.True(t, report.ByPayment[1].NetTotal.Equal(dec("45")))
}

func TestListInvoices_FiltrosInvalidos(t *testing.T) {
	f := newFixture(t, billing.InvoiceConfig{})

	_, err := f.uc.ListInvoices(context.Background(), dto.InvoiceListRequest{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.uc.ListInvoices(context.Background(), dto.InvoiceListRequest{PaymentMethod: "Cheque"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.uc.SalesReport(context.Background(), "2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
