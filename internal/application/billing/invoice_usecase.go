package billing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	domainbilling "github.com/jhoicas/pos-api/internal/domain/billing"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// InvoiceConfig parámetros de facturación.
type InvoiceConfig struct {
	Prefix         string
	Start          int64
	TaxPct         decimal.Decimal
	MaxDiscountPct decimal.Decimal
	PaymentMethods []entity.PaymentMethod // habilitados en caja; vacío = todos
	InvoiceTopic   string
	Timeout        time.Duration
}

// InvoiceUseCase confirma ventas y consulta facturas.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	productRepo repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
	sequences   *SequenceGenerator
	stock       *StockAdjustmentCoordinator
	publisher   EventPublisher
	cfg         InvoiceConfig
	log         *logger.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	sequences *SequenceGenerator,
	stock *StockAdjustmentCoordinator,
	publisher EventPublisher,
	cfg InvoiceConfig,
	log *logger.Logger,
) *InvoiceUseCase {
	if cfg.Prefix == "" {
		cfg.Prefix = domainbilling.DefaultInvoicePrefix
	}
	if cfg.Start <= 0 {
		cfg.Start = domainbilling.DefaultInvoiceStart
	}
	if len(cfg.PaymentMethods) == 0 {
		cfg.PaymentMethods = entity.PaymentMethods
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
		sequences:   sequences,
		stock:       stock,
		publisher:   publisher,
		cfg:         cfg,
		log:         log.Component("billing"),
	}
}

// CreateInvoice valida el carrito contra el catálogo, calcula los totales, asigna el
// consecutivo y persiste factura y líneas en una transacción. Después aplica el descuento
// de stock; si esa parte falla la factura queda confirmada y el barrido de recuperación
// completa el descuento.
//
// Los totales que mande el cliente (subtotal, net_total, change_returned, line_total) se
// ignoran.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	method := entity.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if !uc.paymentEnabled(method) {
		return nil, domain.Validationf("medio de pago no aceptado: %q", in.PaymentMethod)
	}
	if len(in.Items) == 0 {
		return nil, domain.Validationf("la factura debe tener al menos una línea")
	}

	// Validar productos, precios y stock (fuera de la tx, solo lectura)
	lines := make([]domainbilling.LineInput, 0, len(in.Items))
	requested := make(map[string]int64, len(in.Items))
	products := make(map[string]*entity.Product, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, domain.Validationf("product_id requerido")
		}
		if item.Quantity <= 0 || item.Quantity > domainbilling.MaxLineQuantity {
			return nil, fmt.Errorf("%w: producto %s, cantidad %d", domain.ErrInvalidQuantity, item.ProductID, item.Quantity)
		}
		product, ok := products[item.ProductID]
		if !ok {
			var err error
			product, err = uc.getProduct(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			products[item.ProductID] = product
		}
		price := product.SellingPrice
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		lines = append(lines, domainbilling.LineInput{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
		if item.Quantity > math.MaxInt64-requested[product.ID] {
			return nil, fmt.Errorf("%w: producto %s, cantidad total fuera de rango", domain.ErrInvalidQuantity, product.ID)
		}
		requested[product.ID] += item.Quantity
	}
	for _, l := range lines {
		p := products[l.ProductID]
		if requested[p.ID] > p.Stock {
			return nil, &domain.OutOfStockError{
				ProductID: p.ID, Name: p.Name, Requested: requested[p.ID], Available: p.Stock,
			}
		}
	}

	tax := domainbilling.ComputeTax(domainbilling.Subtotal(lines), uc.cfg.TaxPct)
	if in.TaxTotal != nil {
		tax = *in.TaxTotal
	}
	policy := domainbilling.Policy{MaxDiscountPct: uc.cfg.MaxDiscountPct}
	totals, err := policy.ComputeTotals(lines, in.DiscountTotal, tax, in.AmountReceived)
	if err != nil {
		return nil, err
	}

	seq, err := uc.sequences.NextSequence(ctx, entity.SequenceInvoice)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	inv := &entity.Invoice{
		ID:             uuid.New().String(),
		Number:         domainbilling.FormatInvoiceNumber(uc.cfg.Prefix, uc.cfg.Start, seq),
		Sequence:       seq,
		CreatedAt:      now,
		Lines:          totals.Lines,
		Subtotal:       totals.Subtotal,
		DiscountTotal:  totals.DiscountTotal,
		TaxTotal:       totals.TaxTotal,
		NetTotal:       totals.NetTotal,
		PaymentMethod:  method,
		AmountReceived: totals.AmountReceived,
		ChangeReturned: totals.ChangeReturned,
		CreatedBy:      userID,
	}
	for i := range inv.Lines {
		inv.Lines[i].ID = uuid.New().String()
		inv.Lines[i].InvoiceID = inv.ID
	}

	txCtx, cancel := withTimeout(ctx, uc.cfg.Timeout)
	err = uc.txRunner.RunBilling(txCtx, func(
		invoiceRepo repository.InvoiceRepository,
		adjustmentRepo repository.StockAdjustmentRepository,
	) error {
		if err := invoiceRepo.Create(txCtx, inv); err != nil {
			return err
		}
		for i := range inv.Lines {
			if err := invoiceRepo.CreateLine(txCtx, &inv.Lines[i]); err != nil {
				return err
			}
		}
		return adjustmentRepo.CreatePending(txCtx, &entity.StockAdjustment{
			InvoiceID: inv.ID,
			Status:    entity.StockAdjustmentPending,
			CreatedAt: now,
		})
	})
	cancel()
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_number", inv.Number).Msg("no se pudo guardar la factura")
		return nil, storageErr("guardar factura", err)
	}

	ev := uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Str("net_total", inv.NetTotal.StringFixed(2)).
		Str("payment_method", string(inv.PaymentMethod))
	if err := uc.stock.ApplyStockDeltas(ctx, inv.ID, inv.Lines); err != nil {
		ev = ev.Bool("stock_pending", true)
	}
	ev.Msg("factura creada")

	uc.publishCreated(ctx, inv)
	return ToInvoiceResponse(inv), nil
}

func (uc *InvoiceUseCase) paymentEnabled(m entity.PaymentMethod) bool {
	if !m.Valid() {
		return false
	}
	for _, enabled := range uc.cfg.PaymentMethods {
		if enabled == m {
			return true
		}
	}
	return false
}

func (uc *InvoiceUseCase) getProduct(ctx context.Context, id string) (*entity.Product, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("leer producto", err)
	}
	if product == nil {
		return nil, domain.Validationf("producto %s no existe", id)
	}
	return product, nil
}

func (uc *InvoiceUseCase) publishCreated(ctx context.Context, inv *entity.Invoice) {
	if uc.publisher == nil {
		return
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	event := InvoiceCreatedEvent{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.Number,
		CreatedAt:     inv.CreatedAt,
		NetTotal:      inv.NetTotal,
		PaymentMethod: string(inv.PaymentMethod),
		Lines:         len(inv.Lines),
	}
	if err := uc.publisher.PublishEvent(ctx, uc.cfg.InvoiceTopic, inv.Number, event); err != nil {
		uc.log.Warn().Err(err).Str("invoice_number", inv.Number).Msg("no se pudo publicar factura creada")
	}
}

// GetInvoice obtiene una factura por ID con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("leer factura", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return ToInvoiceResponse(inv), nil
}

// ListInvoices lista facturas, más recientes primero.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, in dto.InvoiceListRequest) (*dto.InvoiceListResponse, error) {
	in.DefaultPage()
	filter := repository.InvoiceFilter{Limit: in.Limit, Offset: in.Offset}
	if in.From != "" || in.To != "" {
		from, to, err := ParseRange(in.From, in.To, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if in.From != "" {
			filter.From = &from
		}
		if in.To != "" {
			filter.To = &to
		}
	}
	if in.PaymentMethod != "" {
		m := entity.PaymentMethod(in.PaymentMethod)
		if !m.Valid() {
			return nil, domain.Validationf("medio de pago desconocido: %q", in.PaymentMethod)
		}
		filter.PaymentMethod = m
	}

	ctx, cancel := withTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	list, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, storageErr("listar facturas", err)
	}
	out := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, inv := range list {
		out.Items = append(out.Items, *ToInvoiceResponse(inv))
	}
	return out, nil
}

// SalesReport resume las ventas del período [from, to]. from vacío = inicio del día de hoy;
// to vacío = ahora.
func (uc *InvoiceUseCase) SalesReport(ctx context.Context, fromStr, toStr string) (*dto.SalesReportResponse, error) {
	from, to, err := ParseRange(fromStr, toStr, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.Timeout)
	defer cancel()
	sum, err := uc.invoiceRepo.Summarize(ctx, from, to)
	if err != nil {
		return nil, storageErr("reporte de ventas", err)
	}
	out := &dto.SalesReportResponse{
		From:          from,
		To:            to,
		InvoiceCount:  sum.InvoiceCount,
		Subtotal:      sum.Subtotal,
		DiscountTotal: sum.DiscountTotal,
		TaxTotal:      sum.TaxTotal,
		NetTotal:      sum.NetTotal,
		ByPayment:     make([]dto.PaymentMethodTotal, 0, len(sum.ByPayment)),
	}
	for _, p := range sum.ByPayment {
		out.ByPayment = append(out.ByPayment, dto.PaymentMethodTotal{
			PaymentMethod: string(p.PaymentMethod),
			InvoiceCount:  p.InvoiceCount,
			NetTotal:      p.NetTotal,
		})
	}
	return out, nil
}

// ParseRange interpreta un rango de fechas en RFC3339 o YYYY-MM-DD (UTC). Una fecha sin
// hora en "to" incluye el día completo.
func ParseRange(fromStr, toStr string, now time.Time) (from, to time.Time, err error) {
	y, m, d := now.Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to = now
	if fromStr != "" {
		if from, err = parseDate(fromStr, false); err != nil {
			return from, to, err
		}
	}
	if toStr != "" {
		if to, err = parseDate(toStr, true); err != nil {
			return from, to, err
		}
	}
	if to.Before(from) {
		return from, to, domain.Validationf("rango de fechas inválido: from posterior a to")
	}
	return from, to, nil
}

func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.Validationf("fecha inválida %q (use YYYY-MM-DD o RFC3339)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// ToInvoiceResponse convierte la entidad a su representación HTTP.
func ToInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.Number,
		CreatedAt:      inv.CreatedAt,
		Lines:          make([]dto.InvoiceLineResponse, 0, len(inv.Lines)),
		Subtotal:       inv.Subtotal,
		DiscountTotal:  inv.DiscountTotal,
		TaxTotal:       inv.TaxTotal,
		NetTotal:       inv.NetTotal,
		PaymentMethod:  string(inv.PaymentMethod),
		AmountReceived: inv.AmountReceived,
		ChangeReturned: inv.ChangeReturned,
		CreatedBy:      inv.CreatedBy,
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			Position:  l.Position,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return resp
}
