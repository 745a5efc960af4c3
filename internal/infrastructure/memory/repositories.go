package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/billing"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository         = (*ProductRepo)(nil)
	_ repository.InvoiceRepository         = (*InvoiceRepo)(nil)
	_ repository.CounterRepository         = (*CounterRepo)(nil)
	_ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)
	_ repository.SupplierRepository        = (*SupplierRepo)(nil)
	_ repository.CustomerRepository        = (*CustomerRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *txState
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	if err := r.s.check(ctx, ""); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[p.ID] = *p
	id := p.ID
	r.tx.onRollback(func() { delete(r.s.products, id) })
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := r.s.check(ctx, OpProductGet); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		p := p
		list = append(list, &p)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return page(list, limit, offset), nil
}

func (r *ProductRepo) DecrementStock(ctx context.Context, id string, amount int64) (int64, int64, error) {
	if err := r.s.check(ctx, OpProductDecrement); err != nil {
		return 0, 0, err
	}
	if amount <= 0 {
		return 0, 0, fmt.Errorf("decrement stock: %w: %d", domain.ErrInvalidQuantity, amount)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return 0, 0, domain.ErrNotFound
	}
	before := p.Stock
	after := before - amount
	if after < 0 {
		after = 0
	}
	p.Stock = after
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	r.tx.onRollback(func() {
		q := r.s.products[id]
		q.Stock = before
		r.s.products[id] = q
	})
	return before, after, nil
}

// InvoiceRepo facturas en memoria.
type InvoiceRepo struct {
	s  *Store
	tx *txState
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if err := r.s.check(ctx, OpInvoiceCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[inv.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.numbers[inv.Number]; ok {
		return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
	}
	head := *inv
	head.Lines = nil
	r.s.invoices[inv.ID] = head
	r.s.numbers[inv.Number] = inv.ID
	id, number := inv.ID, inv.Number
	r.tx.onRollback(func() {
		delete(r.s.invoices, id)
		delete(r.s.numbers, number)
	})
	return nil
}

func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	if err := r.s.check(ctx, ""); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.invoices[line.InvoiceID]; !ok {
		return fmt.Errorf("insert invoice line: factura %s no existe", line.InvoiceID)
	}
	id := line.InvoiceID
	r.s.lines[id] = append(r.s.lines[id], *line)
	r.tx.onRollback(func() {
		l := r.s.lines[id]
		if len(l) <= 1 {
			delete(r.s.lines, id)
			return
		}
		r.s.lines[id] = l[:len(l)-1]
	})
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	inv.Lines = append([]entity.InvoiceLine(nil), r.s.lines[id]...)
	return &inv, nil
}

func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]entity.InvoiceLine(nil), r.s.lines[invoiceID]...), nil
}

func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	if err := r.s.check(ctx, OpInvoiceList); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	var list []*entity.Invoice
	for id, inv := range r.s.invoices {
		if !matches(inv, f.From, f.To) {
			continue
		}
		if f.PaymentMethod != "" && inv.PaymentMethod != f.PaymentMethod {
			continue
		}
		inv := inv
		inv.Lines = append([]entity.InvoiceLine(nil), r.s.lines[id]...)
		list = append(list, &inv)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Sequence > list[j].Sequence
	})
	return page(list, f.Limit, f.Offset), nil
}

func (r *InvoiceRepo) Summarize(ctx context.Context, from, to time.Time) (*repository.SalesSummary, error) {
	if err := r.s.check(ctx, OpInvoiceList); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := &repository.SalesSummary{}
	byMethod := map[entity.PaymentMethod]*repository.PaymentMethodSummary{}
	for _, inv := range r.s.invoices {
		if !matches(inv, &from, &to) {
			continue
		}
		sum.InvoiceCount++
		sum.Subtotal = sum.Subtotal.Add(inv.Subtotal)
		sum.DiscountTotal = sum.DiscountTotal.Add(inv.DiscountTotal)
		sum.TaxTotal = sum.TaxTotal.Add(inv.TaxTotal)
		sum.NetTotal = sum.NetTotal.Add(inv.NetTotal)
		pm, ok := byMethod[inv.PaymentMethod]
		if !ok {
			pm = &repository.PaymentMethodSummary{PaymentMethod: inv.PaymentMethod, NetTotal: decimal.Zero}
			byMethod[inv.PaymentMethod] = pm
		}
		pm.InvoiceCount++
		pm.NetTotal = pm.NetTotal.Add(inv.NetTotal)
	}
	for _, m := range entity.PaymentMethods {
		if pm, ok := byMethod[m]; ok {
			sum.ByPayment = append(sum.ByPayment, *pm)
		}
	}
	return sum, nil
}

func matches(inv entity.Invoice, from, to *time.Time) bool {
	if from != nil && inv.CreatedAt.Before(*from) {
		return false
	}
	if to != nil && inv.CreatedAt.After(*to) {
		return false
	}
	return true
}

// CounterRepo secuencias en memoria.
type CounterRepo struct {
	s *Store
}

func (r *CounterRepo) Increment(ctx context.Context, name string) (int64, error) {
	if err := r.s.check(ctx, OpCounterIncrement); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[name]++
	return r.s.counters[name], nil
}

// StockAdjustmentRepo marcas de descuento pendientes en memoria.
type StockAdjustmentRepo struct {
	s  *Store
	tx *txState
}

func (r *StockAdjustmentRepo) CreatePending(ctx context.Context, adj *entity.StockAdjustment) error {
	if err := r.s.check(ctx, OpAdjustmentCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.adjustments[adj.InvoiceID]; ok {
		return domain.ErrDuplicate
	}
	a := *adj
	a.Status = entity.StockAdjustmentPending
	r.s.adjustments[a.InvoiceID] = a
	r.tx.onRollback(func() { delete(r.s.adjustments, a.InvoiceID) })
	return nil
}

func (r *StockAdjustmentRepo) GetForUpdate(ctx context.Context, invoiceID string) (*entity.StockAdjustment, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.adjustments[invoiceID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *StockAdjustmentRepo) MarkApplied(ctx context.Context, invoiceID string) error {
	if err := r.s.check(ctx, OpAdjustmentApply); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.adjustments[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	a := prev
	now := time.Now()
	a.Status = entity.StockAdjustmentApplied
	a.AppliedAt = &now
	r.s.adjustments[invoiceID] = a
	r.tx.onRollback(func() { r.s.adjustments[invoiceID] = prev })
	return nil
}

func (r *StockAdjustmentRepo) RecordFailure(ctx context.Context, invoiceID, cause string) error {
	if err := r.s.check(ctx, ""); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.adjustments[invoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	a := prev
	a.Attempts++
	a.LastError = cause
	r.s.adjustments[invoiceID] = a
	r.tx.onRollback(func() { r.s.adjustments[invoiceID] = prev })
	return nil
}

func (r *StockAdjustmentRepo) ListPending(ctx context.Context, limit int) ([]*entity.StockAdjustment, error) {
	if err := r.s.check(ctx, OpAdjustmentList); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	var list []*entity.StockAdjustment
	for _, a := range r.s.adjustments {
		if a.Status != entity.StockAdjustmentPending {
			continue
		}
		a := a
		list = append(list, &a)
	}
	r.s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return page(list, limit, 0), nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	s *Store
}

func (r *SupplierRepo) Create(ctx context.Context, sup *entity.Supplier) error {
	if err := r.s.check(ctx, OpSupplierCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.suppliers {
		if existing.Code == sup.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.suppliers = append(r.s.suppliers, *sup)
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	list := make([]*entity.Supplier, 0, len(r.s.suppliers))
	for i := len(r.s.suppliers) - 1; i >= 0; i-- {
		s := r.s.suppliers[i]
		list = append(list, &s)
	}
	r.s.mu.RUnlock()
	return page(list, limit, offset), nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sup := range r.s.suppliers {
		if sup.ID == id {
			return &sup, nil
		}
	}
	return nil, nil
}

func (r *SupplierRepo) AdjustOutstanding(ctx context.Context, id string, amount decimal.Decimal) (*entity.Supplier, error) {
	if err := r.s.check(ctx, OpBalanceAdjust); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.suppliers {
		if r.s.suppliers[i].ID != id {
			continue
		}
		next, err := billing.ApplyBalanceAdjustment(r.s.suppliers[i].OutstandingBalance, amount)
		if err != nil {
			return nil, err
		}
		r.s.suppliers[i].OutstandingBalance = next
		r.s.suppliers[i].UpdatedAt = time.Now().UTC()
		sup := r.s.suppliers[i]
		return &sup, nil
	}
	return nil, domain.ErrNotFound
}

// CustomerRepo clientes en memoria, en orden de alta.
type CustomerRepo struct {
	s *Store
}

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	if err := r.s.check(ctx, OpCustomerCreate); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.customers {
		if existing.ID == c.ID || existing.Phone == c.Phone {
			return domain.ErrDuplicate
		}
	}
	r.s.customers = append(r.s.customers, *c)
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	if err := r.s.check(ctx, ""); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	list := make([]*entity.Customer, 0, len(r.s.customers))
	for i := len(r.s.customers) - 1; i >= 0; i-- {
		c := r.s.customers[i]
		list = append(list, &c)
	}
	r.s.mu.RUnlock()
	return page(list, limit, offset), nil
}

func (r *CustomerRepo) AdjustCredit(ctx context.Context, id string, amount decimal.Decimal) (*entity.Customer, error) {
	if err := r.s.check(ctx, OpBalanceAdjust); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.customers {
		if r.s.customers[i].ID != id {
			continue
		}
		next, err := billing.ApplyBalanceAdjustment(r.s.customers[i].CreditBalance, amount)
		if err != nil {
			return nil, err
		}
		r.s.customers[i].CreditBalance = next
		r.s.customers[i].UpdatedAt = time.Now().UTC()
		c := r.s.customers[i]
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

// page aplica offset/limit; limit <= 0 = sin límite.
func page[T any](list []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
