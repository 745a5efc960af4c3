// Package memory implementa los puertos de repositorio en memoria. Se usa con
// STORAGE_BACKEND=memory (demo local) y en los tests de casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Operaciones donde se pueden inyectar fallas (InjectFault).
const (
	OpProductGet       = "product.get"
	OpProductDecrement = "product.decrement"
	OpInvoiceCreate    = "invoice.create"
	OpInvoiceList      = "invoice.list"
	OpCounterIncrement = "counter.increment"
	OpAdjustmentCreate = "adjustment.create"
	OpAdjustmentApply  = "adjustment.apply"
	OpAdjustmentList   = "adjustment.list"
	OpSupplierCreate   = "supplier.create"
	OpCustomerCreate   = "customer.create"
	OpBalanceAdjust    = "balance.adjust"
)

type fault struct {
	err       error
	remaining int
}

// txState acumula las operaciones inversas de una transacción en curso.
type txState struct {
	undo []func()
}

func (t *txState) onRollback(f func()) {
	if t != nil {
		t.undo = append(t.undo, f)
	}
}

// Store datos en memoria. Las transacciones se serializan con txMu; cada operación
// individual toma mu.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	products    map[string]entity.Product
	invoices    map[string]entity.Invoice
	numbers     map[string]string
	lines       map[string][]entity.InvoiceLine
	counters    map[string]int64
	adjustments map[string]entity.StockAdjustment
	suppliers   []entity.Supplier
	customers   []entity.Customer

	faultMu sync.Mutex
	faults  map[string]*fault
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]entity.Product),
		invoices:    make(map[string]entity.Invoice),
		numbers:     make(map[string]string),
		lines:       make(map[string][]entity.InvoiceLine),
		counters:    make(map[string]int64),
		adjustments: make(map[string]entity.StockAdjustment),
		faults:      make(map[string]*fault),
	}
}

// InjectFault hace que las próximas `times` llamadas a op fallen con err.
func (s *Store) InjectFault(op string, err error, times int) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = &fault{err: err, remaining: times}
}

func (s *Store) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	f, ok := s.faults[op]
	if !ok || f.remaining == 0 {
		return nil
	}
	f.remaining--
	return f.err
}

// Products, Invoices, Counters, StockAdjustments, Suppliers y Customers devuelven
// repositorios fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{s: s} }
func (s *Store) Counters() *CounterRepo { return &CounterRepo{s: s} }
func (s *Store) StockAdjustments() *StockAdjustmentRepo { return &StockAdjustmentRepo{s: s} }
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s: s} }

// run ejecuta fn serializado con otras transacciones; si fn falla deshace sus cambios.
func (s *Store) run(fn func(tx *txState) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txState{}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}
