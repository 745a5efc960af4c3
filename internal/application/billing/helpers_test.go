package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/billing"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) alerts() []billing.StockAlertEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []billing.StockAlertEvent
	for _, e := range p.events {
		if a, ok := e.event.(billing.StockAlertEvent); ok {
			out = append(out, a)
		}
	}
	return out
}

func (p *recordingPublisher) created() []billing.InvoiceCreatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []billing.InvoiceCreatedEvent
	for _, e := range p.events {
		if c, ok := e.event.(billing.InvoiceCreatedEvent); ok {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	store   *memory.Store
	tx      *memory.TxRunner
	pub     *recordingPublisher
	seq     *billing.SequenceGenerator
	stock   *billing.StockAdjustmentCoordinator
	uc      *billing.InvoiceUseCase
	sweeper *billing.RecoverySweeper
}

func newFixture(t *testing.T, cfg billing.InvoiceConfig) *fixture {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	pub := &recordingPublisher{}
	cfg.InvoiceTopic = "invoice.created"
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	seq := billing.NewSequenceGenerator(store.Counters(), time.Second)
	stock := billing.NewStockAdjustmentCoordinator(tx, store.Invoices(), pub, billing.StockConfig{
		LowStockThreshold: 2,
		AlertTopic:        "stock.alerts",
		Timeout:           time.Second,
	}, logger.Nop())
	uc := billing.NewInvoiceUseCase(tx, store.Products(), store.Invoices(), seq, stock, pub, cfg, logger.Nop())
	sweeper := billing.NewRecoverySweeper(store.StockAdjustments(), stock, billing.RecoveryConfig{
		Retry:   billing.RetryPolicy{Attempts: 1},
		Timeout: time.Second,
	}, logger.Nop())
	return &fixture{store: store, tx: tx, pub: pub, seq: seq, stock: stock, uc: uc, sweeper: sweeper}
}

func (f *fixture) addProduct(t *testing.T, id, name, price string, stock int64) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         name,
		SellingPrice: dec(price),
		Stock:        stock,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}))
}

func (f *fixture) stockOf(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) invoiceCount(t *testing.T) int {
	t.Helper()
	list, err := f.store.Invoices().List(context.Background(), repository.InvoiceFilter{})
	require.NoError(t, err)
	return len(list)
}

func cashRequest(received string, items ...dto.CreateInvoiceItemRequest) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		Items:          items,
		PaymentMethod:  "Cash",
		AmountReceived: dec(received),
		TaxTotal:       decPtr("0"),
	}
}

func item(productID string, qty int64) dto.CreateInvoiceItemRequest {
	return dto.CreateInvoiceItemRequest{ProductID: productID, Quantity: qty}
}
