package billing

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// RecoveryConfig parámetros del barrido.
type RecoveryConfig struct {
	Interval  time.Duration
	BatchSize int
	Retry     RetryPolicy
	Timeout   time.Duration
}

// RecoverySweeper reintenta los descuentos de stock que quedaron PENDING (caída del
// proceso o del almacenamiento entre la confirmación y el descuento).
type RecoverySweeper struct {
	adjustmentRepo repository.StockAdjustmentRepository
	coordinator    *StockAdjustmentCoordinator
	cfg            RecoveryConfig
	log            *logger.Logger
}

// NewRecoverySweeper construye el barrido.
func NewRecoverySweeper(
	adjustmentRepo repository.StockAdjustmentRepository,
	coordinator *StockAdjustmentCoordinator,
	cfg RecoveryConfig,
	log *logger.Logger,
) *RecoverySweeper {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecoverySweeper{
		adjustmentRepo: adjustmentRepo,
		coordinator:    coordinator,
		cfg:            cfg,
		log:            log.Component("recovery"),
	}
}

// SweepOnce aplica las marcas pendientes de un lote. Devuelve cuántas se aplicaron y el
// último error (las demás siguen pendientes para el próximo barrido).
func (s *RecoverySweeper) SweepOnce(ctx context.Context) (int, error) {
	var pending []string
	err := Retry(ctx, s.cfg.Retry, func(ctx context.Context) error {
		ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		list, err := s.adjustmentRepo.ListPending(ctx, s.cfg.BatchSize)
		if err != nil {
			return storageErr("listar marcas pendientes", err)
		}
		pending = pending[:0]
		for _, adj := range list {
			pending = append(pending, adj.InvoiceID)
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Msg("no se pudieron leer las marcas pendientes")
		return 0, err
	}

	applied := 0
	var errs []error
	for _, invoiceID := range pending {
		err := Retry(ctx, s.cfg.Retry, func(ctx context.Context) error {
			return s.coordinator.ApplyForInvoice(ctx, invoiceID)
		})
		if err != nil {
			if errors.Is(err, domain.ErrStorageUnavailable) {
				s.log.Warn().Err(err).Str("invoice_id", invoiceID).Msg("descuento de stock sigue pendiente")
			} else {
				s.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("descuento de stock no aplicable, requiere revisión")
			}
			errs = append(errs, err)
			continue
		}
		applied++
	}
	if len(pending) > 0 {
		s.log.Info().Int("pending", len(pending)).Int("applied", applied).Msg("barrido de stock")
	}
	return applied, errors.Join(errs...)
}

// Run ejecuta un barrido al arrancar y luego cada Interval hasta que ctx termine.
func (s *RecoverySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		_, _ = s.SweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
