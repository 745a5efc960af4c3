package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo marcas de descuento de stock en stock_adjustments.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

const adjustmentColumns = `invoice_id, status, attempts, last_error, created_at, applied_at`

func scanAdjustment(row pgx.Row) (*entity.StockAdjustment, error) {
	var a entity.StockAdjustment
	var lastError *string
	if err := row.Scan(&a.InvoiceID, &a.Status, &a.Attempts, &lastError, &a.CreatedAt, &a.AppliedAt); err != nil {
		return nil, err
	}
	a.LastError = emptyIfNull(lastError)
	return &a, nil
}

// CreatePending inserta la marca en PENDING.
func (r *StockAdjustmentRepo) CreatePending(ctx context.Context, adj *entity.StockAdjustment) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO stock_adjustments (invoice_id, status, attempts, created_at) VALUES ($1, $2, 0, $3)`,
		adj.InvoiceID, entity.StockAdjustmentPending, adj.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

// GetForUpdate lee la marca con SELECT ... FOR UPDATE; debe usarse dentro de una tx.
func (r *StockAdjustmentRepo) GetForUpdate(ctx context.Context, invoiceID string) (*entity.StockAdjustment, error) {
	a, err := scanAdjustment(r.q.QueryRow(ctx,
		`SELECT `+adjustmentColumns+` FROM stock_adjustments WHERE invoice_id = $1 FOR UPDATE`, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock adjustment: %w", err)
	}
	return a, nil
}

// MarkApplied pasa la marca a APPLIED.
func (r *StockAdjustmentRepo) MarkApplied(ctx context.Context, invoiceID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_adjustments SET status = $2, applied_at = now() WHERE invoice_id = $1`,
		invoiceID, entity.StockAdjustmentApplied,
	)
	if err != nil {
		return fmt.Errorf("mark stock adjustment applied: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordFailure suma un intento y guarda la causa.
func (r *StockAdjustmentRepo) RecordFailure(ctx context.Context, invoiceID, cause string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_adjustments SET attempts = attempts + 1, last_error = $2 WHERE invoice_id = $1`,
		invoiceID, cause,
	)
	if err != nil {
		return fmt.Errorf("record stock adjustment failure: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPending devuelve las marcas pendientes más antiguas primero.
func (r *StockAdjustmentRepo) ListPending(ctx context.Context, limit int) ([]*entity.StockAdjustment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+adjustmentColumns+` FROM stock_adjustments
		WHERE status = $1 ORDER BY created_at LIMIT $2`,
		entity.StockAdjustmentPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending stock adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
