package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, invoice_number, sequence, created_at, subtotal, discount_total, tax_total,
	net_total, payment_method, amount_received, change_returned, created_by`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var method string
	var createdBy *string
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Sequence, &inv.CreatedAt, &inv.Subtotal, &inv.DiscountTotal,
		&inv.TaxTotal, &inv.NetTotal, &method, &inv.AmountReceived, &inv.ChangeReturned, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	inv.PaymentMethod = entity.PaymentMethod(method)
	inv.CreatedBy = emptyIfNull(createdBy)
	return &inv, nil
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.Number, invoice.Sequence, invoice.CreatedAt,
		invoice.Subtotal, invoice.DiscountTotal, invoice.TaxTotal, invoice.NetTotal,
		string(invoice.PaymentMethod), invoice.AmountReceived, invoice.ChangeReturned,
		nullIfEmpty(invoice.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de la factura.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, position, product_id, name, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.Position, line.ProductID, line.Name,
		line.Quantity, line.UnitPrice, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene la factura con sus líneas.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv.Lines, err = r.GetLines(ctx, id); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetLines devuelve las líneas en orden de posición.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	byInvoice, err := r.linesFor(ctx, []string{invoiceID})
	if err != nil {
		return nil, err
	}
	return byInvoice[invoiceID], nil
}

func (r *InvoiceRepo) linesFor(ctx context.Context, ids []string) (map[string][]entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, position, product_id, name, quantity, unit_price, line_total
		FROM invoice_lines WHERE invoice_id = ANY($1) ORDER BY invoice_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.InvoiceLine, len(ids))
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Position, &l.ProductID, &l.Name,
			&l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		out[l.InvoiceID] = append(out[l.InvoiceID], l)
	}
	return out, rows.Err()
}

// List devuelve facturas con sus líneas, más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	where, args := invoiceWhere(f.From, f.To)
	if f.PaymentMethod != "" {
		args = append(args, string(f.PaymentMethod))
		where = append(where, fmt.Sprintf("payment_method = $%d", len(args)))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, sequence DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, len(list))
	for i, inv := range list {
		ids[i] = inv.ID
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range list {
		inv.Lines = lines[inv.ID]
	}
	return list, nil
}

// Summarize totales del período agrupados por medio de pago.
func (r *InvoiceRepo) Summarize(ctx context.Context, from, to time.Time) (*repository.SalesSummary, error) {
	where, args := invoiceWhere(&from, &to)
	cond := ` WHERE ` + strings.Join(where, " AND ")

	sum := &repository.SalesSummary{}
	err := r.q.QueryRow(ctx, `
		SELECT count(*), COALESCE(sum(subtotal), 0), COALESCE(sum(discount_total), 0),
		       COALESCE(sum(tax_total), 0), COALESCE(sum(net_total), 0)
		FROM invoices`+cond, args...,
	).Scan(&sum.InvoiceCount, &sum.Subtotal, &sum.DiscountTotal, &sum.TaxTotal, &sum.NetTotal)
	if err != nil {
		return nil, fmt.Errorf("summarize invoices: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT payment_method, count(*), COALESCE(sum(net_total), 0)
		FROM invoices`+cond+` GROUP BY payment_method`, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize by payment method: %w", err)
	}
	defer rows.Close()
	byMethod := make(map[entity.PaymentMethod]repository.PaymentMethodSummary)
	for rows.Next() {
		var pm repository.PaymentMethodSummary
		var method string
		if err := rows.Scan(&method, &pm.InvoiceCount, &pm.NetTotal); err != nil {
			return nil, fmt.Errorf("scan payment summary: %w", err)
		}
		pm.PaymentMethod = entity.PaymentMethod(method)
		byMethod[pm.PaymentMethod] = pm
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summarize by payment method: %w", err)
	}
	for _, m := range entity.PaymentMethods {
		if pm, ok := byMethod[m]; ok {
			sum.ByPayment = append(sum.ByPayment, pm)
		}
	}
	return sum, nil
}

func invoiceWhere(from, to *time.Time) ([]string, []any) {
	var where []string
	var args []any
	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	return where, args
}
