package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

const supplierColumns = `id, code, name, phone, email, address, payment_terms, outstanding_balance, created_at, updated_at`

// SupplierRepo implementación de SupplierRepository (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Create persiste un proveedor; el código es único.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO suppliers (`+supplierColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.Code, s.Name, nullIfEmpty(s.Phone), nullIfEmpty(s.Email), nullIfEmpty(s.Address),
		s.PaymentTerms, s.OutstandingBalance, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return s, nil
}

// List lista proveedores, más recientes primero.
func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers ORDER BY created_at DESC, code DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// AdjustOutstanding suma amount a la deuda en un solo UPDATE.
func (r *SupplierRepo) AdjustOutstanding(ctx context.Context, id string, amount decimal.Decimal) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `
		UPDATE suppliers
		SET outstanding_balance = outstanding_balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+supplierColumns, id, amount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isNumericOverflow(err) {
			return nil, domain.Validationf("el saldo resultante excede el máximo permitido")
		}
		return nil, fmt.Errorf("adjust supplier outstanding: %w", err)
	}
	return s, nil
}

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	var phone, email, address *string
	if err := row.Scan(&s.ID, &s.Code, &s.Name, &phone, &email, &address,
		&s.PaymentTerms, &s.OutstandingBalance, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Phone, s.Email, s.Address = emptyIfNull(phone), emptyIfNull(email), emptyIfNull(address)
	return &s, nil
}
