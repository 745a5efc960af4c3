package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	domainbilling "github.com/jhoicas/pos-api/internal/domain/billing"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// defaultPaymentTerms condición de pago cuando no se indica otra.
const defaultPaymentTerms = "Cash"

// SupplierUseCase alta, listado y saldo pendiente de proveedores; el código sale de la secuencia "vendor".
type SupplierUseCase struct {
	repo      repository.SupplierRepository
	sequences *SequenceGenerator
	timeout   time.Duration
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, sequences *SequenceGenerator, timeout time.Duration) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, sequences: sequences, timeout: timeout}
}

// Create registra un proveedor con código VEND-xxxxx.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validationf("nombre de proveedor requerido")
	}
	seq, err := uc.sequences.NextSequence(ctx, entity.SequenceVendor)
	if err != nil {
		return nil, err
	}
	terms := strings.TrimSpace(in.PaymentTerms)
	if terms == "" {
		terms = defaultPaymentTerms
	}
	now := time.Now().UTC()
	supplier := &entity.Supplier{
		ID:                 uuid.New().String(),
		Code:               domainbilling.FormatVendorCode(seq),
		Name:               name,
		Phone:              in.Phone,
		Email:              in.Email,
		Address:            in.Address,
		PaymentTerms:       terms,
		OutstandingBalance: decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	if err := uc.repo.Create(ctx, supplier); err != nil {
		return nil, storageErr("guardar proveedor", err)
	}
	return toSupplierResponse(supplier), nil
}

// List lista proveedores, más recientes primero.
func (uc *SupplierUseCase) List(ctx context.Context, limit, offset int) ([]*dto.SupplierResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, storageErr("listar proveedores", err)
	}
	out := make([]*dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSupplierResponse(s))
	}
	return out, nil
}

// GetByID obtiene un proveedor; ErrNotFound si no existe.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("obtener proveedor", err)
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierResponse(s), nil
}

// AdjustOutstanding registra una compra a crédito (positivo) o un pago al proveedor (negativo).
func (uc *SupplierUseCase) AdjustOutstanding(ctx context.Context, id string, in dto.BalanceAdjustmentRequest) (*dto.SupplierResponse, error) {
	if err := domainbilling.ValidateBalanceAdjustment(in.Amount); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	s, err := uc.repo.AdjustOutstanding(ctx, id, in.Amount)
	if err != nil {
		return nil, storageErr("ajustar saldo de proveedor", err)
	}
	return toSupplierResponse(s), nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:                 s.ID,
		Code:               s.Code,
		Name:               s.Name,
		Phone:              s.Phone,
		Email:              s.Email,
		Address:            s.Address,
		PaymentTerms:       s.PaymentTerms,
		OutstandingBalance: s.OutstandingBalance,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
