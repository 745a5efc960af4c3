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
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// CustomerUseCase clientes y su saldo a crédito.
type CustomerUseCase struct {
	repo    repository.CustomerRepository
	timeout time.Duration
	log     *logger.Logger
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, timeout time.Duration, log *logger.Logger) *CustomerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CustomerUseCase{repo: repo, timeout: timeout, log: log}
}

// Create registra un cliente; el teléfono es único.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || phone == "" {
		return nil, domain.Validationf("nombre y teléfono son requeridos")
	}
	now := time.Now().UTC()
	customer := &entity.Customer{
		ID:            uuid.New().String(),
		Name:          name,
		Phone:         phone,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Address:       strings.TrimSpace(in.Address),
		Notes:         in.Notes,
		CreditBalance: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, storageErr("guardar cliente", err)
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente; ErrNotFound si no existe.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("obtener cliente", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(c), nil
}

// List lista clientes, más recientes primero.
func (uc *CustomerUseCase) List(ctx context.Context, limit, offset int) ([]*dto.CustomerResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, storageErr("listar clientes", err)
	}
	out := make([]*dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// AdjustCredit aplica un movimiento al saldo: positivo es una venta fiada, negativo un abono.
func (uc *CustomerUseCase) AdjustCredit(ctx context.Context, id string, in dto.BalanceAdjustmentRequest) (*dto.CustomerResponse, error) {
	if err := domainbilling.ValidateBalanceAdjustment(in.Amount); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, uc.timeout)
	defer cancel()
	c, err := uc.repo.AdjustCredit(ctx, id, in.Amount)
	if err != nil {
		return nil, storageErr("ajustar saldo de cliente", err)
	}
	uc.log.Info().Str("customer_id", c.ID).Str("amount", in.Amount.StringFixed(2)).
		Str("credit_balance", c.CreditBalance.StringFixed(2)).Msg("saldo de cliente ajustado")
	return toCustomerResponse(c), nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		Email:         c.Email,
		Address:       c.Address,
		Notes:         c.Notes,
		CreditBalance: c.CreditBalance,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
