package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

// blockingProductRepo no responde hasta que vence el ctx; registra si hubo deadline.
type blockingProductRepo struct {
	repository.ProductRepository
	hadDeadline bool
}

func (r *blockingProductRepo) GetByID(ctx context.Context, _ string) (*entity.Product, error) {
	_, r.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestProductUseCase_TimeoutDeAlmacenamiento(t *testing.T) {
	repo := &blockingProductRepo{}
	uc := usecase.NewProductUseCase(repo, 20*time.Millisecond)

	start := time.Now()
	_, err := uc.GetByID(context.Background(), "p-1")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.True(t, repo.hadDeadline)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProductUseCase_CrearYListar(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(store.Products(), time.Second)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: " A-1 ", Name: "Arroz", SellingPrice: decimal.RequireFromString("2.505"), Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "A-1", p.SKU)
	assert.True(t, p.SellingPrice.Equal(decimal.RequireFromString("2.51")))

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A-1", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, 500, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, dto.MaxPageLimit, list.Page.Limit)

	store.InjectFault(memory.OpProductGet, errors.New("conexión rechazada"), 1)
	_, err = uc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
