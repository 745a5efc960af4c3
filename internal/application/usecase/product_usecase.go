package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// ProductUseCase alta y consulta del catálogo. El stock solo baja con las ventas.
type ProductUseCase struct {
	repo    repository.ProductRepository
	timeout time.Duration
}

// NewProductUseCase construye el caso de uso. timeout limita cada llamada al repositorio;
// <= 0 deja el ctx del caller.
func NewProductUseCase(repo repository.ProductRepository, timeout time.Duration) *ProductUseCase {
	return &ProductUseCase{repo: repo, timeout: timeout}
}

func (uc *ProductUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

// storageErr deja pasar los errores de dominio; el resto (incluido el timeout) es
// ErrStorageUnavailable.
func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStorageUnavailable, err)
}

// Create crea un nuevo producto con su stock inicial.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.Validationf("sku y name son obligatorios")
	}
	if in.SellingPrice.IsNegative() {
		return nil, domain.Validationf("precio de venta negativo")
	}
	if in.Stock < 0 {
		return nil, domain.Validationf("stock inicial negativo")
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          in.SKU,
		Name:         in.Name,
		SellingPrice: in.SellingPrice.Round(2),
		Stock:        in.Stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, storageErr("guardar producto", err)
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("obtener producto", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista el catálogo con paginación.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, storageErr("listar productos", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		SellingPrice: p.SellingPrice,
		Stock:        p.Stock,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
