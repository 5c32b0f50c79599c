package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lmartins/retail-pos/pkg/db/models"
	pkgerrors "github.com/lmartins/retail-pos/pkg/errors"
	"github.com/lmartins/retail-pos/pkg/logger"
)

const (
	// BrandlessName is the display name for products whose brand was removed.
	BrandlessName = "Sem marca"

	defaultColor = "Desconhecido"
	defaultImage = "sem-imagem.jpg"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service orchestrates product and brand operations.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// ListProducts returns the whole catalog with brand names resolved. An empty
// catalog is reported as not found, matching the behavior clients rely on.
func (s *Service) ListProducts(ctx context.Context) ([]ProductView, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no products registered")
	}

	brandIDs := make([]uuid.UUID, 0, len(products))
	seen := map[uuid.UUID]bool{}
	for _, product := range products {
		if product.BrandID != nil && !seen[*product.BrandID] {
			seen[*product.BrandID] = true
			brandIDs = append(brandIDs, *product.BrandID)
		}
	}
	brandNames, err := s.repo.BrandNamesByID(ctx, brandIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		name := BrandlessName
		if product.BrandID != nil {
			if resolved, ok := brandNames[*product.BrandID]; ok {
				name = resolved
			}
		}
		views = append(views, ProductView{Product: product, BrandName: name})
	}
	return views, nil
}

// CreateProduct registers a product, filling the catalog defaults for the
// optional fields and keeping the size breakdown consistent with the
// aggregate stock count.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductRequest) (*models.Product, error) {
	brandID, err := uuid.Parse(in.BrandID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brandId must be a valid uuid")
	}
	brand, err := s.repo.FindBrandByID(ctx, brandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown brand")
	}
	if in.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	sizes := make([]models.ProductSize, 0, len(in.Sizes))
	sizeSum := 0
	for _, size := range in.Sizes {
		sizeSum += size.Quantity
		sizes = append(sizes, models.ProductSize{Size: size.Size, Quantity: size.Quantity})
	}

	quantity := 0
	switch {
	case in.Quantity != nil && len(in.Sizes) > 0:
		if sizeSum != *in.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size quantities must sum to the stock quantity").
				WithDetails(map[string]any{"quantity": *in.Quantity, "sizesTotal": sizeSum})
		}
		quantity = *in.Quantity
	case in.Quantity != nil:
		quantity = *in.Quantity
	case len(in.Sizes) > 0:
		quantity = sizeSum
	}

	product := &models.Product{
		Name:      in.Name,
		Code:      in.Code,
		BrandID:   &brandID,
		Color:     valueOrDefault(in.Color, defaultColor),
		Price:     in.Price,
		SalePrice: in.SalePrice,
		Image:     valueOrDefault(in.Image, defaultImage),
		Quantity:  quantity,
		Sizes:     sizes,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "product_id", product.ID.String())
		s.logg.Info(ctx, "catalog.product.created")
	}
	return product, nil
}

// SetStock overwrites a product's aggregate stock count.
func (s *Service) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	rows, err := s.repo.SetStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.repo.FindProductByID(ctx, id)
}

// AdjustStock applies a signed delta to a product's stock, flooring at zero.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*models.Product, error) {
	rows, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.repo.FindProductByID(ctx, id)
}

// ListBrands returns every registered brand.
func (s *Service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.ListBrands(ctx)
}

// CreateBrand registers a brand.
func (s *Service) CreateBrand(ctx context.Context, in BrandRequest) (*models.Brand, error) {
	brand := &models.Brand{Name: in.Name, Phone: in.Phone}
	if err := s.repo.CreateBrand(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// UpdateBrand renames a brand or changes its contact phone.
func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, in BrandRequest) (*models.Brand, error) {
	brand := &models.Brand{ID: id, Name: in.Name, Phone: in.Phone}
	rows, err := s.repo.UpdateBrand(ctx, brand)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	return s.repo.FindBrandByID(ctx, id)
}

// DeleteBrand removes a brand. Deletion is refused while any product still
// references the brand; remove or reassign the products first.
func (s *Service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	count, err := s.repo.CountProductsByBrand(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("brand is referenced by %d product(s)", count))
	}
	rows, err := s.repo.DeleteBrand(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	return nil
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
