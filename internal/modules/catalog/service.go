package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Service defines catalog business logic: CRUD and queries over products and
// categories with uniqueness and referential-integrity rules enforced as hard
// contracts. Every operation reports one of the package sentinel errors on
// failure and never retries.
type Service interface {
	ListProducts(ctx context.Context) ([]*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SearchProducts(ctx context.Context, query string) ([]*Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]*Product, error)

	ListCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.GetAllProducts(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return p, nil
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.SKU) == "" {
		return nil, fmt.Errorf("%w: sku is required", ErrValidation)
	}
	if req.Price < 0 || math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		return nil, fmt.Errorf("%w: price must be a non-negative amount", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: category %d does not exist", ErrValidation, *req.CategoryID)
			}
			return nil, storeErr(err)
		}
	}

	p := &Product{
		Name:        req.Name,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		SKU:         req.SKU,
		Image:       req.Image,
		Description: req.Description,
		Stock:       req.Stock,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: a product with sku %q already exists", ErrConflict, req.SKU)
		}
		return nil, storeErr(err)
	}
	// Re-read so the response carries the joined category name.
	return s.GetProduct(ctx, p.ID)
}

func (s *service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	patch, err := s.productPatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.GetProduct(ctx, id)
	}
	if err := s.repo.UpdateProduct(ctx, id, patch); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: a product with that sku already exists", ErrConflict)
		}
		return nil, storeErr(err)
	}
	return s.GetProduct(ctx, id)
}

func (s *service) productPatch(ctx context.Context, req UpdateProductRequest) (ProductPatch, error) {
	patch := ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		SKU:         req.SKU,
		Image:       req.Image,
		Description: req.Description,
		Stock:       req.Stock,
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return patch, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.SKU != nil && strings.TrimSpace(*req.SKU) == "" {
		return patch, fmt.Errorf("%w: sku cannot be empty", ErrValidation)
	}
	if req.Price != nil && (*req.Price < 0 || math.IsNaN(*req.Price) || math.IsInf(*req.Price, 0)) {
		return patch, fmt.Errorf("%w: price must be a non-negative amount", ErrValidation)
	}
	if req.Stock != nil && *req.Stock < 0 {
		return patch, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}
	if len(req.CategoryID) > 0 {
		patch.SetCategory = true
		if !bytes.Equal(bytes.TrimSpace(req.CategoryID), []byte("null")) {
			var categoryID int64
			if err := json.Unmarshal(req.CategoryID, &categoryID); err != nil {
				return patch, fmt.Errorf("%w: category_id must be a number or null", ErrValidation)
			}
			if _, err := s.repo.GetCategoryByID(ctx, categoryID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return patch, fmt.Errorf("%w: category %d does not exist", ErrValidation, categoryID)
				}
				return patch, storeErr(err)
			}
			patch.CategoryID = &categoryID
		}
	}
	return patch, nil
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *service) SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	products, err := s.repo.SearchProducts(ctx, query)
	if err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

func (s *service) ProductsByCategory(ctx context.Context, categoryID int64) ([]*Product, error) {
	products, err := s.repo.GetProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, storeErr(err)
	}
	return products, nil
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	categories, err := s.repo.GetAllCategories(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return categories, nil
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	c, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return c, nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	c := &Category{Name: req.Name, Description: req.Description}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: a category named %q already exists", ErrConflict, req.Name)
		}
		return nil, storeErr(err)
	}
	return c, nil
}

func (s *service) UpdateCategory(ctx context.Context, id int64, req UpdateCategoryRequest) (*Category, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	patch := CategoryPatch{Name: req.Name, Description: req.Description}
	if patch.Empty() {
		return s.GetCategory(ctx, id)
	}
	if err := s.repo.UpdateCategory(ctx, id, patch); err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: a category with that name already exists", ErrConflict)
		}
		return nil, storeErr(err)
	}
	return s.GetCategory(ctx, id)
}

func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	count, err := s.repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if count > 0 {
		return fmt.Errorf("%w: cannot delete category: %d product(s) are using it", ErrConflict, count)
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return storeErr(err)
	}
	return nil
}

// storeErr passes taxonomy errors through and buckets everything else as a
// store failure.
func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
