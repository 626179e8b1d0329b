package catalog

import "context"

// Repository defines the interface for catalog data storage.
type Repository interface {
	GetAllProducts(ctx context.Context) ([]*Product, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) error
	DeleteProduct(ctx context.Context, id int64) error
	SearchProducts(ctx context.Context, query string) ([]*Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int64) ([]*Product, error)
	CountProductsInCategory(ctx context.Context, categoryID int64) (int, error)

	GetAllCategories(ctx context.Context) ([]*Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) error
	DeleteCategory(ctx context.Context, id int64) error
}
