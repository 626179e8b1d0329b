package catalog

import "encoding/json"

// Category groups products for display and filtering.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Product is a sellable catalog entry. Category carries the joined category
// name for display; CategoryID stays the source of truth.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	CategoryID  *int64  `json:"category_id"`
	Category    string  `json:"category,omitempty"`
	SKU         string  `json:"sku"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// CreateProductRequest holds the data for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	CategoryID  *int64  `json:"category_id"`
	SKU         string  `json:"sku"`
	Image       string  `json:"image,omitempty"`
	Description string  `json:"description,omitempty"`
	Stock       int     `json:"stock,omitempty"`
}

// UpdateProductRequest is a partial patch: absent fields are left alone.
// CategoryID distinguishes absent from an explicit null, which clears the
// category assignment.
type UpdateProductRequest struct {
	Name        *string         `json:"name"`
	Price       *float64        `json:"price"`
	CategoryID  json.RawMessage `json:"category_id"`
	SKU         *string         `json:"sku"`
	Image       *string         `json:"image"`
	Description *string         `json:"description"`
	Stock       *int            `json:"stock"`
}

// CreateCategoryRequest holds the data for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateCategoryRequest is a partial patch over a category's mutable fields.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ProductPatch lists the columns a partial product update touches. Nil
// pointers leave the column alone; SetCategory with a nil CategoryID clears
// the foreign key.
type ProductPatch struct {
	Name        *string
	Price       *float64
	CategoryID  *int64
	SetCategory bool
	SKU         *string
	Image       *string
	Description *string
	Stock       *int
}

// Empty reports whether the patch touches no columns.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && !p.SetCategory && p.SKU == nil &&
		p.Image == nil && p.Description == nil && p.Stock == nil
}

// CategoryPatch lists the columns a partial category update touches.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// Empty reports whether the patch touches no columns.
func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Description == nil
}
