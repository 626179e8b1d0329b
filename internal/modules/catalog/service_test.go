package catalog_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/pos-backend/internal/modules/catalog"
)

func setupService(t *testing.T) catalog.Service {
	t.Helper()
	return catalog.NewService(setupRepo(t))
}

func TestCreateProduct_DuplicateSKUConflicts(t *testing.T) {
	svc := setupService(t)

	_, err := svc.CreateProduct(context.Background(), catalog.CreateProductRequest{
		Name: "Bootleg Cola", Price: 1.00, SKU: "BEV001",
	})
	assert.ErrorIs(t, err, catalog.ErrConflict)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, catalog.CreateProductRequest{SKU: "NEW001", Price: 1})
	assert.ErrorIs(t, err, catalog.ErrValidation)

	_, err = svc.CreateProduct(ctx, catalog.CreateProductRequest{Name: "No SKU", Price: 1})
	assert.ErrorIs(t, err, catalog.ErrValidation)

	_, err = svc.CreateProduct(ctx, catalog.CreateProductRequest{Name: "Bad Price", SKU: "NEW002", Price: -1})
	assert.ErrorIs(t, err, catalog.ErrValidation)

	unknown := int64(9999)
	_, err = svc.CreateProduct(ctx, catalog.CreateProductRequest{
		Name: "Orphan", SKU: "NEW003", Price: 1, CategoryID: &unknown,
	})
	assert.ErrorIs(t, err, catalog.ErrValidation)
}

func TestCreateProduct_ReturnsJoinedCategory(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	var dairy int64
	for _, c := range categories {
		if c.Name == "Dairy" {
			dairy = c.ID
		}
	}
	require.NotZero(t, dairy)

	p, err := svc.CreateProduct(ctx, catalog.CreateProductRequest{
		Name: "Yogurt", Price: 1.80, SKU: "DRY099", CategoryID: &dairy, Stock: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dairy", p.Category)
	assert.Equal(t, 20, p.Stock)
}

func TestUpdateProduct_EmptyPatchReturnsCurrentRow(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	products, err := svc.SearchProducts(ctx, "BEV001")
	require.NoError(t, err)
	require.Len(t, products, 1)

	p, err := svc.UpdateProduct(ctx, products[0].ID, catalog.UpdateProductRequest{})
	require.NoError(t, err)
	assert.Equal(t, products[0], p)
}

func TestUpdateProduct_SKUCollisionConflicts(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	products, err := svc.SearchProducts(ctx, "BEV002")
	require.NoError(t, err)
	require.Len(t, products, 1)

	taken := "BEV001"
	_, err = svc.UpdateProduct(ctx, products[0].ID, catalog.UpdateProductRequest{SKU: &taken})
	assert.ErrorIs(t, err, catalog.ErrConflict)
}

func TestUpdateProduct_NullCategoryClearsAssignment(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	products, err := svc.SearchProducts(ctx, "BEV001")
	require.NoError(t, err)
	require.NotNil(t, products[0].CategoryID)

	p, err := svc.UpdateProduct(ctx, products[0].ID, catalog.UpdateProductRequest{
		CategoryID: json.RawMessage("null"),
	})
	require.NoError(t, err)
	assert.Nil(t, p.CategoryID)
	assert.Empty(t, p.Category)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc := setupService(t)
	name := "Ghost"
	_, err := svc.UpdateProduct(context.Background(), 9999, catalog.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCreateCategory_DuplicateNameConflicts(t *testing.T) {
	svc := setupService(t)

	_, err := svc.CreateCategory(context.Background(), catalog.CreateCategoryRequest{Name: "Beverages"})
	assert.ErrorIs(t, err, catalog.ErrConflict)
}

func TestDeleteCategory_RefusedWhileReferenced(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	var beverages, groceries int64
	for _, c := range categories {
		switch c.Name {
		case "Beverages":
			beverages = c.ID
		case "Groceries":
			groceries = c.ID
		}
	}

	err = svc.DeleteCategory(ctx, beverages)
	require.ErrorIs(t, err, catalog.ErrConflict)
	assert.Contains(t, err.Error(), "3 product(s)")

	// A category with no products deletes cleanly.
	require.NoError(t, svc.DeleteCategory(ctx, groceries))
	_, err = svc.GetCategory(ctx, groceries)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	svc := setupService(t)
	err := svc.DeleteCategory(context.Background(), 9999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateCategory_EmptyPatchIsNoOp(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)

	c, err := svc.UpdateCategory(ctx, categories[0].ID, catalog.UpdateCategoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, categories[0], c)
}
