package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type sqlRepo struct{ db *sql.DB }

// NewSQLRepository returns a Repository backed by database/sql. The queries
// use $N placeholders and portable SQL, so the same repository serves both the
// embedded SQLite store and PostgreSQL.
func NewSQLRepository(db *sql.DB) Repository { return &sqlRepo{db: db} }

func nowStamp() string { return time.Now().UTC().Format(time.RFC3339) }

const productColumns = `p.id, p.name, p.price, p.category_id, p.sku, p.image, p.description, p.stock, p.created_at, p.updated_at, c.name`

const productSelect = `
	SELECT ` + productColumns + `
	FROM products p
	LEFT JOIN categories c ON p.category_id = c.id`

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var categoryID sql.NullInt64
	var image, description, categoryName sql.NullString
	err := scan(&p.ID, &p.Name, &p.Price, &categoryID, &p.SKU, &image,
		&description, &p.Stock, &p.CreatedAt, &p.UpdatedAt, &categoryName)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	p.Image = image.String
	p.Description = description.String
	p.Category = categoryName.String
	return p, nil
}

func (r *sqlRepo) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return products, nil
}

func (r *sqlRepo) GetAllProducts(ctx context.Context) ([]*Product, error) {
	return r.queryProducts(ctx, productSelect+` ORDER BY p.name ASC`)
}

func (r *sqlRepo) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	row := r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = $1`, id)
	p, err := scanProduct(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *sqlRepo) CreateProduct(ctx context.Context, p *Product) error {
	now := nowStamp()
	p.CreatedAt = now
	p.UpdatedAt = now
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price, category_id, sku, image, description, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		p.Name, p.Price, p.CategoryID, p.SKU, nullable(p.Image),
		nullable(p.Description), p.Stock, now, now).Scan(&p.ID)
	return err
}

func (r *sqlRepo) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) error {
	sets := []string{}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.SetCategory {
		add("category_id", patch.CategoryID)
	}
	if patch.SKU != nil {
		add("sku", *patch.SKU)
	}
	if patch.Image != nil {
		add("image", nullable(*patch.Image))
	}
	if patch.Description != nil {
		add("description", nullable(*patch.Description))
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	add("updated_at", nowStamp())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d`, strings.Join(sets, ", "), n)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(res, "product", id)
}

func (r *sqlRepo) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "product", id)
}

func (r *sqlRepo) SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	term := "%" + strings.ToLower(query) + "%"
	return r.queryProducts(ctx, productSelect+`
		WHERE LOWER(p.name) LIKE $1
		   OR LOWER(p.sku) LIKE $1
		   OR LOWER(COALESCE(p.description, '')) LIKE $1
		ORDER BY p.name ASC`, term)
}

func (r *sqlRepo) GetProductsByCategory(ctx context.Context, categoryID int64) ([]*Product, error) {
	return r.queryProducts(ctx, productSelect+`
		WHERE p.category_id = $1
		ORDER BY p.name ASC`, categoryID)
}

func (r *sqlRepo) CountProductsInCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID).Scan(&count)
	return count, err
}

func scanCategory(scan func(...interface{}) error) (*Category, error) {
	c := &Category{}
	var description sql.NullString
	if err := scan(&c.ID, &c.Name, &description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Description = description.String
	return c, nil
}

func (r *sqlRepo) GetAllCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return categories, nil
}

func (r *sqlRepo) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *sqlRepo) CreateCategory(ctx context.Context, c *Category) error {
	now := nowStamp()
	c.CreatedAt = now
	c.UpdatedAt = now
	return r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id`,
		c.Name, nullable(c.Description), now, now).Scan(&c.ID)
}

func (r *sqlRepo) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) error {
	sets := []string{}
	args := []interface{}{}
	n := 1
	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", n))
		args = append(args, *patch.Name)
		n++
	}
	if patch.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", n))
		args = append(args, nullable(*patch.Description))
		n++
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", n))
	args = append(args, nowStamp())
	n++

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d`, strings.Join(sets, ", "), n)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireRow(res, "category", id)
}

func (r *sqlRepo) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "category", id)
}

// nullable maps "" to NULL so optional text columns stay NULL instead of
// accumulating empty strings.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result, kind string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}
