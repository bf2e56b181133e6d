package repository

import (
	"context"

	"github.com/azizikri/yeoubi-storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CatalogStore interface {
	ListProducts(ctx context.Context, arg ListProductsParams) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, arg ProductParams) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, arg ProductParams) (domain.Product, error)
	SetProductActive(ctx context.Context, id string, active bool) (int64, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)
	ListSections(ctx context.Context) ([]domain.Section, error)
}

type ListProductsParams struct {
	SectionID  *string
	ActiveOnly bool
}

type ProductParams struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	OriginalPrice decimal.NullDecimal
	ImageURL      *string
	Images        []string
	Sizes         []string
	Category      *string
	SectionID     *string
	InstagramURL  *string
	Badge         *string
	IsActive      bool
}

const productColumns = `id, name, description, price, original_price, image_url, images, sizes,
    category, section_id::text, instagram_url, badge, is_active, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.OriginalPrice,
		&p.ImageURL,
		&p.Images,
		&p.Sizes,
		&p.Category,
		&p.SectionID,
		&p.InstagramURL,
		&p.Badge,
		&p.IsActive,
		&p.CreatedAt,
	)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var items []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const listProducts = `SELECT ` + productColumns + `
FROM products
WHERE ($1::uuid IS NULL OR section_id = $1)
  AND (NOT $2 OR is_active = TRUE)
ORDER BY created_at DESC`

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]domain.Product, error) {
	rows, err := q.db.Query(ctx, listProducts, arg.SectionID, arg.ActiveOnly)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

const getProduct = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

func (q *Queries) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const createProduct = `INSERT INTO products (
    name, description, price, original_price, image_url, images, sizes,
    category, section_id, instagram_url, badge, is_active
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + productColumns

func (q *Queries) CreateProduct(ctx context.Context, arg ProductParams) (domain.Product, error) {
	return scanProduct(q.db.QueryRow(ctx, createProduct, productArgs(arg)...))
}

const updateProduct = `UPDATE products SET
    name = $1, description = $2, price = $3, original_price = $4, image_url = $5,
    images = $6, sizes = $7, category = $8, section_id = $9, instagram_url = $10,
    badge = $11, is_active = $12
WHERE id = $13
RETURNING ` + productColumns

func (q *Queries) UpdateProduct(ctx context.Context, id string, arg ProductParams) (domain.Product, error) {
	args := append(productArgs(arg), id)
	return scanProduct(q.db.QueryRow(ctx, updateProduct, args...))
}

func productArgs(arg ProductParams) []any {
	images := arg.Images
	if images == nil {
		images = []string{}
	}
	return []any{
		arg.Name,
		arg.Description,
		arg.Price,
		arg.OriginalPrice,
		arg.ImageURL,
		images,
		arg.Sizes,
		arg.Category,
		arg.SectionID,
		arg.InstagramURL,
		arg.Badge,
		arg.IsActive,
	}
}

const setProductActive = `UPDATE products SET is_active = $2 WHERE id = $1`

func (q *Queries) SetProductActive(ctx context.Context, id string, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setProductActive, id, active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteProduct = `DELETE FROM products WHERE id = $1`

func (q *Queries) DeleteProduct(ctx context.Context, id string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listSections = `SELECT id, name, slug, description, is_coming_soon, display_order, is_active, created_at
FROM sections
WHERE is_active = TRUE
ORDER BY display_order ASC`

func (q *Queries) ListSections(ctx context.Context) ([]domain.Section, error) {
	rows, err := q.db.Query(ctx, listSections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Section
	for rows.Next() {
		var s domain.Section
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Slug,
			&s.Description,
			&s.IsComingSoon,
			&s.DisplayOrder,
			&s.IsActive,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
