package store

import (
	"context"

	"github.com/lib/pq"
	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
	"github.com/safar/go-market-server/internal/query"
)

// MaxPageSize caps product listing before parameters ever reach the
// evaluator; the evaluator itself performs no clamping.
const (
	MaxPageSize     = 50
	DefaultPageSize = 20
)

// ProductParams carries catalog filter, sort and paging input.
type ProductParams struct {
	Search     string
	BrandID    int64
	CategoryID int64
	Sort       string
	Page       int
	PageSize   int
}

func (p *ProductParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

func (p ProductParams) filters(spec *query.Spec) *query.Spec {
	if p.Search != "" {
		spec.Where("name", query.OpILike, "%"+p.Search+"%")
	}
	if p.BrandID > 0 {
		spec.Where("brand_id", query.OpEq, p.BrandID)
	}
	if p.CategoryID > 0 {
		spec.Where("category_id", query.OpEq, p.CategoryID)
	}
	return spec
}

func (p ProductParams) spec() *query.Spec {
	spec := p.filters(query.New()).
		Include("brand").
		Include("category").
		Page((p.Page-1)*p.PageSize, p.PageSize)

	switch p.Sort {
	case "nameDesc":
		spec.OrderByDesc("name")
	case "priceAsc":
		spec.OrderBy("price")
	case "priceDesc":
		spec.OrderByDesc("price")
	default:
		spec.OrderBy("name")
	}

	return spec
}

// countSpec carries the filters only, so the total reflects every match
// rather than one page.
func (p ProductParams) countSpec() *query.Spec {
	return p.filters(query.New())
}

type ProductRepository struct {
	*Repository[models.Product]
}

func NewProductRepository(q Queryer, onWrite func(int64)) *ProductRepository {
	repo := &Repository[models.Product]{
		q:     q,
		table: "products",
		columns: []string{
			"id", "name", "description", "stock", "price", "image",
			"brand_id", "category_id", "created_at", "updated_at",
		},
		scanRow: scanProduct,
		values: func(p *models.Product) []any {
			return []any{
				p.Name, p.Description, p.Stock, p.Price, p.Image,
				p.BrandID, p.CategoryID, p.CreatedAt, p.UpdatedAt,
			}
		},
		entityID: func(p *models.Product) int64 { return p.ID },
		setID:    func(p *models.Product, id int64) { p.ID = id },
		notFound: database.ErrProductNotFound,
		onWrite:  onWrite,
	}
	repo.loaders = map[string]Loader[models.Product]{
		"brand":    loadProductBrands,
		"category": loadProductCategories,
	}

	return &ProductRepository{repo}
}

func scanProduct(s scanner) (*models.Product, error) {
	product := &models.Product{}
	err := s.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Stock,
		&product.Price,
		&product.Image,
		&product.BrandID,
		&product.CategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// List returns one catalog page plus offset-pagination metadata.
func (r *ProductRepository) List(ctx context.Context, params ProductParams) (*OffsetPage, error) {
	params.normalize()

	total, err := r.Count(ctx, params.countSpec())
	if err != nil {
		return nil, err
	}

	products, err := r.GetAllWithSpec(ctx, params.spec())
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func loadProductBrands(ctx context.Context, q Queryer, products []*models.Product) error {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.BrandID)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, name, created_at FROM brands WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	brands := make(map[int64]*models.Brand)
	for rows.Next() {
		brand := &models.Brand{}
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.CreatedAt); err != nil {
			return err
		}
		brands[brand.ID] = brand
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range products {
		p.Brand = brands[p.BrandID]
	}

	return nil
}

func loadProductCategories(ctx context.Context, q Queryer, products []*models.Product) error {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.CategoryID)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	categories := make(map[int64]*models.Category)
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return err
		}
		categories[category.ID] = category
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range products {
		p.Category = categories[p.CategoryID]
	}

	return nil
}
