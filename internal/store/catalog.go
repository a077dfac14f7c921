package store

import (
	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
)

type BrandRepository struct {
	*Repository[models.Brand]
}

func NewBrandRepository(q Queryer, onWrite func(int64)) *BrandRepository {
	return &BrandRepository{&Repository[models.Brand]{
		q:       q,
		table:   "brands",
		columns: []string{"id", "name", "created_at"},
		scanRow: func(s scanner) (*models.Brand, error) {
			brand := &models.Brand{}
			if err := s.Scan(&brand.ID, &brand.Name, &brand.CreatedAt); err != nil {
				return nil, err
			}
			return brand, nil
		},
		values:   func(b *models.Brand) []any { return []any{b.Name, b.CreatedAt} },
		entityID: func(b *models.Brand) int64 { return b.ID },
		setID:    func(b *models.Brand, id int64) { b.ID = id },
		notFound: database.ErrBrandNotFound,
		onWrite:  onWrite,
	}}
}

type CategoryRepository struct {
	*Repository[models.Category]
}

func NewCategoryRepository(q Queryer, onWrite func(int64)) *CategoryRepository {
	return &CategoryRepository{&Repository[models.Category]{
		q:       q,
		table:   "categories",
		columns: []string{"id", "name", "created_at"},
		scanRow: func(s scanner) (*models.Category, error) {
			category := &models.Category{}
			if err := s.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
				return nil, err
			}
			return category, nil
		},
		values:   func(c *models.Category) []any { return []any{c.Name, c.CreatedAt} },
		entityID: func(c *models.Category) int64 { return c.ID },
		setID:    func(c *models.Category, id int64) { c.ID = id },
		notFound: database.ErrCategoryNotFound,
		onWrite:  onWrite,
	}}
}
