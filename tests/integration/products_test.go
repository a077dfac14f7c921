package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
	"github.com/safar/go-market-server/internal/store"
	"github.com/shopspring/decimal"
)

func TestListProductsFilterSortAndPage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedCatalog(t, db)

	otherBrand := &models.Brand{Name: "Globex", CreatedAt: time.Now().UTC()}
	if _, err := store.NewBrandRepository(db, nil).Add(ctx, otherBrand); err != nil {
		t.Fatalf("Seed brand: %v", err)
	}

	seedProduct(t, db, seeded, "Alpha Keyboard", "10.00", 5)
	seedProduct(t, db, seeded, "Beta Mouse", "25.50", 5)
	seedProduct(t, db, seeded, "Epsilon Hub", "40.00", 5)

	globex := catalog{brand: otherBrand, category: seeded.category, shipping: seeded.shipping}
	seedProduct(t, db, globex, "Gamma Pad", "5.00", 5)
	seedProduct(t, db, globex, "Delta Cable", "7.25", 5)

	products := store.NewProductRepository(db, nil)

	byBrand, err := products.List(ctx, store.ProductParams{BrandID: seeded.brand.ID})
	if err != nil {
		t.Fatalf("List by brand: %v", err)
	}
	if byBrand.Total != 3 {
		t.Errorf("Expected 3 products for brand, got %d", byBrand.Total)
	}
	for _, p := range byBrand.Items.([]*models.Product) {
		if p.Brand == nil || p.Brand.ID != seeded.brand.ID {
			t.Errorf("Expected brand include resolved, got %+v", p.Brand)
		}
	}

	bySearch, err := products.List(ctx, store.ProductParams{Search: "mouse"})
	if err != nil {
		t.Fatalf("List by search: %v", err)
	}
	if bySearch.Total != 1 {
		t.Errorf("Expected 1 match for 'mouse', got %d", bySearch.Total)
	}

	page1, err := products.List(ctx, store.ProductParams{Sort: "priceAsc", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	items1 := page1.Items.([]*models.Product)
	if len(items1) != 2 {
		t.Fatalf("Expected 2 items on page 1, got %d", len(items1))
	}
	if items1[0].Name != "Gamma Pad" || items1[1].Name != "Delta Cable" {
		t.Errorf("Unexpected page 1 order: %s, %s", items1[0].Name, items1[1].Name)
	}
	if page1.Total != 5 || page1.TotalPages != 3 {
		t.Errorf("Expected total 5 over 3 pages, got %d over %d", page1.Total, page1.TotalPages)
	}

	page2, err := products.List(ctx, store.ProductParams{Sort: "priceAsc", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	items2 := page2.Items.([]*models.Product)
	if len(items2) != 2 || items2[0].Name != "Alpha Keyboard" || items2[1].Name != "Beta Mouse" {
		t.Errorf("Unexpected page 2 contents")
	}

	beyond, err := products.List(ctx, store.ProductParams{Sort: "priceAsc", Page: 4, PageSize: 2})
	if err != nil {
		t.Fatalf("List beyond last page: %v", err)
	}
	if len(beyond.Items.([]*models.Product)) != 0 {
		t.Error("Expected empty page beyond the last one")
	}
}

func TestListProductsPageSizeClamped(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedCatalog(t, db)
	seedProduct(t, db, seeded, "Solo", "1.00", 1)

	page, err := store.NewProductRepository(db, nil).List(ctx, store.ProductParams{PageSize: 500})
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if page.PageSize != store.MaxPageSize {
		t.Errorf("Expected page size clamped to %d, got %d", store.MaxPageSize, page.PageSize)
	}
}

func TestGetProductNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := store.NewProductRepository(db, nil).GetByID(context.Background(), 999999)
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateProductFullReplace(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedCatalog(t, db)
	product := seedProduct(t, db, seeded, "Original", "10.00", 5)

	products := store.NewProductRepository(db, nil)

	product.Name = "Replaced"
	product.Description = "new description"
	product.Stock = 9
	product.Price = decimal.RequireFromString("12.34")
	product.UpdatedAt = time.Now().UTC()

	affected, err := products.Update(ctx, product)
	if err != nil {
		t.Fatalf("Update product: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 row affected, got %d", affected)
	}

	fetched, err := products.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if fetched.Name != "Replaced" || fetched.Stock != 9 || !fetched.Price.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("Full replace not applied: %+v", fetched)
	}

	missing := &models.Product{ID: 999999, Name: "Ghost", BrandID: seeded.brand.ID, CategoryID: seeded.category.ID}
	if _, err := products.Update(ctx, missing); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected ErrProductNotFound updating a missing row, got %v", err)
	}
}

func TestUnitOfWorkCommitAndRollback(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	seeded := seedCatalog(t, db)

	now := time.Now().UTC()
	staged := &models.Product{
		Name: "Staged", Price: decimal.RequireFromString("3.00"),
		BrandID: seeded.brand.ID, CategoryID: seeded.category.ID,
		CreatedAt: now, UpdatedAt: now,
	}

	uow, err := store.Begin(ctx, db)
	if err != nil {
		t.Fatalf("Begin unit of work: %v", err)
	}
	if _, err := uow.Products().Add(ctx, staged); err != nil {
		t.Fatalf("Stage product: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("Second rollback must be a no-op: %v", err)
	}

	products := store.NewProductRepository(db, nil)
	if _, err := products.GetByID(ctx, staged.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Rolled-back product must not be visible, got %v", err)
	}

	uow, err = store.Begin(ctx, db)
	if err != nil {
		t.Fatalf("Begin unit of work: %v", err)
	}
	committed := &models.Product{
		Name: "Committed", Price: decimal.RequireFromString("4.00"),
		BrandID: seeded.brand.ID, CategoryID: seeded.category.ID,
		CreatedAt: now, UpdatedAt: now,
	}
	if _, err := uow.Products().Add(ctx, committed); err != nil {
		t.Fatalf("Stage product: %v", err)
	}

	affected, err := uow.Complete(ctx)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if affected != 1 {
		t.Errorf("Expected 1 row affected, got %d", affected)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("Rollback after complete must be a no-op: %v", err)
	}

	if _, err := products.GetByID(ctx, committed.ID); err != nil {
		t.Errorf("Committed product should be visible: %v", err)
	}
}
