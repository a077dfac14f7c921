package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/safar/go-market-server/internal/cart"
	"github.com/safar/go-market-server/internal/config"
	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
	"github.com/safar/go-market-server/internal/order"
	"github.com/safar/go-market-server/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("connected to database")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cart.RedisAddr})
	carts := cart.NewRedisStore(redisClient, cfg.Cart.TTL)

	products := store.NewProductRepository(db, nil)
	brands := store.NewBrandRepository(db, nil)
	categories := store.NewCategoryRepository(db, nil)
	shipping := store.NewShippingTypeRepository(db, nil)
	orderRepo := store.NewOrderRepository(db, nil)

	orders := order.NewService(carts, order.SQLTxFactory{DB: db}, orderRepo, shipping, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/products", handleListProducts(products))
	r.Post("/products", handleCreateProduct(products))
	r.Get("/products/{id}", handleGetProduct(products))
	r.Put("/products/{id}", handleUpdateProduct(products))
	r.Delete("/products/{id}", handleDeleteProduct(products))

	r.Get("/brands", handleListBrands(brands))
	r.Get("/categories", handleListCategories(categories))

	r.Get("/cart/{id}", handleGetCart(carts))
	r.Post("/cart", handleUpsertCart(carts))
	r.Delete("/cart/{id}", handleDeleteCart(carts))

	r.Get("/shipping-types", handleListShippingTypes(orders))
	r.Post("/orders", handlePlaceOrder(orders))
	r.Get("/orders", handleListOrders(orders))
	r.Get("/orders/{id}", handleGetOrder(orders))

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("server starting", "port", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleListProducts(products *store.ProductRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		params := store.ProductParams{
			Search: q.Get("search"),
			Sort:   q.Get("sort"),
		}
		params.BrandID, _ = strconv.ParseInt(q.Get("brand"), 10, 64)
		params.CategoryID, _ = strconv.ParseInt(q.Get("category"), 10, 64)
		params.Page, _ = strconv.Atoi(q.Get("page"))
		params.PageSize, _ = strconv.Atoi(q.Get("page_size"))

		page, err := products.List(r.Context(), params)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, page)
	}
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Stock       int     `json:"stock"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	BrandID     int64   `json:"brand_id"`
	CategoryID  int64   `json:"category_id"`
}

func handleCreateProduct(products *store.ProductRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		now := time.Now().UTC()
		product := &models.Product{
			Name:        req.Name,
			Description: req.Description,
			Stock:       req.Stock,
			Price:       decimal.NewFromFloat(req.Price),
			Image:       req.Image,
			BrandID:     req.BrandID,
			CategoryID:  req.CategoryID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if _, err := products.Add(r.Context(), product); err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusCreated, product)
	}
}

func handleGetProduct(products *store.ProductRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		product, err := products.GetByID(r.Context(), id)
		if err != nil {
			respondLookupError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

// handleUpdateProduct has full-replace semantics: every field is written
// from the request, only the creation timestamp survives.
func handleUpdateProduct(products *store.ProductRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		existing, err := products.GetByID(r.Context(), id)
		if err != nil {
			respondLookupError(w, err)
			return
		}

		product := &models.Product{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Stock:       req.Stock,
			Price:       decimal.NewFromFloat(req.Price),
			Image:       req.Image,
			BrandID:     req.BrandID,
			CategoryID:  req.CategoryID,
			CreatedAt:   existing.CreatedAt,
			UpdatedAt:   time.Now().UTC(),
		}

		if _, err := products.Update(r.Context(), product); err != nil {
			respondLookupError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, product)
	}
}

func handleDeleteProduct(products *store.ProductRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid product ID")
			return
		}

		if _, err := products.Delete(r.Context(), id); err != nil {
			respondLookupError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListBrands(brands *store.BrandRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := brands.GetAll(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}

func handleListCategories(categories *store.CategoryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := categories.GetAll(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, all)
	}
}

func handleGetCart(carts *cart.RedisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		c, err := carts.Get(r.Context(), id)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if c == nil {
			// An unknown cart id reads as an empty cart, not an error.
			c = cart.New(id)
		}

		respondJSON(w, http.StatusOK, c)
	}
}

func handleUpsertCart(carts *cart.RedisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c cart.Cart
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}

		updated, err := carts.Upsert(r.Context(), &c)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteCart(carts *cart.RedisStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := carts.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}

func handleListShippingTypes(orders *order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := orders.ShippingTypes(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, types)
	}
}

type placeOrderRequest struct {
	CartID         string         `json:"cart_id"`
	ShippingType   int64          `json:"shipping_type"`
	MailingAddress models.Address `json:"mailing_address"`
}

func handlePlaceOrder(orders *order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := buyerEmail(w, r)
		if !ok {
			return
		}

		var req placeOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		placed, err := orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
			BuyerEmail:     email,
			ShippingTypeID: req.ShippingType,
			CartID:         req.CartID,
			Address:        req.MailingAddress,
		})
		switch {
		case err == nil:
			respondJSON(w, http.StatusCreated, placed)
		case database.IsNotFound(err), errors.Is(err, database.ErrNothingPersisted):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func handleListOrders(orders *order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := buyerEmail(w, r)
		if !ok {
			return
		}

		list, err := orders.ListOrders(r.Context(), email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, list)
	}
}

func handleGetOrder(orders *order.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := buyerEmail(w, r)
		if !ok {
			return
		}

		id, err := pathID(r)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}

		found, err := orders.GetOrder(r.Context(), id, email)
		if err != nil {
			respondLookupError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, found)
	}
}

// buyerEmail reads the caller identity resolved by the upstream auth layer.
func buyerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.Header.Get("X-Buyer-Email")
	if email == "" {
		respondError(w, http.StatusUnauthorized, "Missing buyer identity")
		return "", false
	}
	return email, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func respondLookupError(w http.ResponseWriter, err error) {
	if database.IsNotFound(err) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
