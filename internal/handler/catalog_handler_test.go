package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/validation"
)

// --- モック定義 ---

// mockCatalogService はCatalogServiceInterfaceのモック実装。
type mockCatalogService struct {
	listCategoriesFn func(ctx context.Context) ([]*model.Category, error)
	createCategoryFn func(ctx context.Context, category *model.Category) (*model.Category, error)
	listProductsFn   func(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error)
	getProductFn     func(ctx context.Context, id int64) (*model.Product, error)
	createProductFn  func(ctx context.Context, product *model.Product) (*model.Product, error)
	updateProductFn  func(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error)
	deleteProductFn  func(ctx context.Context, id int64) error
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(ctx)
	}
	return []*model.Category{}, nil
}

func (m *mockCatalogService) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(ctx, category)
	}
	return category, nil
}

func (m *mockCatalogService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx, filter)
	}
	return []*model.Product{}, nil
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	if m.getProductFn != nil {
		return m.getProductFn(ctx, id)
	}
	return nil, model.NewProductNotFoundError()
}

func (m *mockCatalogService) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if m.createProductFn != nil {
		return m.createProductFn(ctx, product)
	}
	return product, nil
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	if m.updateProductFn != nil {
		return m.updateProductFn(ctx, id, patch)
	}
	return nil, model.NewProductNotFoundError()
}

func (m *mockCatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if m.deleteProductFn != nil {
		return m.deleteProductFn(ctx, id)
	}
	return nil
}

// --- GET /api/categories ---

func TestCatalogHandler_ListCategories_EmptyReturnsArray(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{}, validation.New())

	w := httptest.NewRecorder()
	h.ListCategories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

// --- POST /api/categories ---

func TestCatalogHandler_CreateCategory(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Books","description":"Paper and ink"}`, http.StatusOK},
		{"missing name", `{"description":"no name"}`, http.StatusBadRequest},
		{"bad image url", `{"name":"Books","imageUrl":"not a url"}`, http.StatusBadRequest},
		{"malformed json", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCatalogService{
				createCategoryFn: func(ctx context.Context, c *model.Category) (*model.Category, error) {
					c.ID = 7
					return c, nil
				},
			}
			h := NewCatalogHandler(svc, validation.New())

			req := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.CreateCategory(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body=%s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

// --- GET /api/products ---

func TestCatalogHandler_ListProducts_ParsesFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, f model.ProductFilter)
	}{
		{
			name:  "defaults to active only",
			query: "",
			check: func(t *testing.T, f model.ProductFilter) {
				if !f.ActiveOnly || f.FeaturedOnly || f.CategoryID != nil || f.MinPrice != nil || f.MaxPrice != nil {
					t.Errorf("filter = %+v", f)
				}
			},
		},
		{
			name:  "price range and featured",
			query: "?minPrice=10&maxPrice=50&featured=true",
			check: func(t *testing.T, f model.ProductFilter) {
				if !f.ActiveOnly || !f.FeaturedOnly {
					t.Errorf("ActiveOnly=%v FeaturedOnly=%v", f.ActiveOnly, f.FeaturedOnly)
				}
				if f.MinPrice == nil || !f.MinPrice.Equal(decimal.NewFromInt(10)) {
					t.Errorf("MinPrice = %v", f.MinPrice)
				}
				if f.MaxPrice == nil || !f.MaxPrice.Equal(decimal.NewFromInt(50)) {
					t.Errorf("MaxPrice = %v", f.MaxPrice)
				}
			},
		},
		{
			name:  "category and search",
			query: "?categoryId=3&search=%20mug%20",
			check: func(t *testing.T, f model.ProductFilter) {
				if f.CategoryID == nil || *f.CategoryID != 3 {
					t.Errorf("CategoryID = %v", f.CategoryID)
				}
				if f.Search != "mug" {
					t.Errorf("Search = %q", f.Search)
				}
			},
		},
		{
			name:  "active=false lifts active filter",
			query: "?active=false",
			check: func(t *testing.T, f model.ProductFilter) {
				if f.ActiveOnly {
					t.Error("ActiveOnly should be false")
				}
			},
		},
		{
			name:  "featured=false is no restriction",
			query: "?featured=false",
			check: func(t *testing.T, f model.ProductFilter) {
				if f.FeaturedOnly {
					t.Error("FeaturedOnly should be false")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.ProductFilter
			svc := &mockCatalogService{
				listProductsFn: func(ctx context.Context, f model.ProductFilter) ([]*model.Product, error) {
					got = f
					return []*model.Product{}, nil
				},
			}
			h := NewCatalogHandler(svc, validation.New())

			w := httptest.NewRecorder()
			h.ListProducts(w, httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			tt.check(t, got)
		})
	}
}

func TestCatalogHandler_ListProducts_InvalidFilter(t *testing.T) {
	queries := []string{
		"?categoryId=abc",
		"?categoryId=0",
		"?minPrice=cheap",
		"?maxPrice=-5",
		"?featured=maybe",
		"?active=sometimes",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			called := false
			svc := &mockCatalogService{
				listProductsFn: func(ctx context.Context, f model.ProductFilter) ([]*model.Product, error) {
					called = true
					return nil, nil
				},
			}
			h := NewCatalogHandler(svc, validation.New())

			w := httptest.NewRecorder()
			h.ListProducts(w, httptest.NewRequest(http.MethodGet, "/api/products"+q, nil))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if called {
				t.Error("service should not be called for invalid filter")
			}
			if body := parseErrorResponse(t, w); body.Code != model.ErrCodeInvalidFilter {
				t.Errorf("code = %q", body.Code)
			}
		})
	}
}

// --- GET /api/products/{id} ---

func TestCatalogHandler_GetProduct(t *testing.T) {
	svc := &mockCatalogService{
		getProductFn: func(ctx context.Context, id int64) (*model.Product, error) {
			if id == 5 {
				return &model.Product{ID: 5, Name: "Mug", Price: decimal.RequireFromString("12.50"), Active: true}, nil
			}
			return nil, model.NewProductNotFoundError()
		},
	}
	h := NewCatalogHandler(svc, validation.New())

	t.Run("found", func(t *testing.T) {
		req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/products/5", nil), "id", "5")
		w := httptest.NewRecorder()
		h.GetProduct(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var p model.Product
		if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if p.ID != 5 || !p.Price.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("product = %+v", p)
		}
	})

	for _, id := range []string{"99", "abc"} {
		t.Run("not found "+id, func(t *testing.T) {
			req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil), "id", id)
			w := httptest.NewRecorder()
			h.GetProduct(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404", w.Code)
			}
			if body := parseErrorResponse(t, w); body.Message != "Product not found" {
				t.Errorf("message = %q", body.Message)
			}
		})
	}
}

// --- POST /api/products ---

func TestCatalogHandler_CreateProduct_PassesAllFields(t *testing.T) {
	var got *model.Product
	svc := &mockCatalogService{
		createProductFn: func(ctx context.Context, p *model.Product) (*model.Product, error) {
			got = p
			p.ID = 11
			return p, nil
		},
	}
	h := NewCatalogHandler(svc, validation.New())

	body := `{"name":"Teapot","description":"<b>Cast iron</b>","price":"39.90","categoryId":2,
		"imageUrl":"https://cdn.example.com/teapot.png","stock":4,"featured":true}`
	w := httptest.NewRecorder()
	h.CreateProduct(w, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body=%s)", w.Code, w.Body.String())
	}
	if got.Name != "Teapot" || got.Stock != 4 || !got.Featured || !got.Active {
		t.Errorf("product = %+v", got)
	}
	if got.CategoryID == nil || *got.CategoryID != 2 {
		t.Errorf("CategoryID = %v", got.CategoryID)
	}
	if !got.Price.Equal(decimal.RequireFromString("39.9")) {
		t.Errorf("Price = %s", got.Price)
	}
}

func TestCatalogHandler_CreateProduct_ValidationFailure(t *testing.T) {
	called := false
	svc := &mockCatalogService{
		createProductFn: func(ctx context.Context, p *model.Product) (*model.Product, error) {
			called = true
			return p, nil
		},
	}
	h := NewCatalogHandler(svc, validation.New())

	w := httptest.NewRecorder()
	h.CreateProduct(w, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(`{"name":"No price"}`)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if called {
		t.Error("service should not be called")
	}
	body := parseErrorResponse(t, w)
	if body.Code != model.ErrCodeValidationFailed || body.Message != "Validation failed" {
		t.Errorf("body = %+v", body)
	}
	found := false
	for _, f := range body.Fields {
		if f.Field == "price" {
			found = true
		}
	}
	if !found {
		t.Errorf("fields = %+v, want price", body.Fields)
	}
}

// --- PUT /api/products/{id} ---

func TestCatalogHandler_UpdateProduct_PartialPatch(t *testing.T) {
	var gotID int64
	var gotPatch model.ProductPatch
	svc := &mockCatalogService{
		updateProductFn: func(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
			gotID, gotPatch = id, patch
			return &model.Product{ID: id, Stock: *patch.Stock}, nil
		},
	}
	h := NewCatalogHandler(svc, validation.New())

	req := httptest.NewRequest(http.MethodPut, "/api/products/3", bytes.NewBufferString(`{"stock":5}`))
	req = withChiURLParam(req, "id", "3")
	w := httptest.NewRecorder()
	h.UpdateProduct(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != 3 || gotPatch.Stock == nil || *gotPatch.Stock != 5 {
		t.Errorf("id=%d patch=%+v", gotID, gotPatch)
	}
	if gotPatch.Name != nil || gotPatch.Price != nil || gotPatch.Active != nil {
		t.Error("unspecified fields should stay nil")
	}
}

func TestCatalogHandler_UpdateProduct_Missing_Returns404(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{}, validation.New())

	req := httptest.NewRequest(http.MethodPut, "/api/products/404", bytes.NewBufferString(`{"name":"x"}`))
	req = withChiURLParam(req, "id", "404")
	w := httptest.NewRecorder()
	h.UpdateProduct(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// --- DELETE /api/products/{id} ---

func TestCatalogHandler_DeleteProduct(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"deleted", nil, http.StatusOK, "Product deleted successfully"},
		{"missing", model.NewProductNotFoundError(), http.StatusNotFound, "Product not found"},
		{"db failure", errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCatalogService{
				deleteProductFn: func(ctx context.Context, id int64) error { return tt.err },
			}
			h := NewCatalogHandler(svc, validation.New())

			req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/products/1", nil), "id", "1")
			w := httptest.NewRecorder()
			h.DeleteProduct(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body messageResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
		})
	}
}
