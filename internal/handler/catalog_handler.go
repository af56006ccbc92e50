package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/validation"
)

// RequestValidator はリクエストボディのデコードと検証を行うインターフェース。
// *validation.Validatorが実装する。
type RequestValidator interface {
	DecodeJSON(r io.Reader, dst any) error
}

// CatalogServiceInterface はカタログハンドラーが必要とするサービスインターフェース。
type CatalogServiceInterface interface {
	ListCategories(ctx context.Context) ([]*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CatalogHandler はカテゴリと商品のHTTPハンドラー。
type CatalogHandler struct {
	service   CatalogServiceInterface
	validator RequestValidator
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(service CatalogServiceInterface, validator RequestValidator) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		validator: validator,
	}
}

// ListCategories はカテゴリ一覧を返す。
// GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory はカテゴリを作成する。
// POST /api/categories（管理者のみ）
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input validation.CategoryInput
	if err := h.validator.DecodeJSON(r.Body, &input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), input.ToCategory())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// ListProducts は商品一覧を返す。
// GET /api/products?categoryId=&search=&minPrice=&maxPrice=&featured=&active=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct は商品詳細を返す。
// GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id", model.NewProductNotFoundError())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct は商品を作成する。
// POST /api/products（管理者のみ）
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input validation.ProductInput
	if err := h.validator.DecodeJSON(r.Body, &input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), input.ToProduct())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct は商品を部分更新する。
// PUT /api/products/{id}（管理者のみ）
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id", model.NewProductNotFoundError())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var input validation.ProductPatchInput
	if err := h.validator.DecodeJSON(r.Body, &input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, input.ToPatch())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct は商品を削除する。
// DELETE /api/products/{id}（管理者のみ）
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id", model.NewProductNotFoundError())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

// parseProductFilter はクエリパラメータから商品の絞り込み条件を組み立てる。
// activeは省略時true。active=falseで非公開商品も含める。
func parseProductFilter(r *http.Request) (model.ProductFilter, error) {
	q := r.URL.Query()
	filter := model.ProductFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		ActiveOnly: true,
	}

	if v := q.Get("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return filter, model.NewInvalidFilterError("categoryId")
		}
		filter.CategoryID = &id
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return filter, model.NewInvalidFilterError(p.name)
		}
		*p.dst = &d
	}

	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return filter, model.NewInvalidFilterError("featured")
		}
		filter.FeaturedOnly = featured
	}

	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return filter, model.NewInvalidFilterError("active")
		}
		filter.ActiveOnly = active
	}

	return filter, nil
}
