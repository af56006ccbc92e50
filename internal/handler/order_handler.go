package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/shopfront/internal/middleware"
	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/validation"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	Create(ctx context.Context, owner model.CartOwner, order *model.Order, items []model.OrderItem) (*model.Order, error)
	List(ctx context.Context, user *model.User) ([]*model.Order, error)
	Get(ctx context.Context, user *model.User, id int64) (*model.Order, error)
}

// OrderHandler は注文のHTTPハンドラー。
type OrderHandler struct {
	service   OrderServiceInterface
	validator RequestValidator
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface, validator RequestValidator) *OrderHandler {
	return &OrderHandler{
		service:   service,
		validator: validator,
	}
}

// Create は注文を確定し、同じ所有者のカートを空にする。
// 未ログインでも注文できる。
// POST /api/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input validation.OrderInput
	if err := h.validator.DecodeJSON(r.Body, &input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	order, items := input.ToOrder()
	owner := middleware.IdentityFromContext(r.Context()).CartOwner()

	created, err := h.service.Create(r.Context(), owner, order, items)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

// List は注文一覧を返す。管理者は全件、それ以外は自分の注文のみ。
// GET /api/orders（要ログイン）
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.IdentityFromContext(r.Context()).User

	orders, err := h.service.List(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// Get は注文詳細を明細付きで返す。
// GET /api/orders/{id}（要ログイン）
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id", model.NewOrderNotFoundError())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	user := middleware.IdentityFromContext(r.Context()).User
	order, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
