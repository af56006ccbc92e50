package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/shopfront/internal/middleware"
	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/validation"
)

// CartServiceInterface はカートハンドラーが必要とするサービスインターフェース。
type CartServiceInterface interface {
	List(ctx context.Context, owner model.CartOwner) ([]*model.CartItem, error)
	Add(ctx context.Context, owner model.CartOwner, productID int64, quantity int) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, owner model.CartOwner, itemID int64, quantity int) (*model.CartItem, error)
	Remove(ctx context.Context, owner model.CartOwner, itemID int64) error
	Clear(ctx context.Context, owner model.CartOwner) error
}

// CartHandler はカートのHTTPハンドラー。
// カートの所有者はセッションミドルウェアが解決したIdentityから決まる。
type CartHandler struct {
	service   CartServiceInterface
	validator RequestValidator
}

// NewCartHandler はCartHandlerを生成する。
func NewCartHandler(service CartServiceInterface, validator RequestValidator) *CartHandler {
	return &CartHandler{
		service:   service,
		validator: validator,
	}
}

// List はカートの中身を返す。
// GET /api/cart
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.IdentityFromContext(r.Context()).CartOwner()

	items, err := h.service.List(r.Context(), owner)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Add はカートに商品を追加する。同じ商品があれば数量を加算する。
// POST /api/cart
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var input validation.CartItemInput
	if err := h.validator.DecodeJSON(r.Body, &input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	owner := middleware.IdentityFromContext(r.Context()).CartOwner()
	item, err := h.service.Add(r.Context(), owner, input.ProductID, input.QuantityOrDefault())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateQuantity はカート項目の数量を変更する。
// PUT /api/cart/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id", model.NewCartItemNotFoundError())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var input validation.CartQuantityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		handleServiceError(w, r, model.NewInvalidQuantityError())
		return
	}
	if input.Quantity == nil || *input.Quantity < 1 {
		handleServiceError(w, r, model.NewInvalidQuantityError())
		return
	}

	owner := middleware.IdentityFromContext(r.Context()).CartOwner()
	item, err := h.service.UpdateQuantity(r.Context(), owner, id, *input.Quantity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Remove はカート項目を削除する。
// DELETE /api/cart/{id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id", model.NewCartItemNotFoundError())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	owner := middleware.IdentityFromContext(r.Context()).CartOwner()
	if err := h.service.Remove(r.Context(), owner, id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Item removed from cart")
}

// Clear はカートを空にする。空のカートに対しても成功する。
// DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	owner := middleware.IdentityFromContext(r.Context()).CartOwner()
	if err := h.service.Clear(r.Context(), owner); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Cart cleared")
}
