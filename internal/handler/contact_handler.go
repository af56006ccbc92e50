package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/validation"
)

// ContactServiceInterface はお問い合わせハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	Submit(ctx context.Context, msg *model.ContactMessage) (*model.ContactMessage, error)
	List(ctx context.Context) ([]*model.ContactMessage, error)
}

// ContactHandler はお問い合わせのHTTPハンドラー。
type ContactHandler struct {
	service   ContactServiceInterface
	validator RequestValidator
}

// NewContactHandler はContactHandlerを生成する。
func NewContactHandler(service ContactServiceInterface, validator RequestValidator) *ContactHandler {
	return &ContactHandler{
		service:   service,
		validator: validator,
	}
}

// Submit はお問い合わせを受け付ける。
// POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input validation.ContactMessageInput
	if err := h.validator.DecodeJSON(r.Body, &input); err != nil {
		handleServiceError(w, r, err)
		return
	}

	msg, err := h.service.Submit(r.Context(), input.ToMessage())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// List はお問い合わせ一覧を返す。
// GET /api/contact（管理者のみ）
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
