package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/shopfront/internal/model"
)

// AdminServiceInterface は管理画面ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	Stats(ctx context.Context) (*model.Stats, error)
}

// AdminHandler は管理画面向けのHTTPハンドラー。
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// Stats はダッシュボードの集計値を返す。
// GET /api/admin/stats（管理者のみ）
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
