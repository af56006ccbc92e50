// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/shopfront/internal/middleware"
	"github.com/hitoshi/shopfront/internal/model"
)

// messageResponse は処理結果のメッセージだけを返すレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeMessage は{"message": ...}形式のレスポンスを書き込む。
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// handleServiceError はサービス層のエラーを適切なHTTPレスポンスに変換する。
// APIError以外は内部エラーとしてログに残し、詳細を返さない。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("unexpected service error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorのコードからHTTPステータスコードを決定する。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest,
		model.ErrCodeValidationFailed,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidFilter,
		model.ErrCodeInvalidCartOwner:
		return http.StatusBadRequest
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeAdminRequired, model.ErrCodeAccessDenied:
		return http.StatusForbidden
	case model.ErrCodeProductNotFound,
		model.ErrCodeCategoryNotFound,
		model.ErrCodeCartItemNotFound,
		model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// parseIDParam はURLパスパラメータを正の整数IDとして解析する。
// 解析できない場合はnotFoundを返し、存在しないIDと同じ扱いにする。
func parseIDParam(r *http.Request, name string, notFound *model.APIError) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}

// NotFound は未定義ルートに対するレスポンスを返す。
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Route not found")
}

// MethodNotAllowed は許可されていないメソッドに対するレスポンスを返す。
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
