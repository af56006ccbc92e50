// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// HTTPレスポンスでは常にmessageを含むJSONとして返される。
type APIError struct {
	Code    string       // エラーコード
	Message string       // クライアント向けメッセージ
	Fields  []FieldError // バリデーションエラー時の違反フィールド
}

// FieldError はバリデーションに失敗したフィールドとルールを表す。
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Fields)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeInvalidFilter     = "INVALID_FILTER"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeAdminRequired     = "ADMIN_REQUIRED"
	ErrCodeAccessDenied      = "ACCESS_DENIED"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCartItemNotFound  = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeInvalidCartOwner  = "INVALID_CART_OWNER"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewValidationError はバリデーション失敗エラーを生成する。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: "Invalid request body",
	}
}

// NewInvalidQuantityError は数量が不正な場合のエラーを生成する。
func NewInvalidQuantityError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidQuantity,
		Message: "Invalid quantity",
	}
}

// NewInvalidFilterError はクエリパラメータが不正な場合のエラーを生成する。
func NewInvalidFilterError(param string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidFilter,
		Message: fmt.Sprintf("Invalid query parameter: %s", param),
		Fields:  []FieldError{{Field: param, Rule: "format"}},
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeProductNotFound,
		Message: "Product not found",
	}
}

// NewCategoryNotFoundError はカテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeCategoryNotFound,
		Message: "Category not found",
	}
}

// NewCartItemNotFoundError はカート項目未検出エラーを生成する。
// 他人のカート項目を指定した場合も同じエラーになる。
func NewCartItemNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeCartItemNotFound,
		Message: "Cart item not found",
	}
}

// NewOrderNotFoundError は注文未検出エラーを生成する。
func NewOrderNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeOrderNotFound,
		Message: "Order not found",
	}
}

// NewAccessDeniedError は他人のリソースへのアクセスを拒否するエラーを生成する。
func NewAccessDeniedError() *APIError {
	return &APIError{
		Code:    ErrCodeAccessDenied,
		Message: "Access denied",
	}
}

// NewInvalidCartOwnerError はカート所有者が解決できない場合のエラーを生成する。
func NewInvalidCartOwnerError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCartOwner,
		Message: "Cart owner could not be resolved",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Unauthorized",
	}
}

// NewAdminRequiredError は管理者権限が必要な操作を一般ユーザーが行った場合のエラーを生成する。
func NewAdminRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodeAdminRequired,
		Message: "Admin access required",
	}
}

// NewRateLimitError はレート制限超過エラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:    ErrCodeRateLimitExceeded,
		Message: "Too many requests, please try again later",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ出力する。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Internal server error",
	}
}
