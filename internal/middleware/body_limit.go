package middleware

import "net/http"

// DefaultMaxBodyBytes はリクエストボディの上限（10MiB）。
const DefaultMaxBodyBytes int64 = 10 << 20

// NewBodyLimitMiddleware はリクエストボディをmaxBytesに制限するミドルウェアを返す。
// 上限を超えた読み込みはエラーになり、JSONデコード失敗として400で返される。
func NewBodyLimitMiddleware(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
