// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/session"
)

// SessionIDHeader はフロントエンドが匿名カートの識別に使うヘッダー名。
const SessionIDHeader = "X-Session-Id"

// MaxHeaderSessionIDLength はX-Session-Idとして受け付ける最大長。
// cart_items.session_idの列長に合わせる。これを超える値は無視する。
const MaxHeaderSessionIDLength = 255

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストにIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity はリクエストの呼び出し元を表す。
// Userがnilの場合は匿名リクエスト。
type Identity struct {
	SessionID       string      // Cookieセッションのid
	HeaderSessionID string      // X-Session-Idヘッダーの値
	User            *model.User // 認証済みユーザー

	// NewSession はこのリクエストでセッションを新規発行したか。
	// Cookieを送らないクライアントは毎回trueになる。
	NewSession bool
	// ClientAddr は接続元アドレス（ポートを除く）。
	ClientAddr string
}

// IsAuthenticated は認証済みかどうかを返す。
func (i *Identity) IsAuthenticated() bool {
	return i != nil && i.User != nil
}

// IsAdmin は認証済みの管理者かどうかを返す。
func (i *Identity) IsAdmin() bool {
	return i.IsAuthenticated() && i.User.IsAdmin
}

// CartOwner はカートの所有者を解決する。
// 認証済みならユーザーID、匿名ならX-Session-Idヘッダー、なければCookieセッションIDを使う。
func (i *Identity) CartOwner() model.CartOwner {
	if i == nil {
		return model.CartOwner{}
	}
	if i.User != nil {
		return model.CartOwner{UserID: i.User.ID}
	}
	if i.HeaderSessionID != "" {
		return model.CartOwner{SessionID: i.HeaderSessionID}
	}
	return model.CartOwner{SessionID: i.SessionID}
}

// Key はレート制限のキーを返す。
// 認証済みならユーザー、Cookieから復元したセッションならセッション、
// それ以外（新規発行したばかりのセッション）は接続元アドレスをキーにする。
func (i *Identity) Key() string {
	if i == nil {
		return ""
	}
	if i.User != nil {
		return "user:" + i.User.ID
	}
	if i.SessionID != "" && !i.NewSession {
		return "session:" + i.SessionID
	}
	if i.ClientAddr != "" {
		return "addr:" + i.ClientAddr
	}
	return ""
}

// UserFinder はセッションのユーザーIDからユーザーを解決するインターフェース。
// 見つからない場合は(nil, nil)を返す。
type UserFinder interface {
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// NewSessionMiddleware はCookieセッションを読み込み、Identityをコンテキストに注入するミドルウェアを返す。
//
// セッションが無い・無効・期限切れの場合は新しい匿名セッションを発行する。
// 既存セッションもアクセスごとに保存し直して有効期限を延長する。
// セッションのユーザーが削除済みの場合は匿名として扱う。
func NewSessionMiddleware(store sessions.Store, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, session.CookieName)
			if err != nil {
				// バックエンド障害時は新しい匿名セッションで処理を続ける
				slog.Warn("failed to load session",
					slog.String("error", err.Error()),
				)
			}

			isNew := sess.IsNew
			if err := store.Save(r, w, sess); err != nil {
				slog.Warn("failed to save session",
					slog.String("session_id", sess.ID),
					slog.String("error", err.Error()),
				)
			}

			identity := &Identity{
				SessionID:       sess.ID,
				HeaderSessionID: headerSessionID(r),
				NewSession:      isNew,
				ClientAddr:      ClientAddr(r),
			}

			if userID := session.UserID(sess); userID != "" {
				user, err := users.CurrentUser(r.Context(), userID)
				if err != nil {
					slog.Error("failed to load session user",
						slog.String("user_id", userID),
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
				identity.User = user
			}

			annotateRequestLog(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// headerSessionID はX-Session-Idヘッダーを返す。長すぎる値は無視する。
func headerSessionID(r *http.Request) string {
	v := r.Header.Get(SessionIDHeader)
	if len(v) > MaxHeaderSessionIDLength {
		slog.Warn("ignoring oversized session header",
			slog.Int("length", len(v)),
		)
		return ""
	}
	return v
}

// ClientAddr はRemoteAddrからポートを除いた接続元アドレスを返す。
// プロキシ配下ではchiのRealIPミドルウェアでRemoteAddrを書き換えておく。
func ClientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IdentityFromContext はリクエストコンテキストからIdentityを取得する。
// セッションミドルウェアを通過していない場合は空の匿名Identityを返す。
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityContextKey).(*Identity); ok && id != nil {
		return id
	}
	return &Identity{}
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// RequireAuth は認証済みでないリクエストに401を返すミドルウェア。
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFromContext(r.Context()).IsAuthenticated() {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin は未認証なら401、管理者でなければ403を返すミドルウェア。
// セッションミドルウェアで解決済みのユーザーを使い、追加のDB参照はしない。
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if !identity.IsAuthenticated() {
			WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
			return
		}
		if !identity.IsAdmin() {
			WriteErrorResponse(w, http.StatusForbidden, model.NewAdminRequiredError())
			return
		}
		next.ServeHTTP(w, r)
	})
}
