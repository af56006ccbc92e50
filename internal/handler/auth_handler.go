package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"

	"github.com/hitoshi/shopfront/internal/metrics"
	"github.com/hitoshi/shopfront/internal/middleware"
	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/session"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthReturnToCookie = "oauth_return_to"
	oauthCookieMaxAge   = 600 // 10分

	loginFailedPath = "/?login=failed"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	GetLoginURL(state string) (string, error)
	HandleCallback(ctx context.Context, code string) (*model.User, error)
}

// SessionManager はログイン・ログアウト時のセッション操作を表す。
// *session.Storeが実装する。
type SessionManager interface {
	Get(r *http.Request, name string) (*sessions.Session, error)
	Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error
	Regenerate(r *http.Request, sess *sessions.Session) error
	Destroy(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	FrontendURL    string   // ログイン後の既定リダイレクト先
	AllowedOrigins []string // returnToとして許可するオリジン
	CookieSecure   bool
}

// AuthHandler はOAuth認証関連のHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	sessions  SessionManager
	collector metrics.MetricsCollector
	config    AuthHandlerConfig
	origins   map[string]struct{}
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(
	service AuthServiceInterface,
	sessions SessionManager,
	collector metrics.MetricsCollector,
	config AuthHandlerConfig,
) *AuthHandler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	origins := make(map[string]struct{}, len(config.AllowedOrigins)+1)
	for _, o := range append([]string{config.FrontendURL}, config.AllowedOrigins...) {
		if o = normalizeOrigin(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return &AuthHandler{
		service:   service,
		sessions:  sessions,
		collector: collector,
		config:    config,
		origins:   origins,
	}
}

// Login はGoogle OAuthフローを開始する。
// GET /auth/google?returnTo=...
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateState()
	if err != nil {
		slog.Error("failed to generate oauth state", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	loginURL, err := h.service.GetLoginURL(state)
	if err != nil {
		slog.Error("failed to build login url", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	// stateをCookieに保存（CSRF対策）
	h.setShortLivedCookie(w, oauthStateCookie, state, oauthCookieMaxAge)

	if target, ok := h.resolveReturnTo(r.URL.Query().Get("returnTo")); ok {
		h.setShortLivedCookie(w, oauthReturnToCookie, url.QueryEscape(target), oauthCookieMaxAge)
	}

	http.Redirect(w, r, loginURL, http.StatusTemporaryRedirect)
}

// Callback はOAuthコールバックを処理する。
// 失敗時はすべて/?login=failedへリダイレクトする。
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// stateクッキーは結果に関わらず削除する
	stateCookie, stateErr := r.Cookie(oauthStateCookie)
	h.setShortLivedCookie(w, oauthStateCookie, "", -1)

	if providerErr := q.Get("error"); providerErr != "" {
		slog.Warn("oauth provider returned error", slog.String("error", providerErr))
		h.loginFailed(w, r)
		return
	}

	state := q.Get("state")
	if stateErr != nil || state == "" || stateCookie.Value != state {
		slog.Warn("oauth state mismatch", slog.String("query_state", state))
		h.loginFailed(w, r)
		return
	}

	code := q.Get("code")
	if code == "" {
		slog.Warn("oauth callback without authorization code")
		h.loginFailed(w, r)
		return
	}

	user, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		slog.Error("oauth callback failed", slog.String("error", err.Error()))
		h.loginFailed(w, r)
		return
	}

	sess, err := h.sessions.Get(r, session.CookieName)
	if err != nil {
		slog.Warn("failed to load session on login", slog.String("error", err.Error()))
	}
	// セッション固定攻撃対策としてIDを振り直す
	if err := h.sessions.Regenerate(r, sess); err != nil {
		slog.Error("failed to regenerate session", slog.String("error", err.Error()))
		h.loginFailed(w, r)
		return
	}
	session.SetUserID(sess, user.ID)
	if err := h.sessions.Save(r, w, sess); err != nil {
		slog.Error("failed to save login session",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		h.loginFailed(w, r)
		return
	}

	h.collector.RecordLogin(metrics.LoginSuccess)
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.Bool("is_admin", user.IsAdmin),
	)

	target := h.config.FrontendURL
	if c, err := r.Cookie(oauthReturnToCookie); err == nil {
		if raw, err := url.QueryUnescape(c.Value); err == nil {
			if resolved, ok := h.resolveReturnTo(raw); ok {
				target = resolved
			}
		}
		h.setShortLivedCookie(w, oauthReturnToCookie, "", -1)
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Logout はセッションを破棄する。
// GET /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(r, session.CookieName)
	if err != nil {
		slog.Warn("failed to load session on logout", slog.String("error", err.Error()))
	}
	if err := h.sessions.Destroy(r, w, sess); err != nil {
		// 削除に失敗してもリダイレクトする
		slog.Error("failed to destroy session", slog.String("error", err.Error()))
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// CurrentUser は現在のログインユーザーを返す。未ログインの場合はnull。
// GET /api/auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.IdentityFromContext(r.Context()).User)
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request) {
	h.collector.RecordLogin(metrics.LoginFailure)
	http.Redirect(w, r, loginFailedPath, http.StatusFound)
}

// resolveReturnTo はreturnToを検証し、リダイレクト先の絶対URLを返す。
// 相対パスはフロントエンドURL基準で解決し、絶対URLは許可オリジンのみ受け付ける。
func (h *AuthHandler) resolveReturnTo(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\") {
		return strings.TrimRight(h.config.FrontendURL, "/") + raw, true
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	if _, ok := h.origins[u.Scheme+"://"+u.Host]; !ok {
		return "", false
	}
	return u.String(), true
}

func (h *AuthHandler) setShortLivedCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func normalizeOrigin(o string) string {
	return strings.TrimRight(strings.TrimSpace(o), "/")
}

// generateState はCSRF対策用のランダムなstate値を生成する。
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
