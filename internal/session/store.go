package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/hitoshi/shopfront/internal/model"
)

// CookieName はセッションIDを運ぶCookie名。
const CookieName = "session_id"

// セッションValuesのキー
const (
	valueUserID    = "user_id"
	valueCreatedAt = "created_at"
)

// Options はStoreの設定を保持する。
type Options struct {
	Secret string        // Cookie署名キー
	MaxAge time.Duration // セッションの有効期間（アクセスごとに延長される）
	Secure bool          // 本番環境ではtrue
}

// Store はgorilla/sessionsのStoreインターフェースを実装する。
// CookieにはHMAC署名したセッションIDだけを載せ、中身はBackendに保存する。
type Store struct {
	backend Backend
	codecs  []securecookie.Codec
	maxAge  time.Duration
	nowFunc func() time.Time

	// Options は新しく生成するセッションのCookie属性。
	Options *sessions.Options
}

// NewStore はStoreを生成する。
func NewStore(backend Backend, opts Options) *Store {
	codecs := securecookie.CodecsFromPairs([]byte(opts.Secret))
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(opts.MaxAge.Seconds()))
		}
	}

	cookieOpts := &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.Secure {
		// フロントエンドが別オリジンのため、本番ではクロスサイト送信を許可する
		cookieOpts.SameSite = http.SameSiteNoneMode
	}

	return &Store{
		backend: backend,
		codecs:  codecs,
		maxAge:  opts.MaxAge,
		nowFunc: time.Now,
		Options: cookieOpts,
	}
}

// Get はリクエスト単位でキャッシュされたセッションを返す。
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New はCookieからセッションを復元する。
// Cookieが無い・改ざんされている・期限切れの場合は新しい匿名セッションを返す。
// バックエンドの読み込み失敗時は新しいセッションとエラーを返す。
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true

	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return sess, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return sess, nil
	}

	stored, err := s.backend.Load(r.Context(), id)
	if err != nil {
		return sess, fmt.Errorf("failed to load session: %w", err)
	}
	if stored == nil {
		return sess, nil
	}

	sess.ID = stored.ID
	sess.IsNew = false
	if stored.UserID != "" {
		sess.Values[valueUserID] = stored.UserID
	}
	sess.Values[valueCreatedAt] = stored.CreatedAt
	return sess, nil
}

// Save はセッションをバックエンドに保存し、署名付きCookieを書き込む。
// Options.MaxAgeが負の場合はセッションを削除してCookieを失効させる。
// IDが未採番の場合は保存前に採番するため、保存に失敗してもsess.IDは設定される。
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	if sess.Options != nil && sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.backend.Delete(r.Context(), sess.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	now := s.nowFunc()
	createdAt, ok := sess.Values[valueCreatedAt].(time.Time)
	if !ok {
		createdAt = now
		sess.Values[valueCreatedAt] = createdAt
	}

	record := &model.Session{
		ID:        sess.ID,
		UserID:    UserID(sess),
		ExpiresAt: now.Add(s.maxAge),
		CreatedAt: createdAt,
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session cookie: %w", err)
	}

	if err := s.backend.Save(r.Context(), record); err != nil {
		return err
	}

	opts := sess.Options
	if opts == nil {
		opts = s.Options
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), encoded, opts))
	return nil
}

// Regenerate は現在のセッションをバックエンドから削除し、次回Saveで新しいIDを採番させる。
// ログイン時のセッション固定攻撃対策に使う。
func (s *Store) Regenerate(r *http.Request, sess *sessions.Session) error {
	if sess.ID != "" {
		if err := s.backend.Delete(r.Context(), sess.ID); err != nil {
			return err
		}
	}
	sess.ID = ""
	sess.IsNew = true
	delete(sess.Values, valueCreatedAt)
	return nil
}

// Destroy はセッションを削除し、Cookieを失効させる。
func (s *Store) Destroy(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	opts := *s.Options
	if sess.Options != nil {
		opts = *sess.Options
	}
	opts.MaxAge = -1
	sess.Options = &opts
	return s.Save(r, w, sess)
}

// UserID はセッションに紐づくユーザーIDを返す。匿名セッションでは空文字列。
func UserID(sess *sessions.Session) string {
	id, _ := sess.Values[valueUserID].(string)
	return id
}

// SetUserID はセッションにユーザーIDを設定する。
func SetUserID(sess *sessions.Session, userID string) {
	sess.Values[valueUserID] = userID
}

// compile-time interface check
var _ sessions.Store = (*Store)(nil)
