package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// HTTPClient はトークン交換とユーザー情報取得に使うクライアント。
	// nilの場合はタイムアウト付きのクライアントを使う。テストで差し替える。
	HTTPClient *http.Client
}

// GoogleOAuthProvider はgothのGoogleプロバイダーをラップし、
// OAuthProviderインターフェースを実装する。
type GoogleOAuthProvider struct {
	provider *google.Provider
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
// スコープにはopenid、profile、emailを要求する。openidがないとid_tokenが返らない。
func NewGoogleOAuthProvider(config GoogleOAuthConfig) *GoogleOAuthProvider {
	p := google.New(config.ClientID, config.ClientSecret, config.CallbackURL, "openid", "profile", "email")
	if config.HTTPClient != nil {
		p.HTTPClient = config.HTTPClient
	} else {
		p.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleOAuthProvider{provider: p}
}

// GetLoginURL はstateを埋め込んだGoogleの認可URLを返す。
func (p *GoogleOAuthProvider) GetLoginURL(state string) (string, error) {
	sess, err := p.provider.BeginAuth(state)
	if err != nil {
		return "", fmt.Errorf("failed to begin google auth: %w", err)
	}
	authURL, err := sess.GetAuthURL()
	if err != nil {
		return "", fmt.Errorf("failed to build google auth url: %w", err)
	}
	return authURL, nil
}

// ExchangeCode は認可コードをアクセストークンに交換し、プロフィールを取得する。
// gothはcontextを受け取らないため、呼び出し前にキャンセル済みかだけ確認する。
func (p *GoogleOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess := &google.Session{}
	if err := authorize(p.provider, sess, code); err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	user, err := p.provider.FetchUser(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("empty user id in google profile")
	}

	return profileFromGoth(user), nil
}

// authorize はトークン交換を行う。
// gothのAuthorizeはレスポンスにid_tokenがないとpanicするため、エラーに変換する。
func authorize(provider *google.Provider, sess *google.Session, code string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", errMalformedTokenResponse, rec)
		}
	}()
	_, err = sess.Authorize(provider, url.Values{"code": {code}})
	return err
}

var errMalformedTokenResponse = errors.New("malformed token response")

func profileFromGoth(u goth.User) *OAuthProfile {
	return &OAuthProfile{
		ExternalID:      u.UserID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.AvatarURL,
	}
}

// compile-time interface check
var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
