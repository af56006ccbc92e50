// Package auth はGoogle OAuthによるログインと、ログインユーザーの解決を提供する。
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/repository"
)

// OAuthProfile はIdPから取得したユーザープロフィールを表す。
type OAuthProfile struct {
	ExternalID      string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はstateを含む認可URLを生成する。
	GetLoginURL(state string) (string, error)
	// ExchangeCode は認可コードをトークンに交換し、プロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthProfile, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// AdminEmails に含まれるメールアドレスのユーザーはログイン時に管理者になる。
	AdminEmails []string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth       OAuthProvider
	userRepo    repository.UserRepository
	adminEmails map[string]struct{}
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, userRepo repository.UserRepository, config ServiceConfig) *Service {
	admins := make(map[string]struct{}, len(config.AdminEmails))
	for _, e := range config.AdminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{
		oauth:       oauth,
		userRepo:    userRepo,
		adminEmails: admins,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) (string, error) {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback は認可コードを交換し、ユーザーを1回だけupsertして返す。
// upsertに失敗した場合はログイン失敗とする。再試行はしない。
func (s *Service) HandleCallback(ctx context.Context, code string) (*model.User, error) {
	profile, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	user, err := s.userRepo.Upsert(ctx, &model.User{
		ID:              profile.ExternalID,
		Email:           profile.Email,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		ProfileImageURL: profile.ProfileImageURL,
		IsAdmin:         s.isAdminEmail(profile.Email),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// CurrentUser はセッションに紐づくユーザーを取得する。存在しない場合はnilを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, nil
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *Service) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[normalizeEmail(email)]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
