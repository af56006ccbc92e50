// Package contact はお問い合わせメッセージのドメインロジックを提供する。
package contact

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/repository"
)

// TextSanitizer はプレーンテキストからタグを除去するインターフェース。
type TextSanitizer interface {
	SanitizePlainText(text string) string
}

// Service はお問い合わせのサービス層。
type Service struct {
	repo      repository.ContactRepository
	sanitizer TextSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ContactRepository, sanitizer TextSanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// Submit はメッセージを無害化して未読状態で保存する。
// 無害化で本文が空になった場合はバリデーションエラーを返す。
func (s *Service) Submit(ctx context.Context, msg *model.ContactMessage) (*model.ContactMessage, error) {
	msg.Name = s.sanitizer.SanitizePlainText(msg.Name)
	msg.Subject = s.sanitizer.SanitizePlainText(msg.Subject)
	msg.Message = s.sanitizer.SanitizePlainText(msg.Message)
	msg.Status = model.ContactStatusUnread

	var fields []model.FieldError
	if msg.Name == "" {
		fields = append(fields, model.FieldError{Field: "name", Rule: "required"})
	}
	if msg.Message == "" {
		fields = append(fields, model.FieldError{Field: "message", Rule: "required"})
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields)
	}

	created, err := s.repo.Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("お問い合わせの保存に失敗しました: %w", err)
	}
	return created, nil
}

// List は全メッセージを新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.ContactMessage, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("お問い合わせ一覧の取得に失敗しました: %w", err)
	}
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	return messages, nil
}
