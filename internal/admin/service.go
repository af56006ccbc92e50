// Package admin は管理画面向けの集計を提供する。
package admin

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/repository"
)

// Service は管理画面のサービス層。
type Service struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	contactRepo repository.ContactRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	contactRepo repository.ContactRepository,
) *Service {
	return &Service{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
	}
}

// Stats はダッシュボードの集計値を読み取り時点で計算して返す。
// 顧客数は注文に紐付いたユーザーの重複なし件数（匿名注文は含まない）。
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("商品数の集計に失敗しました: %w", err)
	}

	summary, err := s.orderRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("注文の集計に失敗しました: %w", err)
	}

	unread, err := s.contactRepo.CountByStatus(ctx, model.ContactStatusUnread)
	if err != nil {
		return nil, fmt.Errorf("未読メッセージ数の集計に失敗しました: %w", err)
	}

	return &model.Stats{
		TotalProducts:  products,
		TotalOrders:    summary.Orders,
		TotalCustomers: summary.Customers,
		Revenue:        summary.Revenue,
		UnreadMessages: unread,
	}, nil
}
