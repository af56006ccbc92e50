// Package order は注文のドメインロジックを提供する。
package order

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/shopfront/internal/metrics"
	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/repository"
)

// orderNumberLength は注文番号のランダム部分の桁数。
const orderNumberLength = 12

// Service は注文のサービス層。
type Service struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	metrics   metrics.MetricsCollector

	// newOrderNumber はテストで差し替え可能な注文番号生成関数。
	newOrderNumber func() string
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		metrics:        collector,
		newOrderNumber: generateOrderNumber,
	}
}

// generateOrderNumber は "ORD-" にUUID由来の英数字を続けた注文番号を返す。
func generateOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:orderNumberLength])
}

// Create は注文と明細を作成し、続けて同じ所有者のカートを空にする。
//
// 認証済みの場合は注文にユーザーIDを紐付ける。
// カートのクリアに失敗しても注文は確定済みのため、
// エラーをログとメトリクスに残して作成した注文を返す。
func (s *Service) Create(ctx context.Context, owner model.CartOwner, order *model.Order, items []model.OrderItem) (*model.Order, error) {
	if !owner.Valid() {
		return nil, model.NewInvalidCartOwnerError()
	}

	order.OrderNumber = s.newOrderNumber()
	order.Status = model.OrderStatusPending
	order.UserID = nil
	if owner.UserID != "" {
		userID := owner.UserID
		order.UserID = &userID
	}

	created, err := s.orderRepo.Create(ctx, order, items)
	if err != nil {
		return nil, fmt.Errorf("注文の作成に失敗しました: %w", err)
	}
	s.metrics.RecordOrderCreated()

	if err := s.cartRepo.Clear(ctx, owner); err != nil {
		s.metrics.RecordCartClearFailure()
		slog.Error("注文作成後のカートクリアに失敗しました",
			slog.String("order_number", created.OrderNumber),
			slog.String("owner", owner.Key()),
			slog.String("error", err.Error()),
		)
	}

	return created, nil
}

// List は注文一覧を返す。管理者は全件、それ以外は自分の注文のみ。
func (s *Service) List(ctx context.Context, user *model.User) ([]*model.Order, error) {
	var userID *string
	if !user.IsAdmin {
		id := user.ID
		userID = &id
	}

	orders, err := s.orderRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("注文一覧の取得に失敗しました: %w", err)
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return orders, nil
}

// Get は注文を明細付きで返す。
// 管理者以外が他人の注文を指定した場合はACCESS_DENIEDを返す。
func (s *Service) Get(ctx context.Context, user *model.User, id int64) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("注文の取得に失敗しました: %w", err)
	}
	if order == nil {
		return nil, model.NewOrderNotFoundError()
	}
	if !user.IsAdmin && !order.BelongsTo(user.ID) {
		return nil, model.NewAccessDeniedError()
	}
	return order, nil
}
