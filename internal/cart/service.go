// Package cart はショッピングカートのドメインロジックを提供する。
//
// カートは認証済みユーザーまたは匿名セッションのどちらか一方に属する。
// すべての操作は呼び出し元のCartOwnerでスコープされ、
// 他人のカート項目を指定した場合は存在しない項目として扱う。
package cart

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/repository"
)

// Service はカートのサービス層。
type Service struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// List は所有者のカート項目を商品情報付きで返す。
func (s *Service) List(ctx context.Context, owner model.CartOwner) ([]*model.CartItem, error) {
	if !owner.Valid() {
		return nil, model.NewInvalidCartOwnerError()
	}

	items, err := s.cartRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("カートの取得に失敗しました: %w", err)
	}
	if items == nil {
		items = []*model.CartItem{}
	}
	return items, nil
}

// Add はカートに商品を追加する。同じ商品が既にあれば数量を加算する。
// 商品が存在しないか非公開の場合はPRODUCT_NOT_FOUNDを返す。
func (s *Service) Add(ctx context.Context, owner model.CartOwner, productID int64, quantity int) (*model.CartItem, error) {
	if !owner.Valid() {
		return nil, model.NewInvalidCartOwnerError()
	}
	if quantity < 1 {
		return nil, model.NewInvalidQuantityError()
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil || !product.Active {
		return nil, model.NewProductNotFoundError()
	}

	item, err := s.cartRepo.Add(ctx, owner, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("カートへの追加に失敗しました: %w", err)
	}
	return item, nil
}

// UpdateQuantity はカート項目の数量を変更する。
func (s *Service) UpdateQuantity(ctx context.Context, owner model.CartOwner, itemID int64, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, model.NewInvalidQuantityError()
	}
	if !owner.Valid() {
		return nil, model.NewInvalidCartOwnerError()
	}

	item, err := s.cartRepo.UpdateQuantity(ctx, owner, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("カート項目の更新に失敗しました: %w", err)
	}
	if item == nil {
		return nil, model.NewCartItemNotFoundError()
	}
	return item, nil
}

// Remove はカート項目を削除する。
func (s *Service) Remove(ctx context.Context, owner model.CartOwner, itemID int64) error {
	if !owner.Valid() {
		return model.NewInvalidCartOwnerError()
	}

	removed, err := s.cartRepo.Remove(ctx, owner, itemID)
	if err != nil {
		return fmt.Errorf("カート項目の削除に失敗しました: %w", err)
	}
	if !removed {
		return model.NewCartItemNotFoundError()
	}
	return nil
}

// Clear は所有者のカートを空にする。空のカートでも成功する。
func (s *Service) Clear(ctx context.Context, owner model.CartOwner) error {
	if !owner.Valid() {
		return model.NewInvalidCartOwnerError()
	}

	if err := s.cartRepo.Clear(ctx, owner); err != nil {
		return fmt.Errorf("カートのクリアに失敗しました: %w", err)
	}
	return nil
}
