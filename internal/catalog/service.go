// Package catalog はカテゴリと商品のドメインロジックを提供する。
package catalog

import (
	"context"
	"fmt"

	"github.com/hitoshi/shopfront/internal/model"
	"github.com/hitoshi/shopfront/internal/repository"
)

// DescriptionSanitizer は商品説明のHTMLを無害化するインターフェース。
type DescriptionSanitizer interface {
	SanitizeRichText(html string) string
}

// Service はカタログのサービス層。
type Service struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	sanitizer    DescriptionSanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	sanitizer DescriptionSanitizer,
) *Service {
	return &Service{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		sanitizer:    sanitizer,
	}
}

// ListCategories は全カテゴリを返す。カテゴリがない場合は空スライス。
func (s *Service) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("カテゴリ一覧の取得に失敗しました: %w", err)
	}
	if categories == nil {
		categories = []*model.Category{}
	}
	return categories, nil
}

// CreateCategory はカテゴリを作成する。
func (s *Service) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	created, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの作成に失敗しました: %w", err)
	}
	return created, nil
}

// ListProducts はフィルタ条件に合う商品を返す。
func (s *Service) ListProducts(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	if products == nil {
		products = []*model.Product{}
	}
	return products, nil
}

// GetProduct は指定IDの商品を返す。
// 非公開商品も返す（管理画面からの参照に使うため）。
func (s *Service) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if product == nil {
		return nil, model.NewProductNotFoundError()
	}
	return product, nil
}

// CreateProduct は説明文を無害化したうえで商品を作成する。
func (s *Service) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.Description = s.sanitizer.SanitizeRichText(product.Description)

	created, err := s.productRepo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("商品の作成に失敗しました: %w", err)
	}
	return created, nil
}

// UpdateProduct は商品を部分更新する。
func (s *Service) UpdateProduct(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error) {
	if patch.Description != nil {
		sanitized := s.sanitizer.SanitizeRichText(*patch.Description)
		patch.Description = &sanitized
	}

	updated, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("商品の更新に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewProductNotFoundError()
	}
	return updated, nil
}

// DeleteProduct は商品を削除する。
// カート内の同商品はDBのカスケードで削除され、注文明細は残る。
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("商品の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewProductNotFoundError()
	}
	return nil
}
