// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/shopfront/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Upsert はIDをキーにユーザーを作成または更新し、保存後の値を返す。
	// is_adminは一度trueになると上書きでfalseに戻らない。
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
}

// CategoryRepository はカテゴリの永続化インターフェース。
type CategoryRepository interface {
	// List は全カテゴリを名前順に返す。
	List(ctx context.Context) ([]*model.Category, error)
	// Create はカテゴリを作成し、ID・作成日時を埋めて返す。
	Create(ctx context.Context, category *model.Category) (*model.Category, error)
}

// ProductRepository は商品の永続化インターフェース。
type ProductRepository interface {
	// List はフィルタ条件に合う商品を作成日時の降順で返す。
	List(ctx context.Context, filter model.ProductFilter) ([]*model.Product, error)
	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Product, error)
	// Create は商品を作成し、ID・日時を埋めて返す。
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	// Update は商品を部分更新する。見つからない場合はnilを返す。
	Update(ctx context.Context, id int64, patch model.ProductPatch) (*model.Product, error)
	// Delete は商品を削除する。削除した場合trueを返す。
	Delete(ctx context.Context, id int64) (bool, error)
	// Count は全商品数を返す。
	Count(ctx context.Context) (int, error)
}

// CartRepository はカートの永続化インターフェース。
// すべての操作はCartOwnerでスコープされる。
type CartRepository interface {
	// ListByOwner は所有者のカート項目を商品情報付きで返す。
	ListByOwner(ctx context.Context, owner model.CartOwner) ([]*model.CartItem, error)
	// Add はカートに商品を追加する。同じ商品が既にある場合は数量を加算する。
	Add(ctx context.Context, owner model.CartOwner, productID int64, quantity int) (*model.CartItem, error)
	// UpdateQuantity は所有者のカート項目の数量を更新する。見つからない場合はnilを返す。
	UpdateQuantity(ctx context.Context, owner model.CartOwner, id int64, quantity int) (*model.CartItem, error)
	// Remove は所有者のカート項目を削除する。削除した場合trueを返す。
	Remove(ctx context.Context, owner model.CartOwner, id int64) (bool, error)
	// Clear は所有者のカートを空にする。空のカートに対してもエラーにならない。
	Clear(ctx context.Context, owner model.CartOwner) error
	// DeleteAnonymousOlderThan はcutoffより前に更新された匿名カート項目を削除し、件数を返す。
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrderRepository は注文の永続化インターフェース。
type OrderRepository interface {
	// Create は注文と明細を同一トランザクションで作成する。
	Create(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, error)
	// List は注文を新しい順に返す。userIDがnilなら全件。
	List(ctx context.Context, userID *string) ([]*model.Order, error)
	// FindByID は指定IDの注文を明細付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	// Summary は注文件数・顧客数・売上合計を集計する。
	Summary(ctx context.Context) (model.OrderSummary, error)
}

// ContactRepository はお問い合わせの永続化インターフェース。
type ContactRepository interface {
	// Create はメッセージを作成する。
	Create(ctx context.Context, msg *model.ContactMessage) (*model.ContactMessage, error)
	// List は全メッセージを新しい順に返す。
	List(ctx context.Context) ([]*model.ContactMessage, error)
	// CountByStatus は指定状態のメッセージ数を返す。
	CountByStatus(ctx context.Context, status model.ContactStatus) (int, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
