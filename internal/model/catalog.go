package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category は商品カテゴリを表す。
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product は販売商品を表す。
// 価格は小数誤差を避けるためdecimalで保持し、JSONでは文字列として出力される。
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"categoryId"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductFilter は商品一覧の絞り込み条件を表す。
// nilのフィールドは条件に含めない。
type ProductFilter struct {
	CategoryID   *int64
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	FeaturedOnly bool
	ActiveOnly   bool
}

// ProductPatch は商品の部分更新内容を表す。nilのフィールドは変更しない。
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *int64
	ImageURL    *string
	Stock       *int
	Featured    *bool
	Active      *bool
}

// IsEmpty は更新対象のフィールドが1つもないかどうかを返す。
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.CategoryID == nil && p.ImageURL == nil && p.Stock == nil &&
		p.Featured == nil && p.Active == nil
}
