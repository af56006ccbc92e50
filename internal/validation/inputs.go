package validation

import (
	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopfront/internal/model"
)

// CategoryInput はカテゴリ作成リクエスト。
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

// ToCategory はモデルに変換する。
func (in *CategoryInput) ToCategory() *model.Category {
	return &model.Category{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
}

// ProductInput は商品作成リクエスト。
type ProductInput struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"max=10000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	CategoryID  *int64           `json:"categoryId" validate:"omitempty,gt=0"`
	ImageURL    string           `json:"imageUrl" validate:"omitempty,url"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Featured    *bool            `json:"featured"`
	Active      *bool            `json:"active"`
}

// ToProduct はモデルに変換する。featuredの既定値はfalse、activeはtrue。
func (in *ProductInput) ToProduct() *model.Product {
	p := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		Active:      true,
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	return p
}

// ProductPatchInput は商品の部分更新リクエスト。すべてのフィールドが任意。
type ProductPatchInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=10000"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	CategoryID  *int64           `json:"categoryId" validate:"omitempty,gt=0"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,url"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Featured    *bool            `json:"featured"`
	Active      *bool            `json:"active"`
}

// ToPatch はモデルの部分更新に変換する。
func (in *ProductPatchInput) ToPatch() model.ProductPatch {
	return model.ProductPatch{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		Stock:       in.Stock,
		Featured:    in.Featured,
		Active:      in.Active,
	}
}

// CartItemInput はカート追加リクエスト。quantity省略時は1。
type CartItemInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  *int  `json:"quantity" validate:"omitempty,gte=1,lte=999"`
}

// QuantityOrDefault は数量を返す。省略時は1。
func (in *CartItemInput) QuantityOrDefault() int {
	if in.Quantity == nil {
		return 1
	}
	return *in.Quantity
}

// CartQuantityInput はカート数量更新リクエスト。
// 数量の妥当性はハンドラーで"Invalid quantity"として検査する。
type CartQuantityInput struct {
	Quantity *int `json:"quantity"`
}

// OrderDataInput は注文ヘッダ部分。
type OrderDataInput struct {
	CustomerName    string           `json:"customerName" validate:"required,min=1,max=200"`
	CustomerEmail   string           `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone   string           `json:"customerPhone" validate:"max=50"`
	ShippingAddress string           `json:"shippingAddress" validate:"required,min=1,max=1000"`
	Total           *decimal.Decimal `json:"total" validate:"required,gte=0"`
	Notes           string           `json:"notes" validate:"max=2000"`
}

// OrderItemInput は注文明細。
type OrderItemInput struct {
	ProductID int64            `json:"productId" validate:"required,gt=0"`
	Quantity  int              `json:"quantity" validate:"required,gte=1"`
	Price     *decimal.Decimal `json:"price" validate:"required,gte=0"`
}

// OrderInput は注文作成リクエスト。
type OrderInput struct {
	OrderData *OrderDataInput  `json:"orderData" validate:"required"`
	Items     []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// ToOrder は注文と明細に変換する。ユーザーIDと注文番号は呼び出し側で設定する。
func (in *OrderInput) ToOrder() (*model.Order, []model.OrderItem) {
	d := in.OrderData
	order := &model.Order{
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		CustomerPhone:   d.CustomerPhone,
		ShippingAddress: d.ShippingAddress,
		Total:           *d.Total,
		Status:          model.OrderStatusPending,
		Notes:           d.Notes,
	}
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, model.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     *it.Price,
		})
	}
	return order, items
}

// ContactMessageInput はお問い合わせ送信リクエスト。
type ContactMessageInput struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// ToMessage はモデルに変換する。状態は常にunread。
func (in *ContactMessageInput) ToMessage() *model.ContactMessage {
	return &model.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
		Status:  model.ContactStatusUnread,
	}
}
