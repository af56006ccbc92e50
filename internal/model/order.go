package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus は注文の処理状態を表す。
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order は確定した注文を表す。匿名購入の場合UserIDはnil。
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          *string         `json:"userId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	Notes           string          `json:"notes"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem は注文明細を表す。Priceは注文時点の単価。
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// BelongsTo は注文が指定ユーザーのものかどうかを返す。
func (o *Order) BelongsTo(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}
