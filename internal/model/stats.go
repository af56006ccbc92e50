package model

import "github.com/shopspring/decimal"

// Stats は管理画面ダッシュボードの集計値を表す。
type Stats struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalOrders    int             `json:"totalOrders"`
	TotalCustomers int             `json:"totalCustomers"`
	Revenue        decimal.Decimal `json:"revenue"`
	UnreadMessages int             `json:"unreadMessages"`
}

// OrderSummary は注文テーブルの集計結果を表す。
type OrderSummary struct {
	Orders    int
	Customers int
	Revenue   decimal.Decimal
}
