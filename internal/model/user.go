// Package model はドメインモデルを定義する。
package model

import "time"

// User はOAuthログインしたユーザーを表す。
// IDはIdPのsubject（Googleのユーザー ID）をそのまま使う。
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfileImageURL string    `json:"profileImageUrl"`
	IsAdmin         bool      `json:"isAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Session はサーバー側で保持するセッションを表す。
// UserIDが空の場合は匿名セッション。ユーザー情報そのものは保持しない。
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired はセッションが期限切れかどうかを返す。
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
