// Package session はサーバー側セッションの保存先と、
// gorilla/sessionsのStore実装を提供する。
package session

import (
	"context"

	"github.com/hitoshi/shopfront/internal/model"
)

// Backend はセッションの保存先を抽象化する。
// 実装は複数goroutineから同時に呼ばれても安全でなければならない。
type Backend interface {
	// Load は指定IDのセッションを返す。存在しないか期限切れの場合はnilを返す。
	Load(ctx context.Context, id string) (*model.Session, error)
	// Save はセッションを保存する。ExpiresAtを過ぎたものは保存しない。
	Save(ctx context.Context, s *model.Session) error
	// Delete はセッションを削除する。存在しなくてもエラーにならない。
	Delete(ctx context.Context, id string) error
	// Close はバックエンドが保持するリソースを解放する。
	Close() error
}
