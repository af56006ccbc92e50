package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/shopfront/internal/model"
)

// PostgresContactRepo はPostgreSQLを使用したお問い合わせリポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

// Create はメッセージを作成する。状態が空の場合はunreadで保存する。
func (r *PostgresContactRepo) Create(ctx context.Context, msg *model.ContactMessage) (*model.ContactMessage, error) {
	m := *msg
	if m.Status == "" {
		m.Status = model.ContactStatusUnread
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO contact_messages (name, email, subject, message, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING id, created_at`,
		m.Name, m.Email, m.Subject, m.Message, string(m.Status),
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact message: %w", err)
	}
	return &m, nil
}

// List は全メッセージを新しい順に返す。
func (r *PostgresContactRepo) List(ctx context.Context) ([]*model.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, subject, message, status, created_at
		 FROM contact_messages ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*model.ContactMessage, 0)
	for rows.Next() {
		m := &model.ContactMessage{}
		var status string
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		m.Status = model.ContactStatus(status)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contact messages: %w", err)
	}
	return messages, nil
}

// CountByStatus は指定状態のメッセージ数を返す。
func (r *PostgresContactRepo) CountByStatus(ctx context.Context, status model.ContactStatus) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_messages WHERE status = $1`,
		string(status),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count contact messages: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)
