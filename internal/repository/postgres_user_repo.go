package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/shopfront/internal/model"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, is_admin, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// Upsert はIDをキーにユーザーを作成または更新する。
// ログインのたびにプロフィールを上書きするが、is_adminは論理和で保持する。
func (r *PostgresUserRepo) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	saved, err := scanUser(r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, profile_image_url, is_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		 ON CONFLICT (id) DO UPDATE SET
		     email = EXCLUDED.email,
		     first_name = EXCLUDED.first_name,
		     last_name = EXCLUDED.last_name,
		     profile_image_url = EXCLUDED.profile_image_url,
		     is_admin = users.is_admin OR EXCLUDED.is_admin,
		     updated_at = now()
		 RETURNING `+userColumns,
		user.ID, user.Email, user.FirstName, user.LastName, user.ProfileImageURL, user.IsAdmin,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return saved, nil
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ProfileImageURL,
		&u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
