package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/shopfront/internal/model"
)

// cartItemJoinColumns はカート項目と商品を結合して読むときの列。
// c はカート項目（またはCTE）、p は商品のエイリアス。
const cartItemJoinColumns = `c.id, c.product_id, c.quantity, c.user_id, c.session_id, c.created_at, c.updated_at,
	p.id, p.name, p.description, p.price, p.category_id, p.image_url, p.stock, p.featured, p.active, p.created_at, p.updated_at`

// PostgresCartRepo はPostgreSQLを使用したカートリポジトリ。
type PostgresCartRepo struct {
	db *sql.DB
}

// NewPostgresCartRepo はPostgresCartRepoを生成する。
func NewPostgresCartRepo(db *sql.DB) *PostgresCartRepo {
	return &PostgresCartRepo{db: db}
}

// ownerCondition は所有者の列名と値を返す。
func ownerCondition(owner model.CartOwner) (string, string, error) {
	if !owner.Valid() {
		return "", "", fmt.Errorf("invalid cart owner: exactly one of user_id and session_id must be set")
	}
	if owner.UserID != "" {
		return "user_id", owner.UserID, nil
	}
	return "session_id", owner.SessionID, nil
}

// ListByOwner は所有者のカート項目を商品情報付きで追加順に返す。
func (r *PostgresCartRepo) ListByOwner(ctx context.Context, owner model.CartOwner) ([]*model.CartItem, error) {
	col, val, err := ownerCondition(owner)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cartItemJoinColumns+`
		 FROM cart_items c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.`+col+` = $1
		 ORDER BY c.created_at ASC, c.id ASC`,
		val,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]*model.CartItem, 0)
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}
	return items, nil
}

// Add はカートに商品を追加する。同じ所有者・商品の行があれば数量を加算する。
func (r *PostgresCartRepo) Add(ctx context.Context, owner model.CartOwner, productID int64, quantity int) (*model.CartItem, error) {
	col, _, err := ownerCondition(owner)
	if err != nil {
		return nil, err
	}

	item, err := scanCartItem(r.db.QueryRowContext(ctx,
		`WITH c AS (
		     INSERT INTO cart_items (user_id, session_id, product_id, quantity, created_at, updated_at)
		     VALUES ($1, $2, $3, $4, now(), now())
		     ON CONFLICT (`+col+`, product_id) WHERE `+col+` IS NOT NULL
		     DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		     RETURNING *
		 )
		 SELECT `+cartItemJoinColumns+` FROM c JOIN products p ON p.id = c.product_id`,
		nullString(owner.UserID), nullString(owner.SessionID), productID, quantity,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return item, nil
}

// UpdateQuantity は所有者のカート項目の数量を更新する。見つからない場合はnilを返す。
func (r *PostgresCartRepo) UpdateQuantity(ctx context.Context, owner model.CartOwner, id int64, quantity int) (*model.CartItem, error) {
	col, val, err := ownerCondition(owner)
	if err != nil {
		return nil, err
	}

	item, err := scanCartItem(r.db.QueryRowContext(ctx,
		`WITH c AS (
		     UPDATE cart_items SET quantity = $1, updated_at = now()
		     WHERE id = $2 AND `+col+` = $3
		     RETURNING *
		 )
		 SELECT `+cartItemJoinColumns+` FROM c JOIN products p ON p.id = c.product_id`,
		quantity, id, val,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

// Remove は所有者のカート項目を削除する。
func (r *PostgresCartRepo) Remove(ctx context.Context, owner model.CartOwner, id int64) (bool, error) {
	col, val, err := ownerCondition(owner)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND `+col+` = $2`,
		id, val,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// Clear は所有者のカートを空にする。
func (r *PostgresCartRepo) Clear(ctx context.Context, owner model.CartOwner) error {
	col, val, err := ownerCondition(owner)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE `+col+` = $1`, val); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// DeleteAnonymousOlderThan はcutoffより前に更新された匿名カート項目を削除する。
func (r *PostgresCartRepo) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id IS NULL AND updated_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete abandoned cart items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func scanCartItem(row rowScanner) (*model.CartItem, error) {
	item := &model.CartItem{}
	p := &model.Product{}
	var (
		userID, sessionID sql.NullString
		categoryID        sql.NullInt64
	)
	if err := row.Scan(
		&item.ID, &item.ProductID, &item.Quantity, &userID, &sessionID, &item.CreatedAt, &item.UpdatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &categoryID, &p.ImageURL,
		&p.Stock, &p.Featured, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	item.UserID = nullStringValue(userID)
	item.SessionID = nullStringValue(sessionID)
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	item.Product = p
	return item, nil
}

// compile-time interface check
var _ CartRepository = (*PostgresCartRepo)(nil)
