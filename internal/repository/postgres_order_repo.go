package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/shopfront/internal/model"
)

const orderColumns = `id, order_number, user_id, customer_name, customer_email, customer_phone,
	shipping_address, total, status, notes, created_at, updated_at`

// PostgresOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo はPostgresOrderRepoを生成する。
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// Create は注文と明細を同一トランザクションで作成する。
// いずれかの挿入に失敗した場合は全体をロールバックする。
func (r *PostgresOrderRepo) Create(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	status := order.Status
	if status == "" {
		status = model.OrderStatusPending
	}

	var userID sql.NullString
	if order.UserID != nil {
		userID = sql.NullString{String: *order.UserID, Valid: true}
	}

	saved, err := scanOrder(tx.QueryRowContext(ctx,
		`INSERT INTO orders (order_number, user_id, customer_name, customer_email, customer_phone,
		     shipping_address, total, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		 RETURNING `+orderColumns,
		order.OrderNumber, userID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.ShippingAddress, order.Total, string(status), order.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	saved.Items = make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		it.OrderID = saved.ID
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			it.OrderID, it.ProductID, it.Quantity, it.Price,
		).Scan(&it.ID); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
		saved.Items = append(saved.Items, it)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return saved, nil
}

// List は注文を新しい順に返す。userIDがnilなら全件を返す。
// 一覧では明細を読み込まない。
func (r *PostgresOrderRepo) List(ctx context.Context, userID *string) ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// FindByID は指定IDの注文を明細付きで取得する。見つからない場合はnilを返す。
func (r *PostgresOrderRepo) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	o.Items = make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return o, nil
}

// Summary は注文件数、ユーザーIDを持つ注文の顧客数、売上合計を集計する。
func (r *PostgresOrderRepo) Summary(ctx context.Context) (model.OrderSummary, error) {
	var (
		s       model.OrderSummary
		revenue decimal.NullDecimal
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT user_id), SUM(total) FROM orders`,
	).Scan(&s.Orders, &s.Customers, &revenue)
	if err != nil {
		return model.OrderSummary{}, fmt.Errorf("failed to summarize orders: %w", err)
	}
	if revenue.Valid {
		s.Revenue = revenue.Decimal
	}
	return s, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	o := &model.Order{}
	var (
		userID sql.NullString
		status string
	)
	if err := row.Scan(
		&o.ID, &o.OrderNumber, &userID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.Total, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if userID.Valid {
		uid := userID.String
		o.UserID = &uid
	}
	o.Status = model.OrderStatus(status)
	return o, nil
}

// compile-time interface check
var _ OrderRepository = (*PostgresOrderRepo)(nil)
