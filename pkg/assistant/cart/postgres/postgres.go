// Package postgres implements cart.Store with PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/cart"
)

// Store implements cart.Store backed by a cart_items table.
type Store struct {
	pool      *pgxpool.Pool
	tableName string
}

// Option configures the store.
type Option func(*Store)

// WithTableName sets a custom table name.
func WithTableName(name string) Option {
	return func(s *Store) {
		s.tableName = name
	}
}

// New creates a PostgreSQL cart store.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:      pool,
		tableName: "cart_items",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Add(ctx context.Context, sessionID string, item cart.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, product_id, title, price, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id, product_id) DO UPDATE SET
			quantity = %s.quantity + EXCLUDED.quantity,
			updated_at = NOW()
	`, s.tableName, s.tableName)

	_, err := s.pool.Exec(ctx, query,
		sessionID, item.ProductID, item.Title, item.Price, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("adding cart item: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, sessionID string, productID int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = $1 AND product_id = $2`, s.tableName)
	_, err := s.pool.Exec(ctx, query, sessionID, productID)
	if err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}
	return nil
}

func (s *Store) Items(ctx context.Context, sessionID string) ([]cart.Item, error) {
	query := fmt.Sprintf(`
		SELECT product_id, title, price, quantity
		FROM %s
		WHERE session_id = $1
		ORDER BY updated_at
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying cart items: %w", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var item cart.Item
		if err := rows.Scan(&item.ProductID, &item.Title, &item.Price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_id = $1`, s.tableName)
	_, err := s.pool.Exec(ctx, query, sessionID)
	if err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

// Migration returns the SQL to create the cart items table.
func Migration(tableName string) string {
	if tableName == "" {
		tableName = "cart_items"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			session_id TEXT NOT NULL,
			product_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_id, product_id)
		);
	`, tableName)
}
