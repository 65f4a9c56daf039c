// Package postgres implements catalog.Cache with PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/catalog"
)

// Cache implements catalog.Cache backed by a product_cache table.
type Cache struct {
	pool      *pgxpool.Pool
	tableName string
	ttl       time.Duration
}

// Option configures the cache.
type Option func(*Cache)

// WithTableName sets a custom table name.
func WithTableName(name string) Option {
	return func(c *Cache) {
		c.tableName = name
	}
}

// WithTTL sets how long cached products stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New creates a PostgreSQL product cache.
func New(pool *pgxpool.Pool, opts ...Option) *Cache {
	c := &Cache{
		pool:      pool,
		tableName: "product_cache",
		ttl:       time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(ctx context.Context, id int) (*catalog.Product, error) {
	query := fmt.Sprintf(`
		SELECT product_id, title, price, description, category, image, cached_at
		FROM %s
		WHERE product_id = $1
	`, c.tableName)

	row := c.pool.QueryRow(ctx, query, id)

	var p catalog.Product
	var cachedAt time.Time

	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Description, &p.Category, &p.Image, &cachedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning cached product: %w", err)
	}

	if c.ttl > 0 && time.Since(cachedAt) > c.ttl {
		return nil, nil
	}
	return &p, nil
}

func (c *Cache) Put(ctx context.Context, products ...catalog.Product) error {
	if len(products) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (product_id, title, price, description, category, image, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id) DO UPDATE SET
			title = EXCLUDED.title,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			cached_at = EXCLUDED.cached_at
	`, c.tableName)

	now := time.Now()
	for _, p := range products {
		_, err := c.pool.Exec(ctx, query,
			p.ID, p.Title, p.Price, p.Description, p.Category, p.Image, now,
		)
		if err != nil {
			return fmt.Errorf("caching product %d: %w", p.ID, err)
		}
	}
	return nil
}

// Migration returns the SQL to create the product cache table.
func Migration(tableName string) string {
	if tableName == "" {
		tableName = "product_cache"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			product_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			cached_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, tableName)
}
