package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Query describes a product search. Nil price bounds mean unbounded.
type Query struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// Service answers product searches and detail lookups, keeping the
// cache warm with every product it sees.
type Service struct {
	client *Client
	cache  Cache
	logger *slog.Logger
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a catalog service over the given client and cache.
func NewService(client *Client, cache Cache, opts ...ServiceOption) *Service {
	s := &Service{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries the catalog. An explicit category narrows the fetch to
// that category; otherwise, a query that names a category is treated as
// a category browse; otherwise the full listing is filtered by
// title/description substring. Price bounds apply last.
func (s *Service) Search(ctx context.Context, q Query) ([]Product, error) {
	products, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		filtered = append(filtered, p)
	}

	if err := s.cache.Put(ctx, filtered...); err != nil {
		s.logger.Warn("caching search results", "error", err)
	}

	s.logger.Debug("catalog search",
		"query", q.Query, "category", q.Category, "results", len(filtered))

	return filtered, nil
}

func (s *Service) fetch(ctx context.Context, q Query) ([]Product, error) {
	if q.Category != "" {
		return s.client.ProductsByCategory(ctx, q.Category)
	}

	query := strings.ToLower(strings.TrimSpace(q.Query))

	// "electronics" as a query means the category, not a substring hunt.
	if query != "" {
		categories, err := s.client.Categories(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing categories: %w", err)
		}
		for _, cat := range categories {
			if strings.ToLower(cat) == query {
				return s.client.ProductsByCategory(ctx, cat)
			}
		}
	}

	products, err := s.client.Products(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return products, nil
	}

	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// Product returns a single product, serving from cache when possible.
// Returns (nil, nil) when the catalog has no such id.
func (s *Service) Product(ctx context.Context, id int) (*Product, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("product cache lookup", "id", id, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	product, err := s.client.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	if err := s.cache.Put(ctx, *product); err != nil {
		s.logger.Warn("caching product", "id", id, "error", err)
	}
	return product, nil
}

// Categories returns the catalog's category names.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.client.Categories(ctx)
}
