// Package shopping wires the assistant's tools to the catalog, the cart
// store, and the per-session conversation state.
package shopping

import (
	"context"
	"log/slog"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/cart"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/catalog"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/state"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/tools"
)

// Toolset builds per-session tool registries. Handlers close over the
// session id, so a registry from Bind only ever touches that session's
// cart and conversation state.
type Toolset struct {
	state   *state.Store
	carts   cart.Store
	catalog *catalog.Service
	logger  *slog.Logger
}

// Option configures the toolset.
type Option func(*Toolset)

// WithLogger sets the toolset logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toolset) {
		t.logger = logger
	}
}

// New creates a toolset over the given collaborators.
func New(st *state.Store, carts cart.Store, cat *catalog.Service, opts ...Option) *Toolset {
	t := &Toolset{
		state:   st,
		carts:   carts,
		catalog: cat,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Bind returns a registry of the seven shopping tools bound to one
// session.
func (t *Toolset) Bind(sessionID string) *tools.Registry {
	registry := tools.NewRegistry()

	registry.Register(tools.NewTool("search_products").
		Description("Search the product catalog. Returns up to five products and remembers them so the user can refer to them by position or price.").
		StringParam("query", "Free-text search terms, e.g. 'laptop'", true).
		StringParam("category", "Exact category name to browse instead of searching", false).
		NumberParam("min_price", "Only include products at or above this price", false).
		NumberParam("max_price", "Only include products at or below this price", false).
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.searchProducts(ctx, sessionID, input)
		}).
		Build())

	registry.Register(tools.NewTool("get_product_details").
		Description("Get the full details of one product by its id.").
		IntParam("product_id", "The product id", true).
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.getProductDetails(ctx, input)
		}).
		Build())

	registry.Register(tools.NewTool("add_to_cart").
		Description("Add a product to the user's cart. Give product_id when known, or a reference like 'the second one' or 'the cheapest' to pick from recent results.").
		IntParam("product_id", "The product id to add", false).
		IntParam("quantity", "How many to add, default 1", false).
		StringParam("reference", "A phrase referring to a recent result, e.g. 'the first one', 'the cheaper one'", false).
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.addToCart(ctx, sessionID, input)
		}).
		Build())

	registry.Register(tools.NewTool("remove_from_cart").
		Description("Remove a product from the user's cart.").
		IntParam("product_id", "The product id to remove", true).
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.removeFromCart(ctx, sessionID, input)
		}).
		Build())

	registry.Register(tools.NewTool("get_cart").
		Description("Show the user's cart with item and price totals.").
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.getCart(ctx, sessionID)
		}).
		Build())

	registry.Register(tools.NewTool("compare_products").
		Description("Compare products side by side. Give a reference like 'the first two' or 'all' to pick from recent results, or product_ids as a comma-separated list.").
		StringParam("reference", "A phrase selecting recent results, e.g. 'first two', 'all'", false).
		StringParam("product_ids", "Comma-separated product ids, e.g. '1,3,7'", false).
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.compareProducts(ctx, sessionID, input)
		}).
		Build())

	registry.Register(tools.NewTool("clear_cart").
		Description("Remove everything from the user's cart.").
		Handler(func(ctx context.Context, input map[string]any) (any, error) {
			return t.clearCart(ctx, sessionID)
		}).
		Build())

	return registry
}
