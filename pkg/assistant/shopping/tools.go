package shopping

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/cart"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/catalog"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/state"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

func (t *Toolset) searchProducts(ctx context.Context, sessionID string, input map[string]any) (any, error) {
	query := catalog.Query{
		Query:    stringArg(input, "query"),
		Category: stringArg(input, "category"),
	}
	if v, ok := floatArg(input, "min_price"); ok {
		query.MinPrice = &v
	}
	if v, ok := floatArg(input, "max_price"); ok {
		query.MaxPrice = &v
	}

	products, err := t.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(products) > state.MaxSearchResults {
		products = products[:state.MaxSearchResults]
	}

	summaries := toSummaries(products)
	t.state.StoreSearchResults(sessionID, summaries)

	t.logger.Debug("search stored", "session", sessionID, "results", len(summaries))

	return map[string]any{
		"products": summaries,
		"count":    len(summaries),
	}, nil
}

func (t *Toolset) getProductDetails(ctx context.Context, input map[string]any) (any, error) {
	id, ok := intArg(input, "product_id")
	if !ok {
		return errPayload(CodeMissingInput, "product_id is required"), nil
	}

	product, err := t.catalog.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return errPayload(CodeNotFound, "no product with id "+strconv.Itoa(id)), nil
	}

	return map[string]any{
		"id":          product.ID,
		"title":       product.Title,
		"price":       product.Price,
		"description": product.Description,
		"category":    product.Category,
		"image":       product.Image,
	}, nil
}

func (t *Toolset) addToCart(ctx context.Context, sessionID string, input map[string]any) (any, error) {
	quantity, ok := intArg(input, "quantity")
	if !ok || quantity < 1 {
		quantity = 1
	}

	productID, hasID := intArg(input, "product_id")
	if !hasID {
		reference := stringArg(input, "reference")
		if reference == "" {
			return errPayload(CodeMissingInput, "give a product_id or a reference to a recent result"), nil
		}
		resolved, ok := t.state.ResolveSingle(sessionID, reference)
		if !ok {
			return errPayload(CodeUnresolvable, "could not tell which product '"+reference+"' refers to"), nil
		}
		productID = resolved.ID
	}

	product, err := t.catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return errPayload(CodeNotFound, "no product with id "+strconv.Itoa(productID)), nil
	}

	item := cart.Item{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Quantity:  quantity,
	}
	if err := t.carts.Add(ctx, sessionID, item); err != nil {
		return nil, err
	}

	return map[string]any{
		"added":    item,
		"quantity": quantity,
	}, nil
}

func (t *Toolset) removeFromCart(ctx context.Context, sessionID string, input map[string]any) (any, error) {
	id, ok := intArg(input, "product_id")
	if !ok {
		return errPayload(CodeMissingInput, "product_id is required"), nil
	}

	if err := t.carts.Remove(ctx, sessionID, id); err != nil {
		return nil, err
	}

	return map[string]any{"removed": id}, nil
}

func (t *Toolset) getCart(ctx context.Context, sessionID string) (any, error) {
	items, err := t.carts.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Summarize(items), nil
}

func (t *Toolset) compareProducts(ctx context.Context, sessionID string, input map[string]any) (any, error) {
	idList := stringArg(input, "product_ids")
	reference := stringArg(input, "reference")

	var products []types.ProductSummary
	var err error

	if reference != "" || idList == "" {
		products, err = t.resolveComparisonReference(sessionID, reference)
		if err != nil {
			return errPayload(CodeUnresolvable, "could not tell which products '"+reference+"' refers to"), nil
		}
	} else {
		products, err = t.lookupComparisonIDs(ctx, idList)
		if err != nil {
			return nil, err
		}
	}

	if len(products) == 0 {
		return errPayload(CodeNoProducts, "no products to compare"), nil
	}

	t.state.StoreComparedProducts(sessionID, products)

	result := map[string]any{
		"products": products,
		"count":    len(products),
	}
	if len(products) >= 2 {
		result["analysis"] = compareAnalysis(products)
	}
	return result, nil
}

// errUnresolved marks a failed reference resolution; it never leaves
// compareProducts.
var errUnresolved = errors.New("unresolvable reference")

func (t *Toolset) resolveComparisonReference(sessionID, reference string) ([]types.ProductSummary, error) {
	indices, ok := t.state.ResolveIndices(sessionID, reference)
	if !ok {
		return nil, errUnresolved
	}

	results := t.state.SearchResults(sessionID)
	products := make([]types.ProductSummary, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(results) {
			continue
		}
		products = append(products, results[i])
	}
	return products, nil
}

// lookupComparisonIDs resolves a comma-separated id list, silently
// skipping entries that do not parse or do not exist.
func (t *Toolset) lookupComparisonIDs(ctx context.Context, idList string) ([]types.ProductSummary, error) {
	var products []types.ProductSummary
	for _, raw := range strings.Split(idList, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		product, err := t.catalog.Product(ctx, id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			continue
		}
		products = append(products, types.ProductSummary{
			ID:       product.ID,
			Title:    product.Title,
			Price:    product.Price,
			Category: product.Category,
		})
	}
	return products, nil
}

func (t *Toolset) clearCart(ctx context.Context, sessionID string) (any, error) {
	if err := t.carts.Clear(ctx, sessionID); err != nil {
		return nil, err
	}
	return map[string]any{"cleared": true}, nil
}

func compareAnalysis(products []types.ProductSummary) map[string]any {
	cheapest := products[0]
	mostExpensive := products[0]
	for _, p := range products[1:] {
		if p.Price < cheapest.Price {
			cheapest = p
		}
		if p.Price > mostExpensive.Price {
			mostExpensive = p
		}
	}

	diff := math.Round((mostExpensive.Price-cheapest.Price)*100) / 100

	return map[string]any{
		"cheapest":        cheapest,
		"mostExpensive":   mostExpensive,
		"priceDifference": diff,
	}
}

func toSummaries(products []catalog.Product) []types.ProductSummary {
	summaries := make([]types.ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = types.ProductSummary{
			ID:       p.ID,
			Title:    p.Title,
			Price:    p.Price,
			Category: p.Category,
		}
	}
	return summaries
}
