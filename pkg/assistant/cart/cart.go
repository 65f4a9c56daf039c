// Package cart stores per-session shopping carts.
package cart

import (
	"context"
	"math"
)

// Item is one cart line: a product snapshot plus a quantity. Title and
// price are captured at add time.
type Item struct {
	ProductID int     `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Store defines cart persistence, keyed by session id. Add upserts:
// adding a product already in the cart increments its quantity.
type Store interface {
	Add(ctx context.Context, sessionID string, item Item) error
	Remove(ctx context.Context, sessionID string, productID int) error
	Items(ctx context.Context, sessionID string) ([]Item, error)
	Clear(ctx context.Context, sessionID string) error
}

// Summary is a cart with computed totals.
type Summary struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

// Summarize computes totals over cart items. The total price is rounded
// to 2 decimals for display.
func Summarize(items []Item) Summary {
	summary := Summary{Items: items}
	if summary.Items == nil {
		summary.Items = []Item{}
	}

	var total float64
	for _, item := range items {
		summary.TotalItems += item.Quantity
		total += item.Price * float64(item.Quantity)
	}
	summary.TotalPrice = math.Round(total*100) / 100
	return summary
}
