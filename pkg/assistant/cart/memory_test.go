package cart

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("add upserts quantity", func(t *testing.T) {
		store := NewMemoryStore()

		store.Add(ctx, "s", Item{ProductID: 1, Title: "Laptop", Price: 100, Quantity: 1})
		store.Add(ctx, "s", Item{ProductID: 1, Title: "Laptop", Price: 100, Quantity: 2})

		items, err := store.Items(ctx, "s")
		if err != nil {
			t.Fatalf("Items: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d line items, want 1", len(items))
		}
		if items[0].Quantity != 3 {
			t.Errorf("quantity = %d, want 3", items[0].Quantity)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(ctx, "s", Item{ProductID: 1, Quantity: 1})

		if err := store.Remove(ctx, "s", 1); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if err := store.Remove(ctx, "s", 1); err != nil {
			t.Fatalf("second Remove: %v", err)
		}
		if err := store.Remove(ctx, "s", 42); err != nil {
			t.Fatalf("Remove of absent product: %v", err)
		}

		items, _ := store.Items(ctx, "s")
		if len(items) != 0 {
			t.Errorf("got %d items, want 0", len(items))
		}
	})

	t.Run("carts are per session", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(ctx, "a", Item{ProductID: 1, Quantity: 1})

		items, _ := store.Items(ctx, "b")
		if len(items) != 0 {
			t.Error("session b should have an empty cart")
		}
	})

	t.Run("clear", func(t *testing.T) {
		store := NewMemoryStore()
		store.Add(ctx, "s", Item{ProductID: 1, Quantity: 1})
		store.Add(ctx, "s", Item{ProductID: 2, Quantity: 1})

		if err := store.Clear(ctx, "s"); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		items, _ := store.Items(ctx, "s")
		if len(items) != 0 {
			t.Errorf("got %d items after clear, want 0", len(items))
		}

		// Idempotent.
		if err := store.Clear(ctx, "s"); err != nil {
			t.Fatalf("second Clear: %v", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("totals", func(t *testing.T) {
		summary := Summarize([]Item{
			{ProductID: 1, Price: 10.50, Quantity: 2},
			{ProductID: 2, Price: 5.25, Quantity: 1},
		})

		if summary.TotalItems != 3 {
			t.Errorf("TotalItems = %d, want 3", summary.TotalItems)
		}
		if summary.TotalPrice != 26.25 {
			t.Errorf("TotalPrice = %v, want 26.25", summary.TotalPrice)
		}
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		summary := Summarize([]Item{
			{ProductID: 1, Price: 0.1, Quantity: 3},
		})
		if summary.TotalPrice != 0.3 {
			t.Errorf("TotalPrice = %v, want 0.3", summary.TotalPrice)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		summary := Summarize(nil)
		if summary.TotalItems != 0 || summary.TotalPrice != 0 {
			t.Errorf("got %+v, want zero totals", summary)
		}
		if summary.Items == nil {
			t.Error("Items should serialize as [], not null")
		}
	})
}
