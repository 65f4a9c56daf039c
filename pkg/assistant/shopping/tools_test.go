package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/cart"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/catalog"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/state"
)

var fixtureProducts = []catalog.Product{
	{ID: 1, Title: "Budget Laptop", Price: 399.99, Description: "Entry level laptop", Category: "electronics"},
	{ID: 2, Title: "Pro Laptop", Price: 1299.00, Description: "Laptop for professionals", Category: "electronics"},
	{ID: 3, Title: "Gaming Laptop", Price: 999.50, Description: "Laptop with a big GPU", Category: "electronics"},
	{ID: 4, Title: "Travel Laptop", Price: 650.00, Description: "Light laptop", Category: "electronics"},
	{ID: 5, Title: "Student Laptop", Price: 450.00, Description: "Cheap laptop for school", Category: "electronics"},
	{ID: 6, Title: "Workstation Laptop", Price: 2100.00, Description: "Heavy laptop", Category: "electronics"},
	{ID: 7, Title: "Desk Lamp", Price: 25.00, Description: "A lamp", Category: "home"},
}

type fixture struct {
	toolset *Toolset
	state   *state.Store
	carts   *cart.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fixtureProducts)
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"electronics", "home"})
	})
	for i := range fixtureProducts {
		p := fixtureProducts[i]
		mux.HandleFunc(fmt.Sprintf("/products/%d", p.ID), func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(p)
		})
	}
	mux.HandleFunc("/products/999", func(w http.ResponseWriter, r *http.Request) {})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	stateStore := state.NewStore()
	carts := cart.NewMemoryStore()
	client := catalog.NewClient(catalog.WithBaseURL(server.URL))
	service := catalog.NewService(client, catalog.NewMemoryCache())

	return &fixture{
		toolset: New(stateStore, carts, service),
		state:   stateStore,
		carts:   carts,
	}
}

func (f *fixture) execute(t *testing.T, session, tool string, input map[string]any) map[string]any {
	t.Helper()

	out, err := f.toolset.Bind(session).Execute(context.Background(), tool, input)
	if err != nil {
		t.Fatalf("%s: %v", tool, err)
	}

	// Round-trip through JSON so payloads look exactly as the model
	// sees them.
	b, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshaling %s output: %v", tool, err)
	}
	var result map[string]any
	if err := json.Unmarshal(b, &result); err != nil {
		t.Fatalf("unmarshaling %s output: %v", tool, err)
	}
	return result
}

func errorCode(result map[string]any) string {
	code, _ := result["code"].(string)
	return code
}

func TestSearchProducts(t *testing.T) {
	f := newFixture(t)

	t.Run("keeps top five and stores them", func(t *testing.T) {
		result := f.execute(t, "s1", "search_products", map[string]any{"query": "laptop"})

		if got := result["count"].(float64); got != 5 {
			t.Errorf("count = %v, want 5", got)
		}
		stored := f.state.SearchResults("s1")
		if len(stored) != 5 {
			t.Fatalf("stored %d results, want 5", len(stored))
		}
		if stored[0].ID != 1 {
			t.Errorf("first stored ID = %d, want 1 (catalog order)", stored[0].ID)
		}
	})

	t.Run("new search resets comparison context", func(t *testing.T) {
		f.execute(t, "s1", "compare_products", map[string]any{"reference": "first two"})
		f.execute(t, "s1", "search_products", map[string]any{"query": "lamp"})

		st := f.state.GetOrCreate("s1")
		if len(st.LastComparedProducts) != 0 {
			t.Error("search should reset compared products")
		}
	})

	t.Run("empty result is success", func(t *testing.T) {
		result := f.execute(t, "s2", "search_products", map[string]any{"query": "submarine"})
		if got := result["count"].(float64); got != 0 {
			t.Errorf("count = %v, want 0", got)
		}
		if errorCode(result) != "" {
			t.Errorf("unexpected error payload: %v", result)
		}
	})

	t.Run("price filter", func(t *testing.T) {
		result := f.execute(t, "s3", "search_products", map[string]any{
			"query":     "laptop",
			"max_price": 500.0,
		})
		if got := result["count"].(float64); got != 2 {
			t.Errorf("count = %v, want 2 (budget and student)", got)
		}
	})
}

func TestGetProductDetails(t *testing.T) {
	f := newFixture(t)

	t.Run("found", func(t *testing.T) {
		result := f.execute(t, "s", "get_product_details", map[string]any{"product_id": 2.0})
		if result["title"] != "Pro Laptop" {
			t.Errorf("title = %v", result["title"])
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		result := f.execute(t, "s", "get_product_details", map[string]any{"product_id": 999.0})
		if errorCode(result) != CodeNotFound {
			t.Errorf("code = %q, want %q", errorCode(result), CodeNotFound)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		result := f.execute(t, "s", "get_product_details", map[string]any{})
		if errorCode(result) != CodeMissingInput {
			t.Errorf("code = %q, want %q", errorCode(result), CodeMissingInput)
		}
	})
}

func TestAddToCart(t *testing.T) {
	t.Run("by id with default quantity", func(t *testing.T) {
		f := newFixture(t)
		f.execute(t, "s", "add_to_cart", map[string]any{"product_id": 1.0})

		items, _ := f.carts.Items(context.Background(), "s")
		if len(items) != 1 || items[0].Quantity != 1 {
			t.Fatalf("items = %v, want one line with quantity 1", items)
		}
		if items[0].Title != "Budget Laptop" {
			t.Errorf("title = %q", items[0].Title)
		}
	})

	t.Run("by reference, repeated add increments", func(t *testing.T) {
		f := newFixture(t)
		f.execute(t, "s", "search_products", map[string]any{"query": "laptop"})

		f.execute(t, "s", "add_to_cart", map[string]any{"reference": "the second one"})
		f.execute(t, "s", "add_to_cart", map[string]any{"reference": "the second one"})

		items, _ := f.carts.Items(context.Background(), "s")
		if len(items) != 1 {
			t.Fatalf("got %d line items, want 1", len(items))
		}
		if items[0].ProductID != 2 {
			t.Errorf("ProductID = %d, want 2 (second search result)", items[0].ProductID)
		}
		if items[0].Quantity != 2 {
			t.Errorf("Quantity = %d, want 2", items[0].Quantity)
		}
	})

	t.Run("cheapest reference", func(t *testing.T) {
		f := newFixture(t)
		f.execute(t, "s", "search_products", map[string]any{"query": "laptop"})

		f.execute(t, "s", "add_to_cart", map[string]any{"reference": "the cheapest", "quantity": 2.0})

		items, _ := f.carts.Items(context.Background(), "s")
		if len(items) != 1 || items[0].ProductID != 1 {
			t.Fatalf("items = %v, want budget laptop", items)
		}
		if items[0].Quantity != 2 {
			t.Errorf("Quantity = %d, want 2", items[0].Quantity)
		}
	})

	t.Run("unresolvable reference", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "s", "add_to_cart", map[string]any{"reference": "the blue one"})
		if errorCode(result) != CodeUnresolvable {
			t.Errorf("code = %q, want %q", errorCode(result), CodeUnresolvable)
		}

		items, _ := f.carts.Items(context.Background(), "s")
		if len(items) != 0 {
			t.Error("failed add should not touch the cart")
		}
	})

	t.Run("neither id nor reference", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "s", "add_to_cart", map[string]any{})
		if errorCode(result) != CodeMissingInput {
			t.Errorf("code = %q, want %q", errorCode(result), CodeMissingInput)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "s", "add_to_cart", map[string]any{"product_id": 999.0})
		if errorCode(result) != CodeNotFound {
			t.Errorf("code = %q, want %q", errorCode(result), CodeNotFound)
		}
	})
}

func TestCart(t *testing.T) {
	f := newFixture(t)

	f.execute(t, "s", "add_to_cart", map[string]any{"product_id": 1.0, "quantity": 2.0})
	f.execute(t, "s", "add_to_cart", map[string]any{"product_id": 7.0})

	t.Run("get cart totals", func(t *testing.T) {
		result := f.execute(t, "s", "get_cart", nil)

		if got := result["totalItems"].(float64); got != 3 {
			t.Errorf("totalItems = %v, want 3", got)
		}
		// 2*399.99 + 25.00
		if got := result["totalPrice"].(float64); got != 824.98 {
			t.Errorf("totalPrice = %v, want 824.98", got)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		f.execute(t, "s", "remove_from_cart", map[string]any{"product_id": 7.0})
		result := f.execute(t, "s", "remove_from_cart", map[string]any{"product_id": 7.0})
		if errorCode(result) != "" {
			t.Errorf("unexpected error payload: %v", result)
		}
	})

	t.Run("clear cart", func(t *testing.T) {
		f.execute(t, "s", "clear_cart", nil)

		result := f.execute(t, "s", "get_cart", nil)
		if got := result["totalItems"].(float64); got != 0 {
			t.Errorf("totalItems = %v, want 0", got)
		}
	})
}

func TestCompareProducts(t *testing.T) {
	t.Run("reference first two with analysis", func(t *testing.T) {
		f := newFixture(t)
		f.execute(t, "s", "search_products", map[string]any{"query": "laptop"})

		result := f.execute(t, "s", "compare_products", map[string]any{"reference": "the first two"})

		if got := result["count"].(float64); got != 2 {
			t.Fatalf("count = %v, want 2", got)
		}
		analysis := result["analysis"].(map[string]any)
		cheapest := analysis["cheapest"].(map[string]any)
		if cheapest["id"].(float64) != 1 {
			t.Errorf("cheapest = %v, want product 1", cheapest)
		}
		mostExpensive := analysis["mostExpensive"].(map[string]any)
		if mostExpensive["id"].(float64) != 2 {
			t.Errorf("mostExpensive = %v, want product 2", mostExpensive)
		}
		// 1299.00 - 399.99
		if got := analysis["priceDifference"].(float64); got != 899.01 {
			t.Errorf("priceDifference = %v, want 899.01", got)
		}

		st := f.state.GetOrCreate("s")
		if len(st.LastComparedProducts) != 2 {
			t.Errorf("stored %d compared products, want 2", len(st.LastComparedProducts))
		}
		if len(st.LastSearchResults) != 5 {
			t.Error("comparison should not clobber search results")
		}
	})

	t.Run("explicit id list skips unknown ids", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "s", "compare_products", map[string]any{"product_ids": "1, 999, oops, 3"})

		if got := result["count"].(float64); got != 2 {
			t.Fatalf("count = %v, want 2", got)
		}
	})

	t.Run("top three with two results is unresolvable and leaves state alone", func(t *testing.T) {
		f := newFixture(t)
		f.execute(t, "s", "search_products", map[string]any{"query": "laptop", "max_price": 500.0})

		result := f.execute(t, "s", "compare_products", map[string]any{"reference": "top three"})
		if errorCode(result) != CodeUnresolvable {
			t.Errorf("code = %q, want %q", errorCode(result), CodeUnresolvable)
		}

		st := f.state.GetOrCreate("s")
		if len(st.LastComparedProducts) != 0 {
			t.Error("failed compare should not store a comparison")
		}
		if len(st.LastSearchResults) != 2 {
			t.Error("failed compare should not touch search results")
		}
	})

	t.Run("all with no results yields no_products", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "fresh", "compare_products", map[string]any{"reference": "all"})
		if errorCode(result) != CodeNoProducts {
			t.Errorf("code = %q, want %q", errorCode(result), CodeNoProducts)
		}
	})

	t.Run("no inputs is unresolvable", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "s", "compare_products", map[string]any{})
		if errorCode(result) != CodeUnresolvable {
			t.Errorf("code = %q, want %q", errorCode(result), CodeUnresolvable)
		}
	})

	t.Run("single product has no analysis", func(t *testing.T) {
		f := newFixture(t)
		result := f.execute(t, "s", "compare_products", map[string]any{"product_ids": "4"})
		if _, ok := result["analysis"]; ok {
			t.Error("one product should not produce an analysis")
		}
	})

	t.Run("comparatives then prefer the compared set", func(t *testing.T) {
		f := newFixture(t)
		f.execute(t, "s", "search_products", map[string]any{"query": "laptop"})
		f.execute(t, "s", "compare_products", map[string]any{"product_ids": "3,4"})

		resolved, ok := f.state.ResolveSingle("s", "the cheaper one")
		if !ok || resolved.ID != 4 {
			t.Errorf("resolved %v ok=%v, want product 4 from the compared set", resolved, ok)
		}
	})
}

func TestBindSessionIsolation(t *testing.T) {
	f := newFixture(t)

	f.execute(t, "alice", "search_products", map[string]any{"query": "laptop"})
	f.execute(t, "alice", "add_to_cart", map[string]any{"reference": "first"})

	result := f.execute(t, "bob", "add_to_cart", map[string]any{"reference": "first"})
	if errorCode(result) != CodeUnresolvable {
		t.Errorf("bob resolved against alice's results: %v", result)
	}

	items, _ := f.carts.Items(context.Background(), "bob")
	if len(items) != 0 {
		t.Error("bob's cart should be empty")
	}
}

func TestToolDefinitions(t *testing.T) {
	f := newFixture(t)
	registry := f.toolset.Bind("s")

	want := []string{
		"search_products", "get_product_details", "add_to_cart",
		"remove_from_cart", "get_cart", "compare_products", "clear_cart",
	}
	got := registry.Names()
	if len(got) != len(want) {
		t.Fatalf("got %d tools, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool %d = %q, want %q", i, got[i], want[i])
		}
	}
}
