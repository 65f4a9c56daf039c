package state

import (
	"strings"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

// Reference resolution is a fixed, ordered rule table. Matching is
// case-insensitive substring matching against the trimmed phrase; the
// first rule whose predicate matches decides the outcome, even if its
// resolution then fails (a matched rule never falls through to later
// rules).

// ordinals in priority order: the first word found wins, even if a later
// ordinal also appears in the phrase.
var ordinals = []struct {
	word  string
	index int
}{
	{"first", 0},
	{"second", 1},
	{"third", 2},
	{"fourth", 3},
	{"fifth", 4},
}

var (
	cheapWords     = []string{"cheaper", "cheapest", "lowest"}
	expensiveWords = []string{"expensive", "highest", "most"}
)

type singleRule struct {
	name    string
	applies func(ref string) bool
	resolve func(st SessionState, ref string) (types.ProductSummary, bool)
}

// singleRules in priority order. A phrase mentioning both an ordinal and
// "expensive" is treated as ordinal. The "two" guard keeps "first two"
// out of the ordinal rule so it reaches the multi-product resolver; note
// the guard only excludes "two", so "first three" still resolves here as
// singular "first".
var singleRules = []singleRule{
	{
		name: "ordinal",
		applies: func(ref string) bool {
			if strings.Contains(ref, "two") {
				return false
			}
			return containsAny(ref, ordinalWords())
		},
		resolve: resolveOrdinal,
	},
	{
		name:    "cheap-comparative",
		applies: func(ref string) bool { return containsAny(ref, cheapWords) },
		resolve: func(st SessionState, _ string) (types.ProductSummary, bool) {
			return pickByPrice(st, func(a, b float64) bool { return a < b })
		},
	},
	{
		name:    "expensive-comparative",
		applies: func(ref string) bool { return containsAny(ref, expensiveWords) },
		resolve: func(st SessionState, _ string) (types.ProductSummary, bool) {
			return pickByPrice(st, func(a, b float64) bool { return a > b })
		},
	},
}

func resolveSingle(st SessionState, reference string) (types.ProductSummary, bool) {
	ref := strings.ToLower(strings.TrimSpace(reference))

	for _, rule := range singleRules {
		if rule.applies(ref) {
			return rule.resolve(st, ref)
		}
	}
	return types.ProductSummary{}, false
}

func resolveOrdinal(st SessionState, ref string) (types.ProductSummary, bool) {
	for _, ord := range ordinals {
		if !strings.Contains(ref, ord.word) {
			continue
		}
		if ord.index >= len(st.LastSearchResults) {
			return types.ProductSummary{}, false
		}
		return st.LastSearchResults[ord.index], true
	}
	return types.ProductSummary{}, false
}

// pickByPrice selects from the compared set when one exists, otherwise
// from the search results. An explicit comparison is the more specific,
// more recent intent. Ties go to the earlier entry.
func pickByPrice(st SessionState, better func(a, b float64) bool) (types.ProductSummary, bool) {
	pool := st.LastComparedProducts
	if len(pool) == 0 {
		pool = st.LastSearchResults
	}
	if len(pool) == 0 {
		return types.ProductSummary{}, false
	}

	best := pool[0]
	for _, p := range pool[1:] {
		if better(p.Price, best.Price) {
			best = p
		}
	}
	return best, true
}

type multiRule struct {
	name    string
	applies func(ref string) bool
	resolve func(st SessionState) ([]int, bool)
}

// multiRules operate only on the search results; the comparison set is
// not index-addressable.
var multiRules = []multiRule{
	{
		name:    "first-two",
		applies: func(ref string) bool { return containsAny(ref, []string{"first two", "top two"}) },
		resolve: prefixIndices(2),
	},
	{
		name:    "first-three",
		applies: func(ref string) bool { return containsAny(ref, []string{"top three", "first three"}) },
		resolve: prefixIndices(3),
	},
	{
		name:    "all",
		applies: func(ref string) bool { return ref == "all" || ref == "everything" },
		resolve: func(st SessionState) ([]int, bool) {
			// An empty result list is a valid resolution of "all",
			// not a failure.
			indices := make([]int, len(st.LastSearchResults))
			for i := range indices {
				indices[i] = i
			}
			return indices, true
		},
	},
}

func resolveIndices(st SessionState, reference string) ([]int, bool) {
	ref := strings.ToLower(strings.TrimSpace(reference))

	for _, rule := range multiRules {
		if rule.applies(ref) {
			return rule.resolve(st)
		}
	}
	return nil, false
}

// prefixIndices returns a resolver for the first n search results,
// failing when fewer than n exist.
func prefixIndices(n int) func(st SessionState) ([]int, bool) {
	return func(st SessionState) ([]int, bool) {
		if len(st.LastSearchResults) < n {
			return nil, false
		}
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices, true
	}
}

func ordinalWords() []string {
	words := make([]string, len(ordinals))
	for i, o := range ordinals {
		words[i] = o.word
	}
	return words
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
