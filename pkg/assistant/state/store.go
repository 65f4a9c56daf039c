// Package state holds per-session short-term conversation memory: the
// most recent search results and the most recent comparison set. The
// reference resolver in resolve.go interprets ordinal and comparative
// phrases ("the second one", "the cheapest") against this memory.
package state

import (
	"sync"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

// MaxSearchResults is how many search results a session remembers.
// Ordinals first through fifth index into this window.
const MaxSearchResults = 5

// SessionState is the memory one session holds. Both slots are
// overwritten whole on each store call; there is no history stack.
type SessionState struct {
	SessionID            string
	LastSearchResults    []types.ProductSummary
	LastComparedProducts []types.ProductSummary
}

// Store maps session ids to their conversation state. Sessions are
// independent; concurrent writes to the same session are last-write-wins.
type Store struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*SessionState),
	}
}

// GetOrCreate returns a copy of the session's state, creating an empty
// entry on first access. It never fails.
func (s *Store) GetOrCreate(sessionID string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.locked(sessionID)
	return SessionState{
		SessionID:            st.SessionID,
		LastSearchResults:    copySummaries(st.LastSearchResults),
		LastComparedProducts: copySummaries(st.LastComparedProducts),
	}
}

// Clear removes the session's state entirely. No-op if absent.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

// StoreSearchResults replaces the session's search results with the
// first MaxSearchResults entries of products, in order. A fresh search
// invalidates any prior comparison context, so the compared set is reset.
func (s *Store) StoreSearchResults(sessionID string, products []types.ProductSummary) {
	if len(products) > MaxSearchResults {
		products = products[:MaxSearchResults]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.locked(sessionID)
	st.LastSearchResults = copySummaries(products)
	st.LastComparedProducts = nil
}

// StoreComparedProducts replaces the session's comparison set verbatim.
// The search results stay untouched: comparisons are derived from search
// and must not erase the set they were drawn from.
func (s *Store) StoreComparedProducts(sessionID string, products []types.ProductSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.locked(sessionID)
	st.LastComparedProducts = copySummaries(products)
}

// SearchResults returns a copy of the session's current search results.
func (s *Store) SearchResults(sessionID string) []types.ProductSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return copySummaries(st.LastSearchResults)
}

// ResolveSingle maps a reference phrase to one product from the
// session's memory. The second return is false when no rule matched or
// the matched rule could not produce a product.
func (s *Store) ResolveSingle(sessionID, reference string) (types.ProductSummary, bool) {
	st := s.GetOrCreate(sessionID)
	return resolveSingle(st, reference)
}

// ResolveIndices maps a multi-product reference phrase to indices into
// the session's search results.
func (s *Store) ResolveIndices(sessionID, reference string) ([]int, bool) {
	st := s.GetOrCreate(sessionID)
	return resolveIndices(st, reference)
}

// locked returns the live state for sessionID, creating it if absent.
// Callers must hold mu.
func (s *Store) locked(sessionID string) *SessionState {
	st, ok := s.sessions[sessionID]
	if !ok {
		st = &SessionState{SessionID: sessionID}
		s.sessions[sessionID] = st
	}
	return st
}

func copySummaries(products []types.ProductSummary) []types.ProductSummary {
	out := make([]types.ProductSummary, len(products))
	copy(out, products)
	return out
}
