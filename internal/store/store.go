// Package store holds the canonical token state. It is the single writable
// source for tokens and their runtime overlays; every consumer works on
// copies obtained through Snapshot.
package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

// TokenStore is the authoritative in-memory token map plus per-token
// runtime overlay. Snapshot loads replace the whole map; price updates
// mutate individual tokens. All entry points are safe for concurrent use;
// the read-modify-write of a token's direction happens under the write
// lock, so concurrent updates for the same token serialize.
type TokenStore struct {
	mu      sync.RWMutex
	order   []string // snapshot insertion order, keeps derived ordering deterministic
	byID    map[string]*domain.Token
	runtime map[string]*domain.TokenRuntime
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byID:    make(map[string]*domain.Token),
		runtime: make(map[string]*domain.TokenRuntime),
	}
}

// LoadSnapshot atomically replaces the entire token set. Every runtime
// overlay is re-initialized with LastPriceUsd = PriceUsd and a flat
// direction. Validation is all-or-nothing: on ErrInvalidSnapshot the
// previous state remains intact.
func (s *TokenStore) LoadSnapshot(tokens []domain.Token) error {
	byID := make(map[string]*domain.Token, len(tokens))
	runtime := make(map[string]*domain.TokenRuntime, len(tokens))
	order := make([]string, 0, len(tokens))

	for _, t := range tokens {
		if t.ID == "" {
			return fmt.Errorf("%w: empty token id (symbol %q)", ErrInvalidSnapshot, t.Symbol)
		}
		if _, exists := byID[t.ID]; exists {
			return fmt.Errorf("%w: duplicate token id %q", ErrInvalidSnapshot, t.ID)
		}
		tokenCopy := t
		byID[t.ID] = &tokenCopy
		runtime[t.ID] = &domain.TokenRuntime{
			LastPriceUsd: t.PriceUsd,
			Direction:    domain.DirectionFlat,
		}
		order = append(order, t.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = byID
	s.runtime = runtime
	s.order = order
	return nil
}

// ApplyUpdate merges one price event into the store. It reports whether
// anything was mutated.
//
// Unknown IDs are ignored: updates may race ahead of a snapshot replace or
// reference a token the replace removed, and neither is an error. Non-finite
// fields are dropped individually; a non-finite price skips the
// price/direction mutation but a finite MarketCap or Volume24h in the same
// update is still applied.
func (s *TokenStore) ApplyUpdate(u domain.PriceUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, exists := s.byID[u.ID]
	if !exists {
		return false
	}

	rt := s.runtime[u.ID]
	applied := false

	if isFinite(u.PriceUsd) {
		prev := rt.LastPriceUsd
		switch {
		case u.PriceUsd > prev:
			rt.Direction = domain.DirectionUp
		case u.PriceUsd < prev:
			rt.Direction = domain.DirectionDown
		default:
			rt.Direction = domain.DirectionFlat
		}
		rt.LastPriceUsd = u.PriceUsd
		token.PriceUsd = u.PriceUsd
		applied = true
	}

	if u.MarketCap != nil && isFinite(*u.MarketCap) {
		token.MarketCap = *u.MarketCap
		applied = true
	}
	if u.Volume24h != nil && isFinite(*u.Volume24h) {
		token.Volume24h = *u.Volume24h
		applied = true
	}

	return applied
}

// Snapshot returns copies of all tokens with their runtime overlays, in
// snapshot insertion order. Mutating the result does not affect the store.
func (s *TokenStore) Snapshot() []domain.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]domain.Row, 0, len(s.order))
	for _, id := range s.order {
		rows = append(rows, domain.Row{
			Token:   *s.byID[id],
			Runtime: *s.runtime[id],
		})
	}
	return rows
}

// Get returns a copy of a single token and its runtime overlay.
func (s *TokenStore) Get(id string) (domain.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.byID[id]
	if !exists {
		return domain.Row{}, false
	}
	return domain.Row{Token: *token, Runtime: *s.runtime[id]}, true
}

// Len returns the number of tokens in the current snapshot.
func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
