package store

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

func testTokens() []domain.Token {
	return []domain.Token{
		{ID: "alpha", Name: "Alpha", Symbol: "ALPHA", Phase: domain.PhaseNew, PriceUsd: 0.001, MarketCap: 100},
		{ID: "beta", Name: "Beta", Symbol: "BETA", Phase: domain.PhaseNew, PriceUsd: 0.002, MarketCap: 50},
		{ID: "gamma", Name: "Gamma", Symbol: "GAMMA", Phase: domain.PhaseFinal, PriceUsd: 0.003, MarketCap: 200},
	}
}

func TestTokenStore_LoadSnapshot(t *testing.T) {
	s := NewTokenStore()

	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("expected 3 tokens, got %d", s.Len())
	}

	rows := s.Snapshot()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Snapshot order matches load order.
	if rows[0].Token.ID != "alpha" || rows[1].Token.ID != "beta" || rows[2].Token.ID != "gamma" {
		t.Errorf("snapshot order mismatch: %s %s %s",
			rows[0].Token.ID, rows[1].Token.ID, rows[2].Token.ID)
	}

	// Runtime is re-initialized on load.
	for _, r := range rows {
		if r.Runtime.Direction != domain.DirectionFlat {
			t.Errorf("token %s: expected flat direction, got %s", r.Token.ID, r.Runtime.Direction)
		}
		if r.Runtime.LastPriceUsd != r.Token.PriceUsd {
			t.Errorf("token %s: lastPriceUsd %v != priceUsd %v",
				r.Token.ID, r.Runtime.LastPriceUsd, r.Token.PriceUsd)
		}
	}
}

func TestTokenStore_LoadSnapshot_Replace(t *testing.T) {
	s := NewTokenStore()

	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	replacement := []domain.Token{
		{ID: "delta", Name: "Delta", Symbol: "DELTA", PriceUsd: 1.5},
	}
	if err := s.LoadSnapshot(replacement); err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	// Full replace, not a merge.
	if s.Len() != 1 {
		t.Errorf("expected 1 token after replace, got %d", s.Len())
	}
	if _, ok := s.Get("alpha"); ok {
		t.Error("stale token alpha survived snapshot replace")
	}
}

func TestTokenStore_LoadSnapshot_DuplicateID(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("initial load failed: %v", err)
	}

	bad := []domain.Token{
		{ID: "x", Symbol: "X", PriceUsd: 1},
		{ID: "x", Symbol: "X2", PriceUsd: 2},
	}
	err := s.LoadSnapshot(bad)
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}

	// Failed load must leave previous state intact.
	if s.Len() != 3 {
		t.Errorf("previous snapshot damaged: expected 3 tokens, got %d", s.Len())
	}
	if _, ok := s.Get("alpha"); !ok {
		t.Error("previous snapshot lost token alpha")
	}
}

func TestTokenStore_LoadSnapshot_EmptyID(t *testing.T) {
	s := NewTokenStore()

	err := s.LoadSnapshot([]domain.Token{{ID: "", Symbol: "NONE"}})
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestTokenStore_ApplyUpdate_Direction(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		want  domain.Direction
	}{
		{"up", 0.0015, domain.DirectionUp},
		{"down", 0.0005, domain.DirectionDown},
		{"flat", 0.001, domain.DirectionFlat},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewTokenStore()
			if err := s.LoadSnapshot(testTokens()); err != nil {
				t.Fatalf("load failed: %v", err)
			}

			if !s.ApplyUpdate(domain.PriceUpdate{ID: "alpha", PriceUsd: tc.price}) {
				t.Fatal("update was not applied")
			}

			row, _ := s.Get("alpha")
			if row.Runtime.Direction != tc.want {
				t.Errorf("expected direction %s, got %s", tc.want, row.Runtime.Direction)
			}
			if row.Token.PriceUsd != tc.price {
				t.Errorf("expected price %v, got %v", tc.price, row.Token.PriceUsd)
			}
			if row.Runtime.LastPriceUsd != tc.price {
				t.Errorf("expected lastPriceUsd %v, got %v", tc.price, row.Runtime.LastPriceUsd)
			}
		})
	}
}

func TestTokenStore_ApplyUpdate_DirectionFollowsLastPrice(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Two consecutive updates: direction is relative to the previous
	// update's price, not the snapshot price.
	s.ApplyUpdate(domain.PriceUpdate{ID: "alpha", PriceUsd: 0.002})
	s.ApplyUpdate(domain.PriceUpdate{ID: "alpha", PriceUsd: 0.0015})

	row, _ := s.Get("alpha")
	if row.Runtime.Direction != domain.DirectionDown {
		t.Errorf("expected down after 0.002 -> 0.0015, got %s", row.Runtime.Direction)
	}
}

func TestTokenStore_ApplyUpdate_UnknownID(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	before := s.Snapshot()
	if s.ApplyUpdate(domain.PriceUpdate{ID: "ghost", PriceUsd: 42}) {
		t.Error("update for unknown id reported as applied")
	}
	after := s.Snapshot()

	for i := range before {
		if before[i] != after[i] {
			t.Errorf("store mutated by unknown-id update: %+v != %+v", before[i], after[i])
		}
	}
}

func TestTokenStore_ApplyUpdate_NonFinitePrice(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if s.ApplyUpdate(domain.PriceUpdate{ID: "alpha", PriceUsd: bad}) {
			t.Errorf("non-finite price %v reported as applied", bad)
		}
	}

	row, _ := s.Get("alpha")
	if row.Token.PriceUsd != 0.001 {
		t.Errorf("price mutated by non-finite update: %v", row.Token.PriceUsd)
	}
	if row.Runtime.Direction != domain.DirectionFlat {
		t.Errorf("direction mutated by non-finite update: %s", row.Runtime.Direction)
	}
}

func TestTokenStore_ApplyUpdate_PerFieldDrop(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Non-finite price drops the price mutation, but a finite market cap
	// in the same update still lands.
	mcap := 999.0
	badVol := math.NaN()
	applied := s.ApplyUpdate(domain.PriceUpdate{
		ID:        "alpha",
		PriceUsd:  math.NaN(),
		MarketCap: &mcap,
		Volume24h: &badVol,
	})
	if !applied {
		t.Fatal("update with one valid field reported as dropped")
	}

	row, _ := s.Get("alpha")
	if row.Token.MarketCap != 999 {
		t.Errorf("expected market cap 999, got %v", row.Token.MarketCap)
	}
	if row.Token.PriceUsd != 0.001 {
		t.Errorf("non-finite price leaked into token: %v", row.Token.PriceUsd)
	}
	if row.Token.Volume24h != 0 {
		t.Errorf("non-finite volume leaked into token: %v", row.Token.Volume24h)
	}
}

func TestTokenStore_ApplyUpdate_OptionalFields(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	mcap := 123.0
	vol := 456.0
	s.ApplyUpdate(domain.PriceUpdate{ID: "beta", PriceUsd: 0.0025, MarketCap: &mcap, Volume24h: &vol})

	row, _ := s.Get("beta")
	if row.Token.MarketCap != 123 || row.Token.Volume24h != 456 {
		t.Errorf("optional fields not applied: mcap=%v vol=%v", row.Token.MarketCap, row.Token.Volume24h)
	}

	// Nil optionals leave fields unchanged.
	s.ApplyUpdate(domain.PriceUpdate{ID: "beta", PriceUsd: 0.0026})
	row, _ = s.Get("beta")
	if row.Token.MarketCap != 123 || row.Token.Volume24h != 456 {
		t.Errorf("nil optionals overwrote fields: mcap=%v vol=%v", row.Token.MarketCap, row.Token.Volume24h)
	}
}

func TestTokenStore_Snapshot_Isolation(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	rows := s.Snapshot()
	rows[0].Token.PriceUsd = 999
	rows[0].Runtime.Direction = domain.DirectionUp

	row, _ := s.Get(rows[0].Token.ID)
	if row.Token.PriceUsd == 999 {
		t.Error("snapshot aliases store state: token mutation leaked")
	}
	if row.Runtime.Direction == domain.DirectionUp {
		t.Error("snapshot aliases store state: runtime mutation leaked")
	}
}

func TestTokenStore_ConcurrentUpdates(t *testing.T) {
	s := NewTokenStore()
	if err := s.LoadSnapshot(testTokens()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.ApplyUpdate(domain.PriceUpdate{ID: "alpha", PriceUsd: 0.001 + float64(i)*0.0001})
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	// Direction must be consistent with the final lastPriceUsd: whatever
	// interleaving happened, the read-modify-write was atomic per update.
	row, _ := s.Get("alpha")
	if row.Token.PriceUsd != row.Runtime.LastPriceUsd {
		t.Errorf("price %v diverged from lastPriceUsd %v", row.Token.PriceUsd, row.Runtime.LastPriceUsd)
	}
}
