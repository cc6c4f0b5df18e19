package feed

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
)

// DefaultTickInterval is the cadence of simulated price updates.
const DefaultTickInterval = 1300 * time.Millisecond

// SimulatorConfig configures the random-walk simulator.
type SimulatorConfig struct {
	// Interval between ticks. Zero means DefaultTickInterval.
	Interval time.Duration
	// Seed for the random source. Zero means seed from the clock.
	Seed int64
	// Buffer is the update channel capacity. Zero means 16.
	Buffer int
}

// Simulator emits one price update per interval for a uniformly chosen
// token, moving its price by a uniform factor in [0.99, 1.01) and rounding
// to 6 decimals. It walks its own price table, so pausing the consumer does
// not freeze the simulated market.
type Simulator struct {
	interval time.Duration

	mu     sync.Mutex
	rng    *rand.Rand
	ids    []string
	prices map[string]float64

	updates  chan domain.PriceUpdate
	done     chan struct{}
	stopOnce sync.Once
}

var _ Source = (*Simulator)(nil)

// NewSimulator creates a simulator over the given tokens and starts
// ticking immediately.
func NewSimulator(tokens []domain.Token, config SimulatorConfig) *Simulator {
	interval := config.Interval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	buffer := config.Buffer
	if buffer <= 0 {
		buffer = 16
	}

	s := &Simulator{
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		prices:   make(map[string]float64),
		updates:  make(chan domain.PriceUpdate, buffer),
		done:     make(chan struct{}),
	}
	s.setTokensLocked(tokens)

	go s.run()
	return s
}

// Updates returns the stream of simulated price updates. Closed after Stop.
func (s *Simulator) Updates() <-chan domain.PriceUpdate {
	return s.updates
}

// Stop terminates the simulator. The tick loop exits within one interval
// and closes the updates channel. Safe to call more than once.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// SetTokens replaces the simulated universe without restarting the tick
// loop. Prices walk from each token's current PriceUsd.
func (s *Simulator) SetTokens(tokens []domain.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTokensLocked(tokens)
}

func (s *Simulator) setTokensLocked(tokens []domain.Token) {
	s.ids = make([]string, 0, len(tokens))
	s.prices = make(map[string]float64, len(tokens))
	for _, t := range tokens {
		s.ids = append(s.ids, t.ID)
		s.prices[t.ID] = t.PriceUsd
	}
}

func (s *Simulator) run() {
	defer close(s.updates)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			u, ok := s.nextUpdate()
			if !ok {
				continue
			}
			select {
			case s.updates <- u:
			case <-s.done:
				return
			}
		}
	}
}

// nextUpdate picks a random token and advances its price one step.
func (s *Simulator) nextUpdate() (domain.PriceUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ids) == 0 {
		return domain.PriceUpdate{}, false
	}

	id := s.ids[s.rng.Intn(len(s.ids))]
	factor := 1 + (s.rng.Float64()-0.5)*0.02
	price := roundPrice(s.prices[id] * factor)
	if price < 0 {
		price = 0
	}
	s.prices[id] = price

	return domain.PriceUpdate{ID: id, PriceUsd: price}, true
}

// roundPrice rounds to 6 decimal places, matching the display precision.
func roundPrice(p float64) float64 {
	return math.Round(p*1e6) / 1e6
}
