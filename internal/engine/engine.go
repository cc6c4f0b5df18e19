// Package engine wires the canonical store, the price feed, the query
// controller and the view pipeline into one update loop. All state changes
// flow through the engine; consumers subscribe to derived view updates.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
	"github.com/sangram-sethi/Axiom-pulse/internal/feed"
	"github.com/sangram-sethi/Axiom-pulse/internal/freshness"
	"github.com/sangram-sethi/Axiom-pulse/internal/observability"
	"github.com/sangram-sethi/Axiom-pulse/internal/query"
	"github.com/sangram-sethi/Axiom-pulse/internal/store"
	"github.com/sangram-sethi/Axiom-pulse/internal/view"
)

// ViewUpdate is one derived state published to subscribers.
type ViewUpdate struct {
	Page  view.Page         `json:"page"`
	Query domain.QueryState `json:"query"`
	// SecondsSinceUpdate is whole seconds since the last data mutation.
	// Meaningless when HasUpdate is false.
	SecondsSinceUpdate int  `json:"secondsSinceUpdate"`
	HasUpdate          bool `json:"hasUpdate"`
	// UsingFallback reports whether the current snapshot is the built-in
	// static set rather than a live fetch.
	UsingFallback bool `json:"usingFallback"`
}

// tokenSetter is implemented by feed sources whose universe can be swapped
// to follow the loaded snapshot.
type tokenSetter interface {
	SetTokens([]domain.Token)
}

// Options configures the engine.
type Options struct {
	Store      *store.TokenStore
	Controller *query.Controller
	Tracker    *freshness.Tracker
	Feed       feed.Source
	Logger     *zap.Logger
	// PageSize overrides the default page size when positive.
	PageSize int
}

// Engine owns the update loop. Methods are safe for concurrent use.
type Engine struct {
	store      *store.TokenStore
	controller *query.Controller
	tracker    *freshness.Tracker
	feed       feed.Source
	logger     *zap.Logger
	pageSize   int

	mu            sync.Mutex
	subs          map[int]chan ViewUpdate
	nextSubID     int
	current       ViewUpdate
	usingFallback bool
}

// New creates an engine. Store, Controller and Tracker default to fresh
// instances; Feed may be nil for a static table.
func New(opts Options) *Engine {
	if opts.Store == nil {
		opts.Store = store.NewTokenStore()
	}
	if opts.Controller == nil {
		opts.Controller = query.NewController()
	}
	if opts.Tracker == nil {
		opts.Tracker = freshness.NewTracker()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	e := &Engine{
		store:      opts.Store,
		controller: opts.Controller,
		tracker:    opts.Tracker,
		feed:       opts.Feed,
		logger:     opts.Logger.Named("engine"),
		pageSize:   opts.PageSize,
		subs:       make(map[int]chan ViewUpdate),
	}
	e.current = e.derive()
	return e
}

// Run consumes the feed and republishes freshness once a second until the
// context is cancelled. It blocks; run it in its own goroutine.
func (e *Engine) Run(ctx context.Context) {
	var updates <-chan domain.PriceUpdate
	if e.feed != nil {
		updates = e.feed.Updates()
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if e.feed != nil {
				e.feed.Stop()
			}
			return

		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			e.handleUpdate(u)

		case <-ticker.C:
			// Nothing changed, but "updated Ns ago" did.
			e.publish(e.derive())
		}
	}
}

// handleUpdate merges one feed update if live updates are enabled.
func (e *Engine) handleUpdate(u domain.PriceUpdate) {
	if !e.controller.State().LiveUpdates {
		observability.RecordTickIgnored("paused")
		return
	}

	if !e.store.ApplyUpdate(u) {
		observability.RecordTickIgnored("unknown_or_malformed")
		return
	}

	observability.RecordTickApplied()
	e.touch()
	e.publish(e.derive())
}

// LoadSnapshot replaces the canonical token set. When the feed tracks the
// snapshot universe, it is re-pointed at the new tokens.
func (e *Engine) LoadSnapshot(tokens []domain.Token, usedFallback bool) error {
	if err := e.store.LoadSnapshot(tokens); err != nil {
		observability.RecordSnapshotLoad("error", 0)
		return err
	}
	observability.RecordSnapshotLoad("ok", len(tokens))

	if setter, ok := e.feed.(tokenSetter); ok {
		setter.SetTokens(tokens)
	}

	e.mu.Lock()
	e.usingFallback = usedFallback
	e.mu.Unlock()

	e.logger.Info("snapshot loaded",
		zap.Int("tokens", len(tokens)),
		zap.Bool("fallback", usedFallback))

	e.touch()
	e.publish(e.derive())
	return nil
}

// Subscribe registers a view update consumer. The returned cancel function
// unregisters it and closes the channel. Sends never block: a subscriber
// that falls behind misses intermediate updates, not the loop.
func (e *Engine) Subscribe() (<-chan ViewUpdate, func()) {
	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	ch := make(chan ViewUpdate, 8)
	e.subs[id] = ch
	current := e.current
	e.mu.Unlock()

	// Seed with the current state so new subscribers render immediately.
	ch <- current

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Rows returns a copy of the full canonical row set, independent of the
// current query state. Used by stateless consumers that derive their own
// views.
func (e *Engine) Rows() []domain.Row {
	return e.store.Snapshot()
}

// Current returns the most recently derived view update.
func (e *Engine) Current() ViewUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Query state operations. Each applies the mutation and republishes the
// re-derived view.

func (e *Engine) SetSearch(text string) ViewUpdate {
	e.controller.SetSearch(text)
	return e.publish(e.derive())
}

func (e *Engine) SetTab(tab domain.Tab) ViewUpdate {
	e.controller.SetTab(tab)
	return e.publish(e.derive())
}

func (e *Engine) ToggleSort(key domain.SortKey) ViewUpdate {
	e.controller.ToggleSort(key)
	return e.publish(e.derive())
}

func (e *Engine) SetPage(page int) ViewUpdate {
	e.controller.SetPage(page)
	return e.publish(e.derive())
}

func (e *Engine) ToggleWatchlist(id string) ViewUpdate {
	e.controller.ToggleWatchlist(id)
	return e.publish(e.derive())
}

func (e *Engine) SetLiveUpdates(on bool) ViewUpdate {
	e.controller.SetLiveUpdates(on)
	return e.publish(e.derive())
}

func (e *Engine) SetDensity(d domain.Density) ViewUpdate {
	e.controller.SetDensity(d)
	return e.publish(e.derive())
}

func (e *Engine) touch() {
	e.tracker.Touch()
	observability.TouchDataMutation(time.Now().Unix())
}

// derive recomputes the view from the current store and query state.
func (e *Engine) derive() ViewUpdate {
	q := e.controller.State()
	if e.pageSize > 0 {
		q.PageSize = e.pageSize
	}

	start := time.Now()
	page := view.Derive(e.store.Snapshot(), q)
	observability.RecordDerive(time.Since(start).Seconds())

	secs, has := e.tracker.Seconds()

	e.mu.Lock()
	defer e.mu.Unlock()
	return ViewUpdate{
		Page:               page,
		Query:              q,
		SecondsSinceUpdate: secs,
		HasUpdate:          has,
		UsingFallback:      e.usingFallback,
	}
}

// publish stores the update as current and fans it out to subscribers.
func (e *Engine) publish(u ViewUpdate) ViewUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = u
	for _, ch := range e.subs {
		select {
		case ch <- u:
		default:
		}
	}
	return u
}
