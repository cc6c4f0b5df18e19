// Package server exposes the token table over HTTP: a stateless query API,
// session mutation endpoints, and a WebSocket stream of view updates.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
	"github.com/sangram-sethi/Axiom-pulse/internal/engine"
	"github.com/sangram-sethi/Axiom-pulse/internal/observability"
	"github.com/sangram-sethi/Axiom-pulse/internal/view"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RefreshFunc re-fetches the snapshot. Wired to the provider in main.
type RefreshFunc func(ctx context.Context) error

// Options configures the server.
type Options struct {
	Engine  *engine.Engine
	Logger  *zap.Logger
	Refresh RefreshFunc
}

// Server is the HTTP front of the engine.
type Server struct {
	engine  *engine.Engine
	logger  *zap.Logger
	refresh RefreshFunc
	hub     *Hub
	router  *gin.Engine
	started time.Time
}

// New creates a server and its routes. Start must be called to serve.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		engine:  opts.Engine,
		logger:  opts.Logger.Named("server"),
		refresh: opts.Refresh,
		hub:     NewHub(opts.Logger),
		started: time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealthz)
	r.GET("/status", s.handleStatus)
	r.GET("/metrics", gin.WrapH(observability.Handler()))
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	{
		api.GET("/tokens", s.handleTokens)
		api.GET("/view", s.handleView)
		api.POST("/refresh", s.handleRefresh)

		q := api.Group("/query")
		{
			q.POST("/search", s.handleSearch)
			q.POST("/tab", s.handleTab)
			q.POST("/sort", s.handleSort)
			q.POST("/page", s.handlePage)
			q.POST("/watchlist", s.handleWatchlist)
			q.POST("/live", s.handleLive)
			q.POST("/density", s.handleDensity)
		}
	}

	s.router = r
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the hub broadcast loop and serves HTTP until the context is
// cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	updates, cancel := s.engine.Subscribe()
	go s.hub.Run(updates)

	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		cancel()
		return err
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	u := s.engine.Current()
	c.JSON(http.StatusOK, gin.H{
		"uptimeSeconds":      int(time.Since(s.started).Seconds()),
		"tokens":             u.Page.TotalCount,
		"secondsSinceUpdate": u.SecondsSinceUpdate,
		"hasUpdate":          u.HasUpdate,
		"usingFallback":      u.UsingFallback,
		"liveUpdates":        u.Query.LiveUpdates,
	})
}

// handleTokens derives a page from query parameters alone, without touching
// the session state. Unknown or absent parameters fall back to defaults.
func (s *Server) handleTokens(c *gin.Context) {
	q := domain.DefaultQueryState()

	q.SearchText = c.Query("search")
	if tab := c.Query("tab"); tab != "" {
		q.ActiveTab = domain.Tab(tab)
	}
	if key := c.Query("sortKey"); key != "" {
		q.SortKey = domain.SortKey(key)
	}
	if dir := c.Query("sortDir"); dir == string(domain.SortAsc) {
		q.SortDirection = domain.SortAsc
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("pageSize")); err == nil && size > 0 {
		q.PageSize = size
	}
	if wl := c.Query("watchlist"); wl != "" {
		for _, id := range strings.Split(wl, ",") {
			if id != "" {
				q.WatchlistIDs[id] = true
			}
		}
	}

	c.JSON(http.StatusOK, view.Derive(s.engine.Rows(), q))
}

func (s *Server) handleView(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Current())
}

func (s *Server) handleRefresh(c *gin.Context) {
	if s.refresh == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "refresh not configured"})
		return
	}
	if err := s.refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.Current())
}

func (s *Server) handleSearch(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.SetSearch(req.Text))
}

func (s *Server) handleTab(c *gin.Context) {
	var req struct {
		Tab domain.Tab `json:"tab"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Tab {
	case domain.TabNew, domain.TabFinal, domain.TabMigrated, domain.TabWatchlist:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tab"})
		return
	}
	c.JSON(http.StatusOK, s.engine.SetTab(req.Tab))
}

func (s *Server) handleSort(c *gin.Context) {
	var req struct {
		Key domain.SortKey `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Key {
	case domain.SortByMarketCap, domain.SortByLiquidity, domain.SortByVolume24h,
		domain.SortByTxns, domain.SortByScore:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key"})
		return
	}
	c.JSON(http.StatusOK, s.engine.ToggleSort(req.Key))
}

func (s *Server) handlePage(c *gin.Context) {
	var req struct {
		Page int `json:"page"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.engine.SetPage(req.Page))
}

func (s *Server) handleWatchlist(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	c.JSON(http.StatusOK, s.engine.ToggleWatchlist(req.ID))
}

func (s *Server) handleLive(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled required"})
		return
	}
	c.JSON(http.StatusOK, s.engine.SetLiveUpdates(*req.Enabled))
}

func (s *Server) handleDensity(c *gin.Context) {
	var req struct {
		Density domain.Density `json:"density"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Density != domain.DensityComfortable && req.Density != domain.DensityCompact {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown density"})
		return
	}
	c.JSON(http.StatusOK, s.engine.SetDensity(req.Density))
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newWSClient(s.hub, conn)

	// Seed with the current state so the client renders immediately.
	client.send <- s.engine.Current()

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
