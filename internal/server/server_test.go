package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
	"github.com/sangram-sethi/Axiom-pulse/internal/engine"
	"github.com/sangram-sethi/Axiom-pulse/internal/view"
)

func serverTokens() []domain.Token {
	tokens := make([]domain.Token, 0, 15)
	for i := 1; i <= 15; i++ {
		tokens = append(tokens, domain.Token{
			ID:        fmt.Sprintf("tok-%02d", i),
			Name:      fmt.Sprintf("Token %02d", i),
			Symbol:    fmt.Sprintf("TK%02d", i),
			Phase:     domain.PhaseNew,
			MarketCap: float64(16 - i),
		})
	}
	tokens = append(tokens, domain.Token{
		ID: "fin-1", Name: "Final One", Symbol: "FIN1", Phase: domain.PhaseFinal, MarketCap: 999,
	})
	return tokens
}

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	e := engine.New(engine.Options{})
	require.NoError(t, e.LoadSnapshot(serverTokens(), false))
	return New(Options{Engine: e}), e
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestServer_Healthz(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Status(t *testing.T) {
	s, _ := newTestServer(t)

	var status map[string]interface{}
	w := doJSON(t, s.Handler(), http.MethodGet, "/status", "", &status)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, true, status["hasUpdate"])
	assert.Equal(t, false, status["usingFallback"])
	assert.Equal(t, true, status["liveUpdates"])
}

func TestServer_Tokens_Defaults(t *testing.T) {
	s, _ := newTestServer(t)

	var page view.Page
	w := doJSON(t, s.Handler(), http.MethodGet, "/api/tokens", "", &page)
	require.Equal(t, http.StatusOK, w.Code)

	// Default: new tab, marketCap desc, page 1 of 10.
	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 10)
	assert.Equal(t, "tok-01", page.Items[0].Token.ID)
}

func TestServer_Tokens_QueryParams(t *testing.T) {
	s, _ := newTestServer(t)

	var page view.Page
	doJSON(t, s.Handler(), http.MethodGet,
		"/api/tokens?tab=new&sortKey=marketCap&sortDir=asc&page=2&pageSize=5", "", &page)

	assert.Equal(t, 15, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 5)
	// Ascending cap: tok-15 (cap 1) first overall, page 2 starts at tok-10.
	assert.Equal(t, "tok-10", page.Items[0].Token.ID)
}

func TestServer_Tokens_SearchAndWatchlist(t *testing.T) {
	s, _ := newTestServer(t)

	var page view.Page
	doJSON(t, s.Handler(), http.MethodGet, "/api/tokens?search=final&tab=final", "", &page)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "fin-1", page.Items[0].Token.ID)

	doJSON(t, s.Handler(), http.MethodGet, "/api/tokens?tab=watchlist&watchlist=tok-03,fin-1", "", &page)
	assert.Equal(t, 2, page.TotalCount)
}

func TestServer_Tokens_IsStateless(t *testing.T) {
	s, e := newTestServer(t)

	doJSON(t, s.Handler(), http.MethodGet, "/api/tokens?tab=final&page=2", "", nil)

	// The stateless endpoint must not leak into the session query state.
	q := e.Current().Query
	assert.Equal(t, domain.TabNew, q.ActiveTab)
	assert.Equal(t, 1, q.Page)
}

func TestServer_QueryMutations(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	var u engine.ViewUpdate
	doJSON(t, h, http.MethodPost, "/api/query/tab", `{"tab":"final"}`, &u)
	assert.Equal(t, domain.TabFinal, u.Query.ActiveTab)
	assert.Equal(t, 1, u.Page.TotalCount)

	doJSON(t, h, http.MethodPost, "/api/query/search", `{"text":"final one"}`, &u)
	assert.Equal(t, "final one", u.Query.SearchText)
	assert.Equal(t, 1, u.Page.TotalCount)

	doJSON(t, h, http.MethodPost, "/api/query/sort", `{"key":"marketCap"}`, &u)
	assert.Equal(t, domain.SortAsc, u.Query.SortDirection, "repeated key flips the default desc")

	doJSON(t, h, http.MethodPost, "/api/query/watchlist", `{"id":"fin-1"}`, &u)
	assert.True(t, u.Query.WatchlistIDs["fin-1"])

	doJSON(t, h, http.MethodPost, "/api/query/live", `{"enabled":false}`, &u)
	assert.False(t, u.Query.LiveUpdates)

	doJSON(t, h, http.MethodPost, "/api/query/density", `{"density":"compact"}`, &u)
	assert.Equal(t, domain.DensityCompact, u.Query.Density)

	doJSON(t, h, http.MethodPost, "/api/query/page", `{"page":2}`, &u)
	assert.Equal(t, 2, u.Query.Page)
}

func TestServer_QueryValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	cases := []struct {
		path string
		body string
	}{
		{"/api/query/tab", `{"tab":"bogus"}`},
		{"/api/query/sort", `{"key":"bogus"}`},
		{"/api/query/watchlist", `{}`},
		{"/api/query/live", `{}`},
		{"/api/query/density", `{"density":"cozy"}`},
		{"/api/query/search", `not json`},
	}
	for _, tc := range cases {
		w := doJSON(t, h, http.MethodPost, tc.path, tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s body %s", tc.path, tc.body)
	}
}

func TestServer_RefreshNotConfigured(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodPost, "/api/refresh", "", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestServer_Refresh(t *testing.T) {
	e := engine.New(engine.Options{})
	require.NoError(t, e.LoadSnapshot(serverTokens(), false))

	called := false
	s := New(Options{
		Engine: e,
		Refresh: func(ctx context.Context) error {
			called = true
			return e.LoadSnapshot([]domain.Token{{ID: "fresh", Phase: domain.PhaseNew, PriceUsd: 1}}, false)
		},
	})

	var u engine.ViewUpdate
	w := doJSON(t, s.Handler(), http.MethodPost, "/api/refresh", "", &u)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
	assert.Equal(t, 1, u.Page.TotalCount)
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	w := doJSON(t, s.Handler(), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "axiom_pulse")
}

func TestServer_WebSocketStream(t *testing.T) {
	s, e := newTestServer(t)

	updates, cancel := e.Subscribe()
	defer cancel()
	go s.hub.Run(updates)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// First frame is the seeded current state.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var first engine.ViewUpdate
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 15, first.Page.TotalCount)

	// A query mutation is pushed to the stream.
	e.SetTab(domain.TabFinal)

	deadline := time.Now().Add(3 * time.Second)
	for {
		require.True(t, time.Now().Before(deadline), "no tab update on the stream")
		conn.SetReadDeadline(deadline)
		var u engine.ViewUpdate
		require.NoError(t, conn.ReadJSON(&u))
		if u.Query.ActiveTab == domain.TabFinal {
			assert.Equal(t, 1, u.Page.TotalCount)
			break
		}
	}
}
