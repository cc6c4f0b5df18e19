package feed

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sangram-sethi/Axiom-pulse/internal/domain"
	"github.com/sangram-sethi/Axiom-pulse/internal/observability"
)

// WSConfig configures WebSocket feed behavior.
type WSConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff.
	MaxReconnectDelay time.Duration
	// HandshakeTimeout bounds the dial.
	HandshakeTimeout time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// Buffer is the update channel capacity. Zero means 64.
	Buffer int
}

// DefaultWSConfig returns default WebSocket feed configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       60 * time.Second,
		Buffer:            64,
	}
}

// WSSource consumes price updates from a WebSocket endpoint. Each text
// frame carries one JSON-encoded price update. Connection loss triggers
// reconnection with exponential backoff; malformed frames are counted and
// dropped, never fatal.
type WSSource struct {
	endpoint string
	config   WSConfig
	logger   *zap.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	updates  chan domain.PriceUpdate
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ Source = (*WSSource)(nil)

// NewWSSource creates a WebSocket feed and starts its read loop. The first
// connection attempt happens inside the loop, so construction never blocks
// on the network.
func NewWSSource(endpoint string, config WSConfig, logger *zap.Logger) *WSSource {
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = DefaultWSConfig().ReconnectDelay
	}
	if config.MaxReconnectDelay <= 0 {
		config.MaxReconnectDelay = DefaultWSConfig().MaxReconnectDelay
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = DefaultWSConfig().HandshakeTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultWSConfig().ReadTimeout
	}
	if config.Buffer <= 0 {
		config.Buffer = DefaultWSConfig().Buffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &WSSource{
		endpoint: endpoint,
		config:   config,
		logger:   logger.Named("feed.ws"),
		updates:  make(chan domain.PriceUpdate, config.Buffer),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.readLoop()
	return s
}

// Updates returns the stream of received price updates. Closed after Stop.
func (s *WSSource) Updates() <-chan domain.PriceUpdate {
	return s.updates
}

// Stop closes the connection and terminates the read loop. Safe to call
// more than once.
func (s *WSSource) Stop() {
	s.stopOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)

		s.connMu.Lock()
		if s.conn != nil {
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			s.conn.Close()
		}
		s.connMu.Unlock()

		s.wg.Wait()
	})
}

func (s *WSSource) connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: s.config.HandshakeTimeout}
	conn, _, err := dialer.Dial(s.endpoint, nil)
	if err != nil {
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	return nil
}

func (s *WSSource) readLoop() {
	defer s.wg.Done()
	defer close(s.updates)

	delay := s.config.ReconnectDelay

	for !s.closed.Load() {
		if err := s.connect(); err != nil {
			s.logger.Warn("dial failed, retrying",
				zap.String("endpoint", s.endpoint),
				zap.Duration("delay", delay),
				zap.Error(err))

			select {
			case <-s.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			continue
		}

		s.logger.Info("connected", zap.String("endpoint", s.endpoint))
		delay = s.config.ReconnectDelay

		for {
			s.connMu.Lock()
			conn := s.conn
			s.connMu.Unlock()

			conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
			_, message, err := conn.ReadMessage()
			if err != nil {
				if s.closed.Load() {
					return
				}
				s.logger.Warn("read failed, reconnecting", zap.Error(err))
				conn.Close()
				break
			}

			var u domain.PriceUpdate
			if err := json.Unmarshal(message, &u); err != nil || u.ID == "" {
				observability.RecordFeedDrop("malformed")
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
