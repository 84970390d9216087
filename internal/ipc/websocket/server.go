package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/yame/internal/core/observability/log"
	"github.com/zeusync/yame/internal/ipc"
)

// Config tunes the websocket transport.
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int64
	WriteTimeout    time.Duration
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxMessageSize:  4 * 1024 * 1024, // 4MB, large workspace trees
		WriteTimeout:    10 * time.Second,
	}
}

// Server is an http.Handler serving a Router to websocket peers.
type Server struct {
	router   *ipc.Router
	config   Config
	upgrader websocket.Upgrader
	logger   log.Log

	mu    sync.Mutex
	conns map[*serverConn]struct{}
}

func NewServer(router *ipc.Router, config Config, logger log.Log) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	return &Server{
		router: router,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
		},
		logger: logger,
		conns:  make(map[*serverConn]struct{}),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}
	if s.config.MaxMessageSize > 0 {
		ws.SetReadLimit(s.config.MaxMessageSize)
	}

	c := &serverConn{ws: ws, writeTimeout: s.config.WriteTimeout}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	logger := s.logger.With(log.String("remote", ws.RemoteAddr().String()))
	logger.Debug("Peer connected")
	s.serve(r.Context(), c, logger)

	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	_ = ws.Close()
	logger.Debug("Peer disconnected")
}

func (s *Server) serve(parent context.Context, c *serverConn, logger log.Log) {
	// hijacked connections outlive the request context
	var inflight sync.WaitGroup
	defer inflight.Wait()

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	defer cancel()
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Read failed", log.Error(err))
			}
			return
		}
		var f Frame
		if err := decodeFrame(raw, &f); err != nil {
			logger.Warn("Dropping malformed frame", log.Error(err))
			continue
		}
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			s.router.Dispatch(ctx, c, f.Channel, f.Args...)
		}()
	}
}

// Close disconnects every peer.
func (s *Server) Close() error {
	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.close()
	}
	return nil
}

// serverConn serializes writes, gorilla connections allow one concurrent writer.
type serverConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

func (c *serverConn) Send(channel string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.ws.WriteJSON(Frame{Channel: channel, Args: args})
}

func (c *serverConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.ws.Close()
}
