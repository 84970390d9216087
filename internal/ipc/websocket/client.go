package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/yame/internal/core/events/observable"
	"github.com/zeusync/yame/internal/core/observability/log"
	"github.com/zeusync/yame/internal/ipc"
)

// EventClose is triggered on the client once its read loop stops, with the
// read error as argument.
const EventClose = "ipc:close"

var _ ipc.Conn = (*Client)(nil)

// Client is the requesting end of a websocket ipc connection. Incoming frames
// are triggered as events named after their channel; numbers arrive as
// json.Number.
type Client struct {
	observable.Emitter

	ws     *websocket.Conn
	logger log.Log
	config Config

	wmu  sync.Mutex
	done chan struct{}
}

// Dial connects to a Server at url ("ws://host:port/ipc").
func Dial(ctx context.Context, url string, config Config, logger log.Log) (*Client, error) {
	if logger == nil {
		logger = log.Nop()
	}
	dialer := websocket.Dialer{
		ReadBufferSize:   config.ReadBufferSize,
		WriteBufferSize:  config.WriteBufferSize,
		HandshakeTimeout: 10 * time.Second,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	if config.MaxMessageSize > 0 {
		ws.SetReadLimit(config.MaxMessageSize)
	}
	c := &Client{
		ws:     ws,
		logger: logger.With(log.String("url", url)),
		config: config,
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Send(channel string, args ...any) error {
	select {
	case <-c.done:
		return ipc.ErrClosed
	default:
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.config.WriteTimeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	return c.ws.WriteJSON(Frame{Channel: channel, Args: args})
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Debug("Read loop stopped", log.Error(err))
			c.Trigger(EventClose, err)
			return
		}
		var f Frame
		if err := decodeFrame(raw, &f); err != nil {
			c.logger.Warn("Dropping malformed frame", log.Error(err))
			continue
		}
		c.Trigger(f.Channel, f.Args...)
	}
}

// Done is closed once the connection stopped reading.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close sends a close frame and waits for the read loop to stop.
func (c *Client) Close() error {
	c.wmu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.wmu.Unlock()
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	if cerr := c.ws.Close(); err == nil {
		err = cerr
	}
	return err
}
