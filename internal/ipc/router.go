package ipc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zeusync/yame/internal/core/observability/log"
)

// HandlerFunc serves one request. args excludes the correlation id.
type HandlerFunc func(ctx context.Context, args ...any) (any, error)

// Router dispatches requests to handlers by channel and sends their replies.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   log.Log
}

type RouterOption func(*Router)

func WithLogger(logger log.Log) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		handlers: make(map[string]HandlerFunc),
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers h for channel, replacing any previous handler.
func (r *Router) Handle(channel string, h HandlerFunc) {
	r.mu.Lock()
	r.handlers[channel] = h
	r.mu.Unlock()
}

// Channels returns the served channels, sorted.
func (r *Router) Channels() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.handlers))
	for ch := range r.handlers {
		out = append(out, ch)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Dispatch serves the request (id, args...) received on channel and replies
// through to. Requests without an id are dropped.
func (r *Router) Dispatch(ctx context.Context, to Sender, channel string, args ...any) {
	if len(args) == 0 {
		r.logger.Warn("Dropping request", log.String("channel", channel), log.Error(ErrMissingID))
		return
	}
	id, ok := args[0].(string)
	if !ok || id == "" {
		r.logger.Warn("Dropping request", log.String("channel", channel), log.Error(ErrMissingID))
		return
	}

	r.mu.RLock()
	h := r.handlers[channel]
	r.mu.RUnlock()

	var err error
	if h == nil {
		err = to.Send(FailChannel(channel, id), fmt.Sprintf("%v: %s", ErrNoHandler, channel))
	} else if result, herr := h(ctx, args[1:]...); herr != nil {
		r.logger.Debug("Request failed", log.String("channel", channel), log.String("id", id), log.Error(herr))
		err = to.Send(FailChannel(channel, id), herr.Error())
	} else {
		err = to.Send(DoneChannel(channel, id), result)
	}
	if err != nil {
		r.logger.Warn("Reply not sent", log.String("channel", channel), log.String("id", id), log.Error(err))
	}
}
