package ipc

import (
	"context"
	"sync"

	"github.com/zeusync/yame/internal/core/events/observable"
)

var _ Conn = (*Local)(nil)

// Local connects a requesting side to a Router inside one process. Requests
// are served on their own goroutine and replies are triggered on the Local,
// just like messages arriving from another process.
type Local struct {
	observable.Emitter

	router *Router
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewLocal(router *Router) *Local {
	ctx, cancel := context.WithCancel(context.Background())
	return &Local{router: router, ctx: ctx, cancel: cancel}
}

func (l *Local) Send(channel string, args ...any) error {
	if l.ctx.Err() != nil {
		return ErrClosed
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.router.Dispatch(l.ctx, localReply{l}, channel, args...)
	}()
	return nil
}

// Close cancels in-flight handlers and waits for them to return.
func (l *Local) Close() error {
	l.cancel()
	l.wg.Wait()
	return nil
}

type localReply struct{ l *Local }

func (r localReply) Send(channel string, args ...any) error {
	r.l.Trigger(channel, args...)
	return nil
}
