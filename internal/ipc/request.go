package ipc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type reply struct {
	args []any
	err  error
}

// NewRequestID returns a single-use correlation id for channel.
func NewRequestID(channel string) string {
	return channel + "-" + uuid.NewString()
}

// Request sends args on channel and waits for its reply. It returns the
// arguments of the done reply, a *RemoteError for a fail reply, or an error
// wrapping ErrRequestTimeout and the context error when ctx ends first. Both
// reply listeners are removed in every case.
func Request(ctx context.Context, conn Conn, channel string, args ...any) ([]any, error) {
	id := NewRequestID(channel)
	done := DoneChannel(channel, id)
	fail := FailChannel(channel, id)

	result := make(chan reply, 1)
	settle := func(r reply) {
		conn.Off("", nil, id)
		select {
		case result <- r:
		default:
		}
	}
	conn.Once(done, func(a ...any) { settle(reply{args: a}) }, id)
	conn.Once(fail, func(a ...any) { settle(reply{err: failure(channel, a)}) }, id)

	if err := conn.Send(channel, append([]any{id}, args...)...); err != nil {
		conn.Off("", nil, id)
		return nil, fmt.Errorf("send %s: %w", channel, err)
	}

	select {
	case r := <-result:
		return r.args, r.err
	case <-ctx.Done():
		// A reply racing the deadline wins, the synthetic fail is then a no-op.
		conn.Trigger(fail, fmt.Errorf("%w: %s: %w", ErrRequestTimeout, channel, ctx.Err()))
		r := <-result
		return r.args, r.err
	}
}

func failure(channel string, args []any) error {
	if len(args) == 0 {
		return &RemoteError{Channel: channel, Message: "unknown error"}
	}
	switch v := args[0].(type) {
	case error:
		if errors.Is(v, ErrRequestTimeout) {
			return v
		}
		return &RemoteError{Channel: channel, Message: v.Error()}
	case string:
		return &RemoteError{Channel: channel, Message: v}
	default:
		return &RemoteError{Channel: channel, Message: fmt.Sprint(v)}
	}
}
