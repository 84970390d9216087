package ipc

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestTimeout is returned when the context of a request ends before a reply.
	ErrRequestTimeout = errors.New("ipc request timed out")
	// ErrRequestFailed is matched by every *RemoteError.
	ErrRequestFailed = errors.New("ipc request failed")
	// ErrNoHandler is reported to the caller when no handler serves a channel.
	ErrNoHandler = errors.New("no handler for channel")
	// ErrMissingID is logged for requests that carry no correlation id.
	ErrMissingID = errors.New("request without correlation id")
	ErrClosed    = errors.New("ipc connection closed")
)

// RemoteError carries the failure message replied by the handling side.
type RemoteError struct {
	Channel string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Channel, e.Message)
}

func (e *RemoteError) Unwrap() error { return ErrRequestFailed }
