// Package ipc correlates requests and replies over an asynchronous message
// channel, the way an editor front end talks to the process owning the disk.
//
// A request on channel "directory:scan" is sent as ("directory:scan", id, args...)
// with a single-use id. The handling side answers on exactly one of
//
//	directory:scan:<id>:done (result...)
//	directory:scan:<id>:fail (message)
//
// and the requesting side listens to both, dropping the other listener as soon
// as one fires. No listener outlives its request.
package ipc

import (
	"fmt"

	"github.com/zeusync/yame/internal/core/events/observable"
)

// Sender writes a message on a channel.
type Sender interface {
	Send(channel string, args ...any) error
}

// Conn is the requesting end of a message channel. Incoming messages are
// triggered as events named after their channel.
type Conn interface {
	observable.Observable
	Sender
}

// DoneChannel returns the success reply channel of request id.
func DoneChannel(channel, id string) string {
	return fmt.Sprintf("%s:%s:done", channel, id)
}

// FailChannel returns the failure reply channel of request id.
func FailChannel(channel, id string) string {
	return fmt.Sprintf("%s:%s:fail", channel, id)
}
