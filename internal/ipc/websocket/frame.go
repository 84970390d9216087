// Package websocket carries ipc messages as JSON frames over gorilla/websocket.
package websocket

import (
	"bytes"
	"encoding/json"
)

// Frame is one ipc message on the wire.
type Frame struct {
	Channel string `json:"channel"`
	Args    []any  `json:"args"`
}

// decodeFrame keeps numbers as json.Number so integers survive the trip.
func decodeFrame(raw []byte, f *Frame) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(f)
}
