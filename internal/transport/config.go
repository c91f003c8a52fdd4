// Package transport implements a raw TCP client with optional TLS, used to
// speak line-delimited venue protocols: a suffix-framed byte stream in,
// arbitrary byte messages out, with automatic reconnection supervised by a
// background controller.
package transport

import "time"

// MessageHandler receives one decoded frame (the bytes between the last
// suffix and the next one, suffix stripped) read off the wire.
type MessageHandler func(data []byte)

// HeartbeatConfig periodically writes Message (with the client's frame
// suffix appended) to keep a connection alive across idle periods.
type HeartbeatConfig struct {
	Interval time.Duration
	Message  []byte
}

// SocketConfig describes a venue TCP endpoint and how to frame and handle
// its byte stream.
type SocketConfig struct {
	// Address is the "host:port" to dial.
	Address string
	// TLS enables a TLS handshake after the TCP connect; ServerName is
	// required when TLS is true unless InsecureSkipVerify is also set
	// (test/sandbox venues only).
	TLS                bool
	ServerName         string
	InsecureSkipVerify bool

	// Suffix delimits frames in the byte stream; it is appended to every
	// sent message and stripped from every delivered one.
	Suffix []byte

	// Handler is called once per received frame.
	Handler MessageHandler

	// Heartbeat is optional; nil disables the heartbeat task entirely.
	Heartbeat *HeartbeatConfig

	// ReadIdleTimeout, if non-zero, fails the read task (triggering
	// reconnection) when no bytes have been received for this long. Disabled
	// by default: most venues run their own application-level heartbeat and
	// a read deadline here would fight with that.
	ReadIdleTimeout time.Duration

	// ReconnectBackoff controls the delay before each reconnect attempt; nil
	// uses NoBackoff (reconnect immediately, matching the unthrottled retry
	// of the source implementation).
	ReconnectBackoff ReconnectBackoff

	// PostConnection, PostReconnection, and PostDisconnection are optional
	// lifecycle hooks, called synchronously from the connect/controller
	// goroutines. Errors are not possible here: any side effect a caller
	// needs (metrics, logging, resubscription) happens inline.
	PostConnection    func()
	PostReconnection  func()
	PostDisconnection func()
}
