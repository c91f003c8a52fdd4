package transport

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	controllerPollInterval = 100 * time.Millisecond
	disconnectTimeout      = 5 * time.Second
)

// SocketClient is a long-lived handle to a venue connection: callers send
// through it and it silently reconnects underneath them until Disconnect is
// called. A background controller goroutine polls the inner connection's
// health every 100ms and drives reconnection or teardown.
type SocketClient struct {
	suffix []byte

	inner          *socketClientInner
	controllerTomb *tomb.Tomb
	disconnectMode atomic.Bool
}

// Connect dials config.Address and starts the supervising controller.
// config.PostConnection, if set, runs synchronously before Connect returns.
func Connect(config SocketConfig) (*SocketClient, error) {
	inner, err := connectInner(config)
	if err != nil {
		return nil, err
	}

	client := &SocketClient{
		suffix: config.Suffix,
		inner:  inner,
	}
	client.controllerTomb = new(tomb.Tomb)
	client.controllerTomb.Go(client.runController)

	if config.PostConnection != nil {
		runHook("post_connection", config.PostConnection)
	}
	return client, nil
}

// runHook invokes an optional lifecycle hook, recovering and logging a
// panic rather than letting it crash the caller. Mirrors the recover-and-log
// pattern LiveClock uses around timer callbacks: hook errors are logged and
// swallowed, never propagated.
func runHook(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("hook", name).Msg("lifecycle hook panicked")
		}
	}()
	fn()
}

// SendBytes writes data followed by the frame suffix to the current
// connection.
func (c *SocketClient) SendBytes(data []byte) error {
	return c.inner.write(data)
}

// IsDisconnected reports whether the controller task has exited, meaning
// the client is fully torn down and will not reconnect.
func (c *SocketClient) IsDisconnected() bool {
	select {
	case <-c.controllerTomb.Dead():
		return true
	default:
		return false
	}
}

// Disconnect requests teardown and blocks (up to 5 seconds) for the
// controller to confirm it is finished.
func (c *SocketClient) Disconnect() {
	c.disconnectMode.Store(true)

	deadline := time.Now().Add(disconnectTimeout)
	for !c.IsDisconnected() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !c.IsDisconnected() {
		log.Error().Msg("timeout waiting for socket controller to finish")
	}
}

// runController is the 100ms-polling supervisor. Its transition table has
// four states over (disconnectRequested, innerAlive):
//
//	(false, false): connection died on its own -> reconnect and keep going;
//	                if that single attempt fails, the controller exits
//	(true,  true):  caller asked to disconnect, still alive -> shut down
//	(true,  false): caller asked to disconnect, already dead -> done
//	(false, true):  healthy -> nothing to do
//
// Because a failed attempt ends the controller and a successful one resets
// the count, ReconnectBackoff is only ever asked for attempt 1.
func (c *SocketClient) runController() error {
	config := c.inner.config
	attempt := 0
	backoff := config.ReconnectBackoff
	if backoff == nil {
		backoff = NoBackoff{}
	}

	for {
		time.Sleep(controllerPollInterval)

		disconnectRequested := c.disconnectMode.Load()
		alive := c.inner.isAlive()

		switch {
		case !disconnectRequested && !alive:
			attempt++
			if delay := backoff.NextDelay(attempt); delay > 0 {
				time.Sleep(delay)
			}
			if err := c.inner.reconnect(); err != nil {
				log.Error().Err(err).Msg("reconnect failed, controller exiting")
				return fmt.Errorf("transport: reconnect failed: %w", err)
			}
			attempt = 0
			log.Debug().Msg("reconnected successfully")
			if config.PostReconnection != nil {
				runHook("post_reconnection", config.PostReconnection)
			}

		case disconnectRequested && alive:
			if err := c.inner.shutdown(); err != nil {
				log.Error().Err(err).Msg("error shutting down socket")
			}
			if config.PostDisconnection != nil {
				runHook("post_disconnection", config.PostDisconnection)
			}
			return nil

		case disconnectRequested && !alive:
			return nil

		default: // healthy, nothing to do
		}
	}
}
