package transport

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// socketClientInner owns one live connection: the read goroutine draining
// and framing the byte stream, the optional heartbeat goroutine, and the
// shared writer both the outer client and the heartbeat task write through.
// Reconnection replaces its conn/writer and restarts both goroutines without
// the outer SocketClient ever changing identity.
type socketClientInner struct {
	config SocketConfig

	writerMu sync.Mutex
	conn     net.Conn

	readTomb      *tomb.Tomb
	heartbeatTomb *tomb.Tomb
}

func dial(config SocketConfig) (net.Conn, error) {
	if !config.TLS {
		return net.DialTimeout("tcp", config.Address, 10*time.Second)
	}

	rawConn, err := net.DialTimeout("tcp", config.Address, 10*time.Second)
	if err != nil {
		return nil, err
	}
	tlsConn := tls.Client(rawConn, &tls.Config{
		ServerName:         config.ServerName,
		InsecureSkipVerify: config.InsecureSkipVerify,
	})
	if err := tlsConn.Handshake(); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("transport: TLS handshake: %w", err)
	}
	return tlsConn, nil
}

func connectInner(config SocketConfig) (*socketClientInner, error) {
	conn, err := dial(config)
	if err != nil {
		return nil, err
	}

	inner := &socketClientInner{config: config, conn: conn}
	inner.readTomb = new(tomb.Tomb)
	inner.readTomb.Go(inner.readLoop)

	if config.Heartbeat != nil {
		inner.heartbeatTomb = new(tomb.Tomb)
		inner.heartbeatTomb.Go(inner.heartbeatLoop)
	}
	return inner, nil
}

// readLoop drains the connection, splits it on the frame suffix, and
// invokes the handler once per complete frame. It exits (and marks the
// inner client no longer alive) on any read error, EOF, or idle timeout.
func (c *socketClientInner) readLoop() error {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)

	for {
		if c.config.ReadIdleTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.config.ReadIdleTimeout))
		}

		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			c.drainFrames(&buf)
		}
		if err != nil {
			log.Error().Err(err).Msg("socket read failed, read task exiting")
			return nil
		}
	}
}

func (c *socketClientInner) drainFrames(buf *bytes.Buffer) {
	suffix := c.config.Suffix
	for {
		data := buf.Bytes()
		idx := bytes.Index(data, suffix)
		if idx < 0 {
			return
		}
		frame := make([]byte, idx)
		copy(frame, data[:idx])
		buf.Next(idx + len(suffix))
		c.config.Handler(frame)
	}
}

func (c *socketClientInner) heartbeatLoop() error {
	hb := c.config.Heartbeat
	message := append(append([]byte{}, hb.Message...), c.config.Suffix...)
	ticker := time.NewTicker(hb.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.heartbeatTomb.Dying():
			return nil
		case <-ticker.C:
			c.writerMu.Lock()
			_, err := c.conn.Write(message)
			c.writerMu.Unlock()
			if err != nil {
				log.Error().Err(err).Msg("failed to send heartbeat")
			}
		}
	}
}

func (c *socketClientInner) write(data []byte) error {
	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	if _, err := c.conn.Write(data); err != nil {
		return err
	}
	_, err := c.conn.Write(c.config.Suffix)
	return err
}

// isAlive reports whether the read task is still running. There may be
// some delay between the connection actually dying and this reflecting it.
func (c *socketClientInner) isAlive() bool {
	return !c.readDone()
}

func (c *socketClientInner) readDone() bool {
	select {
	case <-c.readTomb.Dead():
		return true
	default:
		return false
	}
}

// shutdown aborts the read and heartbeat tasks and closes the connection.
func (c *socketClientInner) shutdown() error {
	c.readTomb.Kill(nil)
	if c.heartbeatTomb != nil {
		c.heartbeatTomb.Kill(nil)
	}

	c.writerMu.Lock()
	defer c.writerMu.Unlock()
	return c.conn.Close()
}

// reconnect dials a fresh connection and restarts the read and heartbeat
// tasks against it, replacing the old ones in place.
func (c *socketClientInner) reconnect() error {
	conn, err := dial(c.config)
	if err != nil {
		return err
	}

	c.writerMu.Lock()
	old := c.conn
	c.conn = conn
	c.writerMu.Unlock()
	old.Close()

	c.readTomb = new(tomb.Tomb)
	c.readTomb.Go(c.readLoop)

	if c.config.Heartbeat != nil {
		if c.heartbeatTomb != nil {
			c.heartbeatTomb.Kill(nil)
			c.heartbeatTomb.Wait()
		}
		c.heartbeatTomb = new(tomb.Tomb)
		c.heartbeatTomb.Go(c.heartbeatLoop)
	}
	return nil
}
