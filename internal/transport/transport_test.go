package transport

import (
	"bytes"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrainFramesSplitsOnSuffix(t *testing.T) {
	var got [][]byte
	inner := &socketClientInner{
		config: SocketConfig{
			Suffix:  []byte("\r\n"),
			Handler: func(data []byte) { got = append(got, append([]byte{}, data...)) },
		},
	}

	buf := bytes.NewBufferString("hello\r\nworld\r\npart")
	inner.drainFrames(buf)

	require.Len(t, got, 2)
	assert.Equal(t, "hello", string(got[0]))
	assert.Equal(t, "world", string(got[1]))
	assert.Equal(t, "part", buf.String())
}

// echoServer accepts connections on a loopback listener and, for each byte
// frame it reads (suffix-delimited), hands the raw bytes to onFrame. It
// returns the listener's address and a stop function.
func echoServer(t *testing.T, suffix []byte, onFrame func(conn net.Conn, frame []byte)) (string, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var wg sync.WaitGroup
	stopped := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				var buf bytes.Buffer
				chunk := make([]byte, 4096)
				for {
					n, err := conn.Read(chunk)
					if n > 0 {
						buf.Write(chunk[:n])
						for {
							data := buf.Bytes()
							idx := bytes.Index(data, suffix)
							if idx < 0 {
								break
							}
							frame := make([]byte, idx)
							copy(frame, data[:idx])
							buf.Next(idx + len(suffix))
							select {
							case <-stopped:
								return
							default:
								onFrame(conn, frame)
							}
						}
					}
					if err != nil {
						return
					}
				}
			}()
		}
	}()

	return ln.Addr().String(), func() {
		close(stopped)
		ln.Close()
		wg.Wait()
	}
}

func TestSendBytesAppendsSuffix(t *testing.T) {
	received := make(chan []byte, 1)
	addr, stop := echoServer(t, []byte("\n"), func(conn net.Conn, frame []byte) {
		received <- frame
	})
	defer stop()

	client, err := Connect(SocketConfig{
		Address: addr,
		Suffix:  []byte("\n"),
		Handler: func([]byte) {},
	})
	require.NoError(t, err)
	defer client.Disconnect()

	require.NoError(t, client.SendBytes([]byte("ping")))

	select {
	case frame := <-received:
		assert.Equal(t, "ping", string(frame))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive frame")
	}
}

func TestClientReceivesFramedMessages(t *testing.T) {
	addr, stop := echoServer(t, []byte("\n"), func(conn net.Conn, frame []byte) {
		conn.Write(append(append([]byte{}, frame...), []byte("-ack\n")...))
	})
	defer stop()

	var mu sync.Mutex
	var frames []string
	client, err := Connect(SocketConfig{
		Address: addr,
		Suffix:  []byte("\n"),
		Handler: func(data []byte) {
			mu.Lock()
			frames = append(frames, string(data))
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	defer client.Disconnect()

	require.NoError(t, client.SendBytes([]byte("hi")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) == 1
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "hi-ack", frames[0])
	mu.Unlock()
}

func TestDisconnectReportsFinished(t *testing.T) {
	addr, stop := echoServer(t, []byte("\n"), func(net.Conn, []byte) {})
	defer stop()

	client, err := Connect(SocketConfig{
		Address: addr,
		Suffix:  []byte("\n"),
		Handler: func([]byte) {},
	})
	require.NoError(t, err)

	assert.False(t, client.IsDisconnected())
	client.Disconnect()
	assert.True(t, client.IsDisconnected())
}

// serveEcho accepts connections on ln and echoes back every frame it reads,
// suffix-delimited, until ln is closed; closing ln also closes every
// connection it accepted, so the peer sees EOF.
func serveEcho(ln net.Listener, suffix []byte) {
	var mu sync.Mutex
	var conns []net.Conn
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			conn.Close()
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		mu.Lock()
		conns = append(conns, conn)
		mu.Unlock()
		go func(conn net.Conn) {
			var buf bytes.Buffer
			chunk := make([]byte, 4096)
			for {
				n, err := conn.Read(chunk)
				if n > 0 {
					buf.Write(chunk[:n])
					for {
						data := buf.Bytes()
						idx := bytes.Index(data, suffix)
						if idx < 0 {
							break
						}
						frame := make([]byte, idx)
						copy(frame, data[:idx])
						buf.Next(idx + len(suffix))
						conn.Write(append(append([]byte{}, frame...), suffix...))
					}
				}
				if err != nil {
					return
				}
			}
		}(conn)
	}
}

// TestReconnectTransparency exercises spec §8's reconnect-transparency
// property: killing the server side mid-session and restarting it on the
// same address leaves the client alive again, PostReconnection fires
// exactly once, and sends issued after the break succeed without any
// pre-break frame being redelivered (the restarted listener serves a brand
// new connection, so nothing from the old one can leak through).
func TestReconnectTransparency(t *testing.T) {
	suffix := []byte("\n")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	go serveEcho(ln, suffix)

	var reconnects int32
	var mu sync.Mutex
	var frames []string
	client, err := Connect(SocketConfig{
		Address: addr,
		Suffix:  suffix,
		Handler: func(data []byte) {
			mu.Lock()
			frames = append(frames, string(data))
			mu.Unlock()
		},
		PostReconnection: func() {
			atomic.AddInt32(&reconnects, 1)
		},
	})
	require.NoError(t, err)
	defer client.Disconnect()

	require.NoError(t, client.SendBytes([]byte("before")))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) == 1
	}, 2*time.Second, 20*time.Millisecond)

	// Kill the server side (listener and its connection); the client's read
	// task sees EOF. The listener is back on the same address before the
	// controller's next poll, so its single reconnect attempt succeeds.
	ln.Close()

	ln2, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	defer ln2.Close()
	go serveEcho(ln2, suffix)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&reconnects) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.False(t, client.IsDisconnected())

	require.NoError(t, client.SendBytes([]byte("after")))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) == 2
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"before", "after"}, frames)
	mu.Unlock()

	// No further reconnects should have happened once the client settled.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&reconnects))
}

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff{Base: time.Second, Max: 8 * time.Second}
	assert.Equal(t, time.Second, b.NextDelay(1))
	assert.Equal(t, 2*time.Second, b.NextDelay(2))
	assert.Equal(t, 4*time.Second, b.NextDelay(3))
	assert.Equal(t, 8*time.Second, b.NextDelay(4))
	assert.Equal(t, 8*time.Second, b.NextDelay(5))
}
