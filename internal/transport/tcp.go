package transport

import (
	"net"
	"time"
)

// TCPTransport implements Transport over a WiFi/Bluetooth-bridge ELM327
// clone that exposes a raw TCP socket.
type TCPTransport struct {
	conn net.Conn
}

// NewTCPTransport dials addr ("host:port").
func NewTCPTransport(addr string) (*TCPTransport, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, classifyIOError(err)
	}
	return &TCPTransport{conn: conn}, nil
}

func (t *TCPTransport) Read(p []byte) (int, error) {
	t.conn.SetReadDeadline(time.Now().Add(wrapTimeout))
	n, err := t.conn.Read(p)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, err
		}
		return n, classifyIOError(err)
	}
	return n, nil
}

func (t *TCPTransport) Write(p []byte) (int, error) {
	n, err := t.conn.Write(p)
	if err != nil {
		return n, classifyIOError(err)
	}
	return n, nil
}

func (t *TCPTransport) Close() error { return t.conn.Close() }

// Flush is a no-op for a TCP stream: there is no driver-side buffer to
// discard short of reading and throwing bytes away, which would race the
// adapter's own response.
func (t *TCPTransport) Flush() error { return nil }
