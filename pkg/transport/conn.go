package transport

import (
	"io"
	"net"
	"sync"
)

// peerInetd is shown in place of a peer address for stream connections.
const peerInetd = "inetd"

// Conn is one client byte stream. Reader and Writer may be used from
// different goroutines.
type Conn struct {
	kind   Kind
	r      io.Reader
	w      io.Writer
	peer   string
	peerIP string

	closeOnce sync.Once
	closeErr  error
	closeFn   func() error
}

func newNetConn(kind Kind, c net.Conn) *Conn {
	conn := &Conn{
		kind:    kind,
		r:       c,
		w:       c,
		closeFn: c.Close,
	}

	switch addr := c.RemoteAddr().(type) {
	case *net.TCPAddr:
		conn.peer = addr.String()
		conn.peerIP = addr.IP.String()
	default:
		// Unix peers are unnamed.
		conn.peer = "unix"
	}
	return conn
}

// NewStreamConn wraps an inetd-style pair of streams, typically os.Stdin and
// os.Stdout. Close closes whichever of r and w implement io.Closer.
func NewStreamConn(r io.Reader, w io.Writer) *Conn {
	return &Conn{
		kind: KindStream,
		r:    r,
		w:    w,
		peer: peerInetd,
		closeFn: func() error {
			var firstErr error
			if c, ok := w.(io.Closer); ok {
				firstErr = c.Close()
			}
			if c, ok := r.(io.Closer); ok && any(r) != any(w) {
				if err := c.Close(); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		},
	}
}

// Kind returns the transport the connection arrived on.
func (c *Conn) Kind() Kind {
	return c.kind
}

// Reader returns the read half.
func (c *Conn) Reader() io.Reader {
	return c.r
}

// Writer returns the write half.
func (c *Conn) Writer() io.Writer {
	return c.w
}

// PeerDisplay returns a printable peer: "ip:port" for TCP, "unix" for Unix
// sockets and "inetd" for streams.
func (c *Conn) PeerDisplay() string {
	return c.peer
}

// PeerIP returns the client IP for TCP connections and "" otherwise.
func (c *Conn) PeerIP() string {
	return c.peerIP
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		if c.closeFn != nil {
			c.closeErr = c.closeFn()
		}
	})
	return c.closeErr
}
