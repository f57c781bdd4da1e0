package transport

import (
	"context"
	"fmt"
	"net"
)

// Listener accepts connections on a TCP or Unix socket.
type Listener struct {
	ln   net.Listener
	addr Addr
}

// Listen binds addr. A stale Unix socket file is not removed: binding to an
// existing path fails.
func Listen(ctx context.Context, addr Addr) (*Listener, error) {
	if addr.Kind != KindTCP && addr.Kind != KindUnix {
		return nil, fmt.Errorf("cannot listen on %s transport", addr.Kind)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, addr.Network(), addr.String())
	if err != nil {
		return nil, fmt.Errorf("cannot bind to %s: %w", addr, err)
	}
	return newListener(ln)
}

func newListener(ln net.Listener) (*Listener, error) {
	switch a := ln.Addr().(type) {
	case *net.TCPAddr:
		return &Listener{ln: ln, addr: TCPAddr(a.AddrPort())}, nil
	case *net.UnixAddr:
		return &Listener{ln: ln, addr: UnixAddr(a.Name)}, nil
	default:
		_ = ln.Close()
		return nil, fmt.Errorf("unsupported listener address %s/%s", a.Network(), a.String())
	}
}

// Accept waits for the next connection. After Close it returns an error
// matching net.ErrClosed.
func (l *Listener) Accept() (*Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}

	if tcp, ok := c.(*net.TCPConn); ok {
		// Replies are written in one flush; no point delaying them.
		_ = tcp.SetNoDelay(true)
	}
	return newNetConn(l.addr.Kind, c), nil
}

// Addr returns the bound address. For TCP listeners bound to port 0 it
// carries the port picked by the kernel.
func (l *Listener) Addr() Addr {
	return l.addr
}

// Kind returns the listener transport.
func (l *Listener) Kind() Kind {
	return l.addr.Kind
}

// Close stops the listener. Unix socket files created by Listen are removed.
func (l *Listener) Close() error {
	return l.ln.Close()
}
