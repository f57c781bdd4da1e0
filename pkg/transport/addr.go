package transport

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// DefaultPort is the finger port (RFC 1288).
const DefaultPort uint16 = 79

// ErrInvalidAddr is returned by ParseAddr for values that are neither a
// socket address, an IP address, nor a Unix socket path.
var ErrInvalidAddr = errors.New("invalid listen address")

// Kind identifies the transport behind an Addr, Listener or Conn.
type Kind int

const (
	KindTCP Kind = iota
	KindUnix
	KindStream
)

// String returns the transport name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindUnix:
		return "unix"
	case KindStream:
		return "stream"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Addr is a listen address: a TCP socket address or a Unix socket path.
type Addr struct {
	Kind Kind

	// TCP is set when Kind is KindTCP.
	TCP netip.AddrPort

	// Path is set when Kind is KindUnix.
	Path string
}

// TCPAddr returns a TCP listen address.
func TCPAddr(ap netip.AddrPort) Addr {
	return Addr{Kind: KindTCP, TCP: ap}
}

// UnixAddr returns a Unix socket listen address.
func UnixAddr(path string) Addr {
	return Addr{Kind: KindUnix, Path: path}
}

func (a Addr) String() string {
	switch a.Kind {
	case KindTCP:
		return a.TCP.String()
	case KindUnix:
		return a.Path
	default:
		return a.Kind.String()
	}
}

// Network returns the network name understood by package net.
func (a Addr) Network() string {
	switch a.Kind {
	case KindUnix:
		return "unix"
	default:
		return "tcp"
	}
}

// ParseAddr parses a listen address given on the command line or in the
// config file.
//
// Values starting with "/", "./" or "../" are Unix socket paths. Anything
// else must be an IP socket address ("127.0.0.1:7979", "[::1]:79") or a bare
// IP address, which listens on DefaultPort. Host names are not resolved.
func ParseAddr(s string) (Addr, error) {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		return UnixAddr(s), nil
	}

	if ap, err := netip.ParseAddrPort(s); err == nil {
		return TCPAddr(ap), nil
	}

	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Addr{}, fmt.Errorf("%w %q: expected IP, IP:port or socket path", ErrInvalidAddr, s)
	}
	return TCPAddr(netip.AddrPortFrom(ip, DefaultPort)), nil
}
