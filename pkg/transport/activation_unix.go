//go:build unix

package transport

import (
	"fmt"
	"net"
	"os"

	"github.com/marmos91/fingered/internal/logger"
	"golang.org/x/sys/unix"
)

// FromListenFDs adopts the first listening socket passed by a service
// manager (systemd socket activation, or any launcher following the
// LISTEN_FDS protocol). Only descriptor 3 is used; extra descriptors are
// left alone.
//
// The activation variables are removed from the environment so child
// processes do not inherit them.
func FromListenFDs() (*Listener, error) {
	defer unsetActivationEnv()

	n, err := activationFDs(os.Getenv, os.Getpid())
	if err != nil {
		return nil, err
	}
	if n > 1 {
		logger.Warn("ignoring extra activation sockets", "count", n-1)
	}

	return listenerFromFD(listenFDsStart)
}

func listenerFromFD(fd int) (*Listener, error) {
	f := os.NewFile(uintptr(fd), fmt.Sprintf("LISTEN_FD_%d", fd))
	if f == nil {
		return nil, fmt.Errorf("invalid activation descriptor %d", fd)
	}
	defer func() { _ = f.Close() }()

	if err := checkListeningStream(fd); err != nil {
		return nil, fmt.Errorf("activation descriptor %d: %w", fd, err)
	}

	// FileListener dups the descriptor; the original is closed above.
	ln, err := net.FileListener(f)
	if err != nil {
		return nil, fmt.Errorf("activation descriptor %d: %w", fd, err)
	}
	return newListener(ln)
}

// checkListeningStream rejects descriptors that are not stream sockets in
// the listening state. A launcher may hand over a datagram socket or one it
// only bound; accepting on either would fail much later.
func checkListeningStream(fd int) error {
	typ, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_TYPE)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotListeningSocket, err)
	}
	if typ != unix.SOCK_STREAM {
		return fmt.Errorf("%w: socket type %d", ErrNotListeningSocket, typ)
	}

	listening, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ACCEPTCONN)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotListeningSocket, err)
	}
	if listening == 0 {
		return fmt.Errorf("%w: listen was never called", ErrNotListeningSocket)
	}
	return nil
}
