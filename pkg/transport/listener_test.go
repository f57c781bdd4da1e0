package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoOnce accepts one connection, reads one line and writes it back upper-cased.
func echoOnce(t *testing.T, l *Listener) <-chan *Conn {
	t.Helper()
	accepted := make(chan *Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			close(accepted)
			return
		}
		buf := make([]byte, 64)
		n, _ := c.Reader().Read(buf)
		_, _ = c.Writer().Write(bytes.ToUpper(buf[:n]))
		_ = c.Close()
		accepted <- c
	}()
	return accepted
}

func roundTrip(t *testing.T, network, address, msg string) string {
	t.Helper()
	c, err := net.Dial(network, address)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	_, err = c.Write([]byte(msg))
	require.NoError(t, err)
	reply, err := io.ReadAll(c)
	require.NoError(t, err)
	return string(reply)
}

func TestListen_TCP(t *testing.T) {
	l, err := Listen(context.Background(), TCPAddr(netip.MustParseAddrPort("127.0.0.1:0")))
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	assert.Equal(t, KindTCP, l.Kind())
	assert.NotZero(t, l.Addr().TCP.Port())

	accepted := echoOnce(t, l)
	assert.Equal(t, "HELLO\r\n", roundTrip(t, "tcp", l.Addr().String(), "hello\r\n"))

	c := <-accepted
	require.NotNil(t, c)
	assert.Equal(t, KindTCP, c.Kind())
	assert.Equal(t, "127.0.0.1", c.PeerIP())
	assert.True(t, strings.HasPrefix(c.PeerDisplay(), "127.0.0.1:"))
}

func TestListen_Unix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.sock")
	l, err := Listen(context.Background(), UnixAddr(path))
	require.NoError(t, err)

	assert.Equal(t, KindUnix, l.Kind())
	assert.Equal(t, path, l.Addr().Path)

	accepted := echoOnce(t, l)
	assert.Equal(t, "ALICE\r\n", roundTrip(t, "unix", path, "alice\r\n"))

	c := <-accepted
	require.NotNil(t, c)
	assert.Equal(t, "unix", c.PeerDisplay())
	assert.Empty(t, c.PeerIP())

	require.NoError(t, l.Close())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "socket file should be removed on close")
}

func TestListen_UnixStaleSocketNotRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, err := Listen(context.Background(), UnixAddr(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot bind to "+path)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestListen_StreamKindRejected(t *testing.T) {
	_, err := Listen(context.Background(), Addr{Kind: KindStream})
	assert.Error(t, err)
}

func TestAccept_AfterClose(t *testing.T) {
	l, err := Listen(context.Background(), TCPAddr(netip.MustParseAddrPort("127.0.0.1:0")))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = l.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)
}

type closeRecorder struct {
	bytes.Buffer
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestStreamConn(t *testing.T) {
	in := &closeRecorder{}
	in.WriteString("bob\r\n")
	out := &closeRecorder{}

	c := NewStreamConn(in, out)
	assert.Equal(t, KindStream, c.Kind())
	assert.Equal(t, "inetd", c.PeerDisplay())
	assert.Empty(t, c.PeerIP())

	line, err := io.ReadAll(c.Reader())
	require.NoError(t, err)
	assert.Equal(t, "bob\r\n", string(line))

	_, err = c.Writer().Write([]byte("ok\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "ok\r\n", out.String())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, in.closed)
	assert.Equal(t, 1, out.closed)
}

func TestStreamConn_NonClosers(t *testing.T) {
	var out bytes.Buffer
	c := NewStreamConn(strings.NewReader("x"), &out)
	assert.NoError(t, c.Close())
}
