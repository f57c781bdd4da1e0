package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function restoring output, level and format.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	prev := current.Load()
	install(sink{w: buf}, "text")
	mu.Unlock()

	cleanup := func() {
		mu.Lock()
		install(prev.out, "text")
		mu.Unlock()
		SetLevel("INFO")
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "[DEBUG] debug message")
		assert.Contains(t, out, "[INFO] info message")
		assert.Contains(t, out, "[WARN] warn message")
		assert.Contains(t, out, "[ERROR] error message")
	})

	t.Run("WarnLevelFiltersDebugAndInfo", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("warn")

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "warn message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")
		SetLevel("LOUD")

		Warn("still filtered")
		assert.Empty(t, buf.String())
	})
}

func TestMessageFormatting(t *testing.T) {
	t.Run("TextIncludesTimestampAndFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		Info("connection accepted", KeyPeer, "127.0.0.1:4242", KeyActive, 3)

		out := buf.String()
		assert.Regexp(t, `\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\]`, out)
		assert.Contains(t, out, "peer=127.0.0.1:4242")
		assert.Contains(t, out, "active=3")
	})

	t.Run("JSONFormatProducesValidJSON", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetFormat("json")
		Info("reload complete", KeyUsers, 2, KeyUsersFile, "/etc/fingered/users.toml")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "reload complete", entry["msg"])
		assert.Equal(t, float64(2), entry[KeyUsers])
		assert.Equal(t, "/etc/fingered/users.toml", entry[KeyUsersFile])
	})
}

func TestContextLogging(t *testing.T) {
	t.Run("LogContextInjectsFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetFormat("json")

		lc := NewLogContext("c0ffee", "192.0.2.7:51000").
			WithRequest("user", "alice").
			WithTrace("abc123", "xyz789")
		lc.Transport = "tcp"
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "request served", KeyBytesWritten, 7)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "abc123", entry[KeyTraceID])
		assert.Equal(t, "xyz789", entry[KeySpanID])
		assert.Equal(t, "c0ffee", entry[KeyConnectionID])
		assert.Equal(t, "192.0.2.7:51000", entry[KeyPeer])
		assert.Equal(t, "tcp", entry[KeyTransport])
		assert.Equal(t, "user", entry[KeyRequestKind])
		assert.Equal(t, "alice", entry[KeyUsername])
		assert.Equal(t, float64(7), entry[KeyBytesWritten])
	})

	t.Run("ContextWithoutLogContextHandled", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		require.NotPanics(t, func() {
			InfoCtx(context.Background(), "plain message")
		})
		assert.Contains(t, buf.String(), "plain message")
	})
}

func TestLogContext(t *testing.T) {
	t.Run("CloneIsIndependent", func(t *testing.T) {
		lc := NewLogContext("id", "unix")
		clone := lc.WithRequest("list", "")

		assert.Empty(t, lc.RequestKind)
		assert.Equal(t, "list", clone.RequestKind)
		assert.Equal(t, "unix", clone.Peer)
	})

	t.Run("CloneNil", func(t *testing.T) {
		var lc *LogContext
		assert.Nil(t, lc.Clone())
		assert.Nil(t, lc.WithTrace("a", "b"))
		assert.Zero(t, lc.DurationMs())
	})
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, "", Err(nil).Value.String())
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
	assert.Equal(t, KeyPeer, Peer("inetd").Key)
	assert.Equal(t, uint64(4), Generation(4).Value.Uint64())

	t.Run("TypedAttrsMixWithPairs", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetFormat("json")
		Warn("reload failed", UsersFile("/etc/fingered/users.toml"), Err(errors.New("bad toml")), KeyUsers, 0)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "/etc/fingered/users.toml", entry[KeyUsersFile])
		assert.Equal(t, "bad toml", entry[KeyError])
		assert.Equal(t, float64(0), entry[KeyUsers])
	})
}

func TestParseLevel(t *testing.T) {
	lv, ok := ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lv)

	_, ok = ParseLevel("LOUD")
	assert.False(t, ok)
}

func TestConcurrentLogging(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			Info("concurrent", "n", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, strings.Count(buf.String(), "concurrent"))
}

func TestInit(t *testing.T) {
	t.Run("InitWithFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fingered.log")

		require.NoError(t, Init(Config{Level: "INFO", Format: "text", Output: path}))
		assert.False(t, OutputIsStdout())
		Info("to file")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")

		require.NoError(t, Init(Config{Output: "stderr"}))
		assert.False(t, OutputIsStdout())

		require.NoError(t, Init(Config{Output: "stdout"}))
		assert.True(t, OutputIsStdout())
	})

	t.Run("InitKeepsUnsetFields", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		require.NoError(t, Init(Config{Format: "json", Level: "DEBUG"}))
		require.NoError(t, Init(Config{}))
		Debug("still json")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
		assert.Equal(t, "still json", entry["msg"])
	})

	t.Run("InitWithEmptyConfig", func(t *testing.T) {
		require.NoError(t, Init(Config{}))
	})
}
