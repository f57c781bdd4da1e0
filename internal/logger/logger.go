package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// sink is where log records end up.
type sink struct {
	w      io.Writer
	file   *os.File // non-nil when Init opened a log file
	color  bool
	stdout bool
}

// state is swapped as a whole on reconfiguration; readers never lock.
type state struct {
	out    sink
	format string
	logger *slog.Logger
}

var (
	level   = new(slog.LevelVar) // shared by every handler ever built
	mu      sync.Mutex           // serializes Init, SetFormat and swaps
	current atomic.Pointer[state]
)

func init() {
	install(sink{w: os.Stdout, color: isTerminal(os.Stdout.Fd()), stdout: true}, "text")
}

// install builds a handler for out and format and makes it current.
// Callers other than init hold mu.
func install(out sink, format string) {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out.w, opts)
	} else {
		format = "text"
		h = NewColorTextHandler(out.w, opts, out.color)
	}

	prev := current.Swap(&state{out: out, format: format, logger: slog.New(h)})
	if prev != nil && prev.out.file != nil && prev.out.file != out.file {
		_ = prev.out.file.Close()
	}
}

// openSink resolves "stdout", "stderr" or a file path opened for append.
func openSink(output string) (sink, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return sink{w: os.Stdout, color: isTerminal(os.Stdout.Fd()), stdout: true}, nil
	case "stderr":
		return sink{w: os.Stderr, color: isTerminal(os.Stderr.Fd())}, nil
	}

	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return sink{}, fmt.Errorf("failed to open log file %q: %w", output, err)
	}
	return sink{w: f, file: f}, nil
}

// ParseLevel maps DEBUG, INFO, WARN or ERROR (any case) to a slog level.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Init applies cfg. Empty fields keep their current value; an unknown level
// or format is ignored.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	st := current.Load()
	out, format := st.out, st.format

	if cfg.Output != "" {
		var err error
		if out, err = openSink(cfg.Output); err != nil {
			return err
		}
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "json" {
		format = f
	}
	if lv, ok := ParseLevel(cfg.Level); ok {
		level.Set(lv)
	}

	install(out, format)
	return nil
}

// SetLevel sets the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if lv, ok := ParseLevel(name); ok {
		level.Set(lv)
	}
}

// SetFormat switches between text and json. Unknown names are ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	install(current.Load().out, format)
}

// OutputIsStdout reports whether logs are currently written to stdout.
// In inetd mode stdout carries the reply, so logs must go elsewhere.
func OutputIsStdout() bool {
	return current.Load().out.stdout
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isTerminal(f.Fd())
}

// Debug logs at debug level. Usage: Debug("message", "key", value, Err(err))
func Debug(msg string, args ...any) { emit(context.Background(), slog.LevelDebug, msg, args) }

// Info logs at info level.
func Info(msg string, args ...any) { emit(context.Background(), slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { emit(context.Background(), slog.LevelWarn, msg, args) }

// Error logs at error level.
func Error(msg string, args ...any) { emit(context.Background(), slog.LevelError, msg, args) }

// DebugCtx logs at debug level, prefixed by the LogContext fields of ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, msg, args)
}

// InfoCtx logs at info level with the LogContext fields of ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, msg, args)
}

// WarnCtx logs at warn level with the LogContext fields of ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with the LogContext fields of ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, msg, args)
}

func emit(ctx context.Context, lv slog.Level, msg string, args []any) {
	l := current.Load().logger
	if !l.Enabled(ctx, lv) {
		return
	}
	if lc := FromContext(ctx); lc != nil {
		args = append(lc.attrs(), args...)
	}
	l.Log(ctx, lv, msg, args...)
}

// Duration returns the time since start in milliseconds.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
