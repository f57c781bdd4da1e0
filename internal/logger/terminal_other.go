//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package logger

// isTerminal always reports false where termios is unavailable; output is uncolored.
func isTerminal(fd uintptr) bool {
	return false
}
