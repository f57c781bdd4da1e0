// Package transport hides the difference between the byte streams a finger
// server can answer on: accepted TCP connections, accepted Unix socket
// connections, and a single inetd-style stream (stdin/stdout).
//
// The package never retries; callers decide what an error means.
package transport
