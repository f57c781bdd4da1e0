// Package server runs the finger accept loop.
//
// A Server owns one transport.Listener. Each accepted connection is
// answered by finger.Handle against the directory snapshot that was live
// when the connection was accepted, in its own goroutine. Reload and
// shutdown events arrive on a channel (see internal/signals); shutdown is
// always handled before pending connections or reloads.
//
// ServeOnce answers a single pre-connected stream for inetd-style
// operation.
package server
