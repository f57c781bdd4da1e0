//go:build !unix

package transport

// FromListenFDs always returns ErrNoListenFDs on platforms without socket
// activation.
func FromListenFDs() (*Listener, error) {
	unsetActivationEnv()
	return nil, ErrNoListenFDs
}
