package transport

import (
	"errors"
	"os"
	"strconv"
)

// ErrNoListenFDs is returned by FromListenFDs when the process was not
// started with socket activation.
var ErrNoListenFDs = errors.New("no listen file descriptors passed")

// ErrNotListeningSocket is returned by FromListenFDs when the passed
// descriptor is not a listening stream socket.
var ErrNotListeningSocket = errors.New("not a listening stream socket")

// listenFDsStart is the first descriptor passed by the service manager.
const listenFDsStart = 3

// activationFDs reads the socket activation variables and returns how many
// descriptors were passed to pid.
func activationFDs(getenv func(string) string, pid int) (int, error) {
	pidStr, fdsStr := getenv("LISTEN_PID"), getenv("LISTEN_FDS")
	if pidStr == "" || fdsStr == "" {
		return 0, ErrNoListenFDs
	}

	listenPID, err := strconv.Atoi(pidStr)
	if err != nil || listenPID != pid {
		return 0, ErrNoListenFDs
	}

	n, err := strconv.Atoi(fdsStr)
	if err != nil || n < 1 {
		return 0, ErrNoListenFDs
	}
	return n, nil
}

func unsetActivationEnv() {
	_ = os.Unsetenv("LISTEN_PID")
	_ = os.Unsetenv("LISTEN_FDS")
	_ = os.Unsetenv("LISTEN_FDNAMES")
}
