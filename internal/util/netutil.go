package util

import (
	"errors"
	"os"
	"strings"
	"syscall"
)

// IsAddrInUse checks if the error indicates an "address already in use"
// condition, the expected failure mode for a losing bind during the port race.
func IsAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		if sysErr.Err == syscall.EADDRINUSE {
			return true
		}
	}
	// Go's net package wraps bind errors in *net.OpError; fall back to the
	// message when the syscall error is not reachable through the chain.
	return strings.Contains(strings.ToLower(err.Error()), "address already in use")
}
