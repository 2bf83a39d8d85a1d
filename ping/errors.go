package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ConnectErrorKind separates the ways reaching a server can fail.
type ConnectErrorKind byte

const (
	Other ConnectErrorKind = iota
	Timeout
	Refused
)

func (kind ConnectErrorKind) String() string {
	var text string
	switch kind {
	case Timeout:
		text = "timeout"
	case Refused:
		text = "connection refused"
	default:
		text = "connection failed"
	}
	return text
}

var ErrInvalidPort = errors.New("port must be between 1 and 65535")

// ConnectError wraps a failure of the transport itself. Op is the phase it
// happened in: "dial", "write" or "read".
type ConnectError struct {
	Kind ConnectErrorKind
	Op   string
	Addr string
	Err  error
}

func (err *ConnectError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", err.Op, err.Addr, err.Kind, err.Err)
}

func (err *ConnectError) Unwrap() error {
	return err.Err
}

// IsTimeout reports whether err is a ConnectError caused by a deadline.
func IsTimeout(err error) bool {
	var connErr *ConnectError
	return errors.As(err, &connErr) && connErr.Kind == Timeout
}

// IsRefused reports whether err is a ConnectError caused by a refused dial.
func IsRefused(err error) bool {
	var connErr *ConnectError
	return errors.As(err, &connErr) && connErr.Kind == Refused
}

func classify(err error) ConnectErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Refused
	}
	return Other
}

func newConnectError(op, addr string, err error) *ConnectError {
	return &ConnectError{
		Kind: classify(err),
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
