package mc

import (
	"errors"
	"fmt"
)

// ProtocolErrorKind names the way a peer broke the wire format.
type ProtocolErrorKind byte

const (
	TruncatedStream ProtocolErrorKind = iota + 1
	VarIntTooLong
	UnexpectedPacketID
	MalformedPayload
)

func (kind ProtocolErrorKind) String() string {
	var text string
	switch kind {
	case TruncatedStream:
		text = "truncated stream"
	case VarIntTooLong:
		text = "VarInt too long"
	case UnexpectedPacketID:
		text = "unexpected packet id"
	case MalformedPayload:
		text = "malformed payload"
	default:
		text = "unknown protocol error"
	}
	return text
}

var (
	ErrTruncatedStream    = &ProtocolError{Kind: TruncatedStream}
	ErrVarIntTooLong      = &ProtocolError{Kind: VarIntTooLong}
	ErrUnexpectedPacketID = &ProtocolError{Kind: UnexpectedPacketID}
	ErrMalformedPayload   = &ProtocolError{Kind: MalformedPayload}
)

// ProtocolError is returned for every decoding failure of the status protocol.
// errors.Is matches on Kind, so callers can compare against the Err* values.
type ProtocolError struct {
	Kind ProtocolErrorKind
	Err  error
}

func (err *ProtocolError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("protocol error: %v", err.Kind)
	}
	return fmt.Sprintf("protocol error: %v: %v", err.Kind, err.Err)
}

func (err *ProtocolError) Unwrap() error {
	return err.Err
}

func (err *ProtocolError) Is(target error) bool {
	var other *ProtocolError
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == err.Kind
}

func newProtocolError(kind ProtocolErrorKind, err error) error {
	return &ProtocolError{Kind: kind, Err: err}
}
