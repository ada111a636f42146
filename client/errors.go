package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a join failure by which phase of connecting produced
// it, so callers can distinguish "server unreachable" from "bad credentials"
// from "kicked during login" without parsing error text.
type ErrorKind uint8

const (
	// ErrResolver means the server address could not be resolved to a
	// dialable host:port (bad hostname, SRV lookup and fallback both failed).
	ErrResolver ErrorKind = iota
	// ErrConnection means the TCP dial itself failed.
	ErrConnection
	// ErrReadPacket means a packet could not be read or decoded off the wire
	// during the handshake.
	ErrReadPacket
	// ErrSessionServer means the Mojang session server rejected the join
	// request even after a token refresh was attempted.
	ErrSessionServer
	// ErrAuth means obtaining or refreshing an access token failed.
	ErrAuth
	// ErrInvalidAddress means the address string itself was malformed before
	// any network attempt was made.
	ErrInvalidAddress
	// ErrDisconnect means the server sent a Disconnect packet during login or
	// configuration, ending the handshake before Play was reached.
	ErrDisconnect
)

func (k ErrorKind) String() string {
	switch k {
	case ErrResolver:
		return "resolver"
	case ErrConnection:
		return "connection"
	case ErrReadPacket:
		return "read_packet"
	case ErrSessionServer:
		return "session_server"
	case ErrAuth:
		return "auth"
	case ErrInvalidAddress:
		return "invalid_address"
	case ErrDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// JoinError wraps a failure encountered while connecting, tagged with the
// phase it occurred in.
type JoinError struct {
	Kind ErrorKind
	Err  error
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join failed (%s): %v", e.Kind, e.Err)
}

func (e *JoinError) Unwrap() error { return e.Err }

func joinErr(kind ErrorKind, format string, args ...any) error {
	return &JoinError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from err if it is (or wraps) a *JoinError.
func KindOf(err error) (ErrorKind, bool) {
	var je *JoinError
	if errors.As(err, &je) {
		return je.Kind, true
	}
	return 0, false
}
