package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotFound is returned for operations on an unknown client id.
	ErrClientNotFound = errors.New("client not found")
	// ErrTooManyConnections is returned by Connect once MaxConnections is reached.
	ErrTooManyConnections = errors.New("too many connections")
	// ErrTransportClosed is returned when sending to a closing connection.
	ErrTransportClosed = errors.New("transport closed")
	// ErrSendQueueFull is returned when a slow client's send queue overflows.
	ErrSendQueueFull = errors.New("send queue full")
	// ErrUnknownMessage is returned for a client message kind the notifier does not handle.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrMissingRunID is returned when a run-scoped message carries no run id.
	ErrMissingRunID = errors.New("missing run id")
)

// TransportError is a failure local to one connection. It never propagates
// past the notifier.
type TransportError struct {
	ClientID string
	Op       string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s for client %s: %v", e.Op, e.ClientID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
