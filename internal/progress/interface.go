package progress

import (
	"context"
	"net/http"
)

// Notifier fans pipeline progress out to real-time subscribers.
type Notifier interface {
	Connect(t Transport, meta Meta) (string, error)
	HandleMessage(clientID string, raw []byte) error
	Disconnect(clientID string)

	Subscribe(clientID, runID string) error
	Unsubscribe(clientID, runID string) error
	History(runID string) []Event
	Snapshot(runID string) (Event, bool)

	Emit(runID string, kind EventKind, data any)
	Broadcast(kind EventKind, data any)

	Pong(clientID string)
	HeartbeatSweep()
	// Run sweeps on the heartbeat interval until ctx is done.
	Run(ctx context.Context) error

	Stats() Stats
	ClientInfo(clientID string) (ClientInfo, bool)
	Clients() []ClientInfo

	// Handler upgrades HTTP requests to websocket subscriber connections.
	Handler() http.Handler
	Shutdown()
}

// Transport is one connected peer. Send must not block; implementations
// queue the event and report a full queue or closed peer as an error.
type Transport interface {
	Send(ev Event) error
	Ping() error
	Close() error
}

// Metrics receives notifier counters. A nil Metrics is allowed.
type Metrics interface {
	SetConnections(n int)
	ObserveDelivery(ok bool)
	IncReaped()
}
