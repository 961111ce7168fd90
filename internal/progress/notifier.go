package progress

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"time"
)

var mobileUA = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

func classifyDevice(userAgent string) DeviceClass {
	if userAgent != "" && mobileUA.MatchString(userAgent) {
		return DeviceMobile
	}
	return DeviceDesktop
}

// Connect registers a new subscriber connection and sends it the welcome event.
func (n *implNotifier) Connect(t Transport, meta Meta) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cfg.MaxConnections > 0 && len(n.clients) >= n.cfg.MaxConnections {
		return "", ErrTooManyConnections
	}

	now := n.now()
	c := &client{
		id:            n.newID(),
		transport:     t,
		meta:          meta,
		device:        classifyDevice(meta.UserAgent),
		connectedAt:   now,
		lastHeartbeat: now,
		alive:         true,
		subscriptions: make(map[string]struct{}),
	}
	n.clients[c.id] = c
	n.reportConnectionsLocked()

	n.sendLocked(c, Event{
		Kind: EventConnected,
		Data: map[string]any{
			"clientId": c.id,
			"message":  "connected to progress service",
		},
		Timestamp: now.UnixMilli(),
	})

	n.logger.Info(n.ctx, "client connected: %s (device=%s, addr=%s)", c.id, c.device, meta.RemoteAddr)
	return c.id, nil
}

// Disconnect removes the client from every run it subscribed to, then drops
// the client record. Unknown ids are ignored.
func (n *implNotifier) Disconnect(clientID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disconnectLocked(clientID)
}

func (n *implNotifier) disconnectLocked(clientID string) bool {
	c, ok := n.clients[clientID]
	if !ok {
		return false
	}
	for runID := range c.subscriptions {
		n.removeSubscriberLocked(runID, clientID)
	}
	delete(n.clients, clientID)
	if err := c.transport.Close(); err != nil {
		n.logger.Debug(n.ctx, "close transport for %s: %v", clientID, err)
	}
	n.reportConnectionsLocked()
	n.logger.Info(n.ctx, "client disconnected: %s", clientID)
	return true
}

// HandleMessage dispatches one client frame. Malformed frames and unknown
// kinds are logged and returned as errors but never drop the connection.
func (n *implNotifier) HandleMessage(clientID string, raw []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		err = &TransportError{ClientID: clientID, Op: "decode", Err: err}
		n.logger.Warn(n.ctx, "malformed message: %v", err)
		return err
	}

	switch msg.Type {
	case MessageSubscribe:
		runID, err := decodeRunID(msg.Payload)
		if err != nil {
			return n.rejectMessage(clientID, msg.Type, err)
		}
		return n.Subscribe(clientID, runID)
	case MessageUnsubscribe:
		runID, err := decodeRunID(msg.Payload)
		if err != nil {
			return n.rejectMessage(clientID, msg.Type, err)
		}
		return n.Unsubscribe(clientID, runID)
	case MessagePing:
		return n.pong(clientID)
	case MessageGetHistory:
		runID, err := decodeRunID(msg.Payload)
		if err != nil {
			return n.rejectMessage(clientID, msg.Type, err)
		}
		return n.sendHistory(clientID, runID)
	default:
		n.logger.Warn(n.ctx, "unknown message type %q from %s", msg.Type, clientID)
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
}

func (n *implNotifier) rejectMessage(clientID, kind string, err error) error {
	n.logger.Warn(n.ctx, "invalid %s message from %s: %v", kind, clientID, err)
	return &TransportError{ClientID: clientID, Op: kind, Err: err}
}

func decodeRunID(payload json.RawMessage) (string, error) {
	if len(payload) == 0 {
		return "", ErrMissingRunID
	}
	var p runPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return "", err
	}
	if p.id() == "" {
		return "", ErrMissingRunID
	}
	return p.id(), nil
}

// Subscribe adds runID to the client's subscriptions, replays the cached
// snapshot for the run (if any) and acknowledges.
func (n *implNotifier) Subscribe(clientID, runID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	c.subscriptions[runID] = struct{}{}
	subs, ok := n.subscribers[runID]
	if !ok {
		subs = make(map[string]struct{})
		n.subscribers[runID] = subs
	}
	subs[clientID] = struct{}{}

	now := n.now()
	if snap, ok := n.snapshotLocked(runID, now); ok {
		n.sendLocked(c, Event{
			RunID:     runID,
			Kind:      EventProgressRestore,
			Data:      snap,
			Timestamp: now.UnixMilli(),
		})
	}

	n.sendLocked(c, Event{
		RunID: runID,
		Kind:  EventSubscribed,
		Data: map[string]any{
			"runId":   runID,
			"message": "subscribed to run " + runID,
		},
		Timestamp: now.UnixMilli(),
	})

	n.logger.Debug(n.ctx, "client %s subscribed to %s", clientID, runID)
	return nil
}

// Unsubscribe removes runID from both directions of the registry and acknowledges.
func (n *implNotifier) Unsubscribe(clientID, runID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	delete(c.subscriptions, runID)
	n.removeSubscriberLocked(runID, clientID)

	n.sendLocked(c, Event{
		RunID:     runID,
		Kind:      EventUnsubscribed,
		Data:      map[string]any{"runId": runID},
		Timestamp: n.now().UnixMilli(),
	})
	return nil
}

func (n *implNotifier) removeSubscriberLocked(runID, clientID string) {
	subs, ok := n.subscribers[runID]
	if !ok {
		return
	}
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(n.subscribers, runID)
	}
}

func (n *implNotifier) pong(clientID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	now := n.now()
	n.sendLocked(c, Event{
		Kind:      EventPong,
		Data:      map[string]any{"timestamp": now.UnixMilli()},
		Timestamp: now.UnixMilli(),
	})
	return nil
}

func (n *implNotifier) sendHistory(clientID, runID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}
	events := n.historyLocked(runID)
	if events == nil {
		events = []Event{}
	}
	n.sendLocked(c, Event{
		RunID: runID,
		Kind:  EventHistory,
		Data: map[string]any{
			"runId":  runID,
			"events": events,
		},
		Timestamp: n.now().UnixMilli(),
	})
	return nil
}

// History returns up to ReplayLimit buffered events of runID, oldest first.
func (n *implNotifier) History(runID string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.historyLocked(runID)
}

func (n *implNotifier) historyLocked(runID string) []Event {
	return n.history.filter(func(ev Event) bool {
		return ev.RunID == runID
	}, n.cfg.ReplayLimit)
}

// Snapshot returns the latest unexpired event emitted for runID.
func (n *implNotifier) Snapshot(runID string) (Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked(runID, n.now())
}

func (n *implNotifier) snapshotLocked(runID string, now time.Time) (Event, bool) {
	snap, ok := n.snapshots[runID]
	if !ok {
		return Event{}, false
	}
	if now.Sub(snap.storedAt) > n.cfg.SnapshotTTL {
		delete(n.snapshots, runID)
		return Event{}, false
	}
	return snap.event, true
}

func (n *implNotifier) ClientInfo(clientID string) (ClientInfo, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	c, ok := n.clients[clientID]
	if !ok {
		return ClientInfo{}, false
	}
	return c.info(), true
}

func (n *implNotifier) Clients() []ClientInfo {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]ClientInfo, 0, len(n.clients))
	for _, c := range n.clients {
		out = append(out, c.info())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

func (c *client) info() ClientInfo {
	subs := make([]string, 0, len(c.subscriptions))
	for runID := range c.subscriptions {
		subs = append(subs, runID)
	}
	sort.Strings(subs)
	return ClientInfo{
		ID:              c.id,
		RemoteAddr:      c.meta.RemoteAddr,
		UserAgent:       c.meta.UserAgent,
		Device:          c.device,
		ConnectedAt:     c.connectedAt,
		LastHeartbeatAt: c.lastHeartbeat,
		Subscriptions:   subs,
	}
}

func (n *implNotifier) Stats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := Stats{
		TotalConnections: len(n.clients),
		ActiveRuns:       len(n.subscribers),
		HistorySize:      n.history.len(),
	}
	for _, c := range n.clients {
		if c.device == DeviceMobile {
			s.MobileConnections++
		}
	}
	s.DesktopConnections = s.TotalConnections - s.MobileConnections
	return s
}

// Shutdown closes every connection.
func (n *implNotifier) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for id := range n.clients {
		n.disconnectLocked(id)
	}
	n.logger.Info(n.ctx, "notifier shut down")
}

func (n *implNotifier) reportConnectionsLocked() {
	if n.metrics != nil {
		n.metrics.SetConnections(len(n.clients))
	}
}
