package progress

// Emit records a progress event for runID and pushes it to the run's current
// subscribers. With no subscribers only the snapshot and history are updated.
func (n *implNotifier) Emit(runID string, kind EventKind, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	ev := Event{
		RunID:     runID,
		Kind:      kind,
		Data:      data,
		Timestamp: now.UnixMilli(),
	}

	n.snapshots[runID] = snapshot{event: ev, storedAt: now}
	n.history.push(ev)

	subs := n.subscribers[runID]
	if len(subs) == 0 {
		return
	}

	delivered := 0
	for clientID := range subs {
		c, ok := n.clients[clientID]
		if !ok {
			continue
		}
		if n.sendLocked(c, ev) {
			delivered++
		}
	}
	n.logger.Debug(n.ctx, "emitted %s for %s to %d/%d subscribers", kind, runID, delivered, len(subs))
}

// Broadcast pushes a system-wide notice to every connected client.
func (n *implNotifier) Broadcast(kind EventKind, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ev := Event{
		Kind:      kind,
		Data:      data,
		Timestamp: n.now().UnixMilli(),
	}
	for _, c := range n.clients {
		n.sendLocked(c, ev)
	}
}

// sendLocked delivers ev to one client. A failure is logged and counted; the
// connection is left for the heartbeat sweep to reap.
func (n *implNotifier) sendLocked(c *client, ev Event) bool {
	err := c.transport.Send(ev)
	if n.metrics != nil {
		n.metrics.ObserveDelivery(err == nil)
	}
	if err != nil {
		terr := &TransportError{ClientID: c.id, Op: "send " + string(ev.Kind), Err: err}
		n.logger.Warn(n.ctx, "delivery failed: %v", terr)
		return false
	}
	return true
}
