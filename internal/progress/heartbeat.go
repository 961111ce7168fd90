package progress

import (
	"context"
	"time"
)

// HeartbeatSweep pings every connection. Clients that have not answered the
// previous sweep's ping are disconnected. Expired snapshots are pruned too.
// Pings are written after mu is released, so a stalled peer cannot hold up
// emits to everyone else.
func (n *implNotifier) HeartbeatSweep() {
	n.mu.Lock()
	var dead []string
	pings := make(map[string]Transport, len(n.clients))
	for id, c := range n.clients {
		if !c.alive {
			dead = append(dead, id)
			continue
		}
		c.alive = false
		pings[id] = c.transport
	}

	for _, id := range dead {
		if n.disconnectLocked(id) {
			n.logger.Warn(n.ctx, "reaped unresponsive client %s", id)
			if n.metrics != nil {
				n.metrics.IncReaped()
			}
		}
	}

	now := n.now()
	for runID, snap := range n.snapshots {
		if now.Sub(snap.storedAt) > n.cfg.SnapshotTTL {
			delete(n.snapshots, runID)
		}
	}
	n.mu.Unlock()

	for id, t := range pings {
		if err := t.Ping(); err != nil {
			n.logger.Warn(n.ctx, "ping %s: %v", id, err)
		}
	}
}

// Pong marks clientID as alive for the current sweep.
func (n *implNotifier) Pong(clientID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if c, ok := n.clients[clientID]; ok {
		c.alive = true
		c.lastHeartbeat = n.now()
	}
}

func (n *implNotifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.cfg.HeartbeatInterval)
	defer ticker.Stop()

	n.logger.Info(ctx, "heartbeat started (interval %s)", n.cfg.HeartbeatInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.HeartbeatSweep()
		}
	}
}
