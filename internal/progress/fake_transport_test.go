package progress

import (
	"sync"

	"github.com/nguyentantai21042004/videoscribe/internal/logger"
)

type fakeTransport struct {
	mu        sync.Mutex
	events    []Event
	pings     int
	closed    bool
	sendErr   error
	pingErr   error
	pingBlock chan struct{} // when set, Ping stalls until it is closed
}

func (f *fakeTransport) Send(ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.closed {
		return ErrTransportClosed
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTransport) Ping() error {
	f.mu.Lock()
	f.pings++
	block, err := f.pingBlock, f.pingErr
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) kinds() []EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]EventKind, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (f *fakeTransport) last() Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// fakeMetrics counts notifier metric callbacks.
type fakeMetrics struct {
	connections int
	delivered   int
	failed      int
	reaped      int
}

func (m *fakeMetrics) SetConnections(n int) { m.connections = n }

func (m *fakeMetrics) ObserveDelivery(ok bool) {
	if ok {
		m.delivered++
	} else {
		m.failed++
	}
}

func (m *fakeMetrics) IncReaped() { m.reaped++ }

func newTestNotifier(cfg Config) *implNotifier {
	return New(cfg, logger.Nop(), nil).(*implNotifier)
}

func connect(t interface{ Fatalf(string, ...any) }, n Notifier, ua string) (string, *fakeTransport) {
	tr := &fakeTransport{}
	id, err := n.Connect(tr, Meta{RemoteAddr: "127.0.0.1:5000", UserAgent: ua})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return id, tr
}
