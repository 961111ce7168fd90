package progress

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nguyentantai21042004/videoscribe/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pingWait       = time.Second
	maxMessageSize = 64 * 1024
)

// wsTransport adapts a gorilla websocket connection to Transport. Events are
// queued and written by a single goroutine; gorilla allows one concurrent writer.
type wsTransport struct {
	conn   *websocket.Conn
	send   chan Event
	done   chan struct{}
	once   sync.Once
	logger logger.Logger
}

func newWSTransport(conn *websocket.Conn, buffer int, log logger.Logger) *wsTransport {
	return &wsTransport{
		conn:   conn,
		send:   make(chan Event, buffer),
		done:   make(chan struct{}),
		logger: log,
	}
}

func (t *wsTransport) Send(ev Event) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}

	select {
	case t.send <- ev:
		return nil
	case <-t.done:
		return ErrTransportClosed
	default:
		return ErrSendQueueFull
	}
}

// Ping writes a control frame; WriteControl may run alongside the writer.
// The short deadline keeps a half-open peer from stalling the sweep.
func (t *wsTransport) Ping() error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWait))
}

func (t *wsTransport) Close() error {
	var err error
	t.once.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

func (t *wsTransport) writePump() {
	for {
		select {
		case <-t.done:
			return
		case ev := <-t.send:
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := t.conn.WriteJSON(ev); err != nil {
				t.logger.Debug(context.Background(), "write failed, closing: %v", err)
				_ = t.Close()
				return
			}
		}
	}
}

type wsHandler struct {
	notifier *implNotifier
	upgrader websocket.Upgrader
}

func (n *implNotifier) Handler() http.Handler {
	return &wsHandler{
		notifier: n,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := h.notifier
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		n.logger.Warn(r.Context(), "websocket upgrade failed: %v", err)
		return
	}

	t := newWSTransport(conn, n.cfg.SendBuffer, n.logger)
	clientID, err := n.Connect(t, Meta{
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		n.logger.Warn(r.Context(), "rejecting connection from %s: %v", r.RemoteAddr, err)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait),
		)
		_ = conn.Close()
		return
	}

	go t.writePump()

	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		n.Pong(clientID)
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				n.logger.Warn(r.Context(), "read from %s: %v", clientID, err)
			}
			break
		}
		// errors are logged inside HandleMessage and never end the connection
		_ = n.HandleMessage(clientID, data)
	}

	n.Disconnect(clientID)
}
