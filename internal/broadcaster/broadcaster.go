// Package broadcaster implements the diff-gated state broadcaster
// (component design §4.5): a fan-out hub that pushes a state_update
// envelope — the building's floor count plus every car's last-known
// snapshot — to every connected WebSocket subscriber, suppressing a push
// when the new per-car snapshot is identical to the previous one for that
// car (ignoring timestamp). Subscriber registration, keep-alive ping/pong,
// and per-connection goroutine shutdown follow the same pattern as this
// project's original WebSocketServer (internal/http/websocket_server.go),
// generalized from a single polled status socket to a hub multiple cars
// publish into concurrently.
package broadcaster

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/liftctl/liftctl/internal/car"
	"github.com/liftctl/liftctl/internal/constants"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// stateUpdate is the §4.5/§6 wire envelope pushed to every subscriber: one
// frame per push, carrying the building's current floor count alongside
// every car's last-known snapshot (not a bare per-car snapshot).
type stateUpdate struct {
	Type        string         `json:"type"`
	TotalFloors int            `json:"total_floors"`
	Cars        []car.Snapshot `json:"cars"`
	Timestamp   int64          `json:"timestamp"`
}

// subscriber is one connected WebSocket client's outbound queue. The
// channel carries no payload: a pending send only signals that the hub's
// view of the fleet changed, and writePump builds the full envelope fresh
// from the hub's last-known snapshots at write time.
type subscriber struct {
	send   chan struct{}
	cancel context.CancelFunc
}

// Hub fans car.Snapshot pushes out to every subscribed connection and
// gates duplicate broadcasts per car.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	last        map[int]car.Snapshot

	totalFloors func() int
	logger      *slog.Logger
}

// New constructs an empty hub.
func New(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		last:        make(map[int]car.Snapshot),
		totalFloors: func() int { return 0 },
		logger:      logger.With(slog.String("component", constants.ComponentElevator)),
	}
}

// SetTotalFloorsFunc wires the hub to the dispatcher's live total-floor
// count, read fresh on every push so a reconfigure_building is reflected
// without the hub needing to be notified separately.
func (h *Hub) SetTotalFloorsFunc(f func() int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.totalFloors = f
}

// envelope builds the state_update frame for the current moment, folding in
// every car's last-known snapshot (the one just published plus every other
// car's prior snapshot).
func (h *Hub) envelope() stateUpdate {
	h.mu.Lock()
	cars := make([]car.Snapshot, 0, len(h.last))
	for _, s := range h.last {
		cars = append(cars, s)
	}
	totalFloors := h.totalFloors()
	h.mu.Unlock()

	return stateUpdate{
		Type:        "state_update",
		TotalFloors: totalFloors,
		Cars:        cars,
		Timestamp:   time.Now().UnixNano(),
	}
}

// Publish is the car.PublishFunc wired into the dispatcher/factory: it
// diff-gates against the last broadcast snapshot for this car and, if
// different, fans the new snapshot out to every subscriber.
func (h *Hub) Publish(snap car.Snapshot) {
	h.mu.Lock()
	if prev, ok := h.last[snap.CarID]; ok && prev.Equal(snap) {
		h.mu.Unlock()
		return
	}
	h.last[snap.CarID] = snap
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.send <- struct{}{}:
		default:
			// Buffer full: earlier signals are still pending, and writePump
			// builds each envelope from the latest snapshots when it drains
			// them, so dropping this signal loses no state and never blocks
			// the publishing car's tick loop.
		}
	}
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[s] = struct{}{}
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams car snapshots
// to it until the client disconnects or the send fails, at which point
// only this subscriber is unregistered — other connections are unaffected.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	sub := &subscriber{send: make(chan struct{}, sendBuffer), cancel: cancel}
	h.register(sub)

	go h.writePump(ctx, conn, sub)
	go h.readPump(conn, cancel)

	select {
	case sub.send <- struct{}{}:
	default:
	}
}

// readPump discards inbound frames (this endpoint is push-only) and exists
// solely to read pong replies and detect client-initiated closes.
func (h *Hub) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains the subscriber's send channel and pings on an idle
// timer; any write failure unregisters this subscriber and closes the
// connection without touching any other subscriber's state.
func (h *Hub) writePump(ctx context.Context, conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.cancel()
		h.unregister(sub)
		conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case _, ok := <-sub.send:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(h.envelope()); err != nil {
				h.logger.Warn("dropping websocket subscriber after write failure", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Shutdown closes every active subscriber connection, sending a close
// frame first.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.cancel()
	}
}
