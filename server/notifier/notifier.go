package notifier

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/gorilla/websocket"

	"github.com/fetchtray/fetchtray/server/internal/jobs"
)

var topics = []string{
	jobs.TopicPlaylistInfo,
	jobs.TopicItemStart,
	jobs.TopicItemTitle,
	jobs.TopicProgressUpdate,
	jobs.TopicItemProcessing,
	jobs.TopicItemComplete,
	jobs.TopicItemError,
	jobs.TopicJobComplete,
}

// Frame is one notification as delivered to websocket clients.
type Frame struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Notifier fans aggregator notifications out to every connected
// websocket client through an internal event bus. It is the outward
// transport of the progress model; in-process consumers can subscribe
// to individual topics as well.
type Notifier struct {
	bus      EventBus.Bus
	upgrader websocket.Upgrader
	frames   chan Frame

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func New() *Notifier {
	n := &Notifier{
		bus: EventBus.New(),
		upgrader: websocket.Upgrader{
			// local companion service, the UI shell is the only client
			CheckOrigin: func(*http.Request) bool { return true },
		},
		frames: make(chan Frame, 256),
		conns:  make(map[*websocket.Conn]struct{}),
	}

	for _, topic := range topics {
		topic := topic
		n.bus.Subscribe(topic, func(payload any) {
			// aggregator callbacks must never block on a slow client,
			// so frames go through a buffered channel to a single
			// writer which preserves per-job delivery order
			select {
			case n.frames <- Frame{Topic: topic, Data: payload}:
			default:
				slog.Warn("notification queue full, dropping frame", slog.String("topic", topic))
			}
		})
	}

	go n.writer()

	return n
}

func (n *Notifier) writer() {
	for frame := range n.frames {
		n.broadcast(frame)
	}
}

// Publish implements jobs.Emitter.
func (n *Notifier) Publish(topic string, payload any) {
	n.bus.Publish(topic, payload)
}

// Subscribe attaches an in-process consumer to a single topic.
func (n *Notifier) Subscribe(topic string, fn any) error {
	return n.bus.Subscribe(topic, fn)
}

// Handler upgrades the request and keeps the connection registered
// until the peer goes away.
func (n *Notifier) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := n.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("err", err))
			return
		}

		n.mu.Lock()
		n.conns[conn] = struct{}{}
		n.mu.Unlock()

		slog.Info("websocket client connected", slog.String("remote", conn.RemoteAddr().String()))

		go func() {
			defer n.drop(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (n *Notifier) broadcast(frame Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for conn := range n.conns {
		if err := conn.WriteJSON(frame); err != nil {
			conn.Close()
			delete(n.conns, conn)
		}
	}
}

func (n *Notifier) drop(conn *websocket.Conn) {
	conn.Close()

	n.mu.Lock()
	delete(n.conns, conn)
	n.mu.Unlock()
}
