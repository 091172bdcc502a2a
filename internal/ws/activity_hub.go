package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
)

const (
	EventLogin          = "login"
	EventLogout         = "logout"
	EventPageVisit      = "page_visit"
	EventPageExit       = "page_exit"
	EventFormSubmission = "form_submission"
)

// ActivityEvent is pushed to admin dashboards as tracked rows are written.
type ActivityEvent struct {
	Type   string    `json:"type"`
	UserID uint      `json:"user_id"`
	At     time.Time `json:"at"`
	Data   any       `json:"data,omitempty"`
}

// ActivityHub fans activity events out to connected admin clients.
type ActivityHub struct {
	register   chan *activityClient
	unregister chan *activityClient
	broadcast  chan []byte
	clients    map[*activityClient]struct{}
	done       chan struct{}
	log        *slog.Logger
}

func NewActivityHub(log *slog.Logger) *ActivityHub {
	return &ActivityHub{
		register:   make(chan *activityClient),
		unregister: make(chan *activityClient),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*activityClient]struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *ActivityHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.drop(client)
				}
			}
		}
	}
}

func (h *ActivityHub) drop(client *activityClient) {
	delete(h.clients, client)
	close(client.send)
	client.conn.Close()
}

// Publish never blocks the request path: when the buffer is full the event is dropped.
func (h *ActivityHub) Publish(ev ActivityEvent) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("ws: failed to marshal event", "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("ws: broadcast buffer full, dropping event", "type", ev.Type)
	}
}

type activityClient struct {
	hub  *ActivityHub
	conn *websocket.Conn
	send chan []byte
}

func newActivityClient(hub *ActivityHub, conn *websocket.Conn) *activityClient {
	return &activityClient{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// readPump only drains control frames; admins never send data.
func (c *activityClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *activityClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
