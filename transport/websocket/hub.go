package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/grid-tactics-game/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message wraps an engine event with the battle it belongs to.
type Message struct {
	BattleID string       `json:"battle_id"`
	Event    engine.Event `json:"event"`
}

// Client represents a WebSocket client subscribed to one battle
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	battleID string
}

// Hub maintains the set of active clients, grouped by battle, and fans
// engine events out to them. All room state is owned by the Run loop; the
// only cross-goroutine surface is the three channels.
type Hub struct {
	// Registered clients by battle ID
	battles map[string]map[*Client]bool

	// Events queued for fan-out
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		battles:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades an HTTP request and subscribes the connection to a battle
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, battleID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, engine.WebSocketBufferSize),
		battleID: battleID,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastEvent queues an engine event for every client watching the
// battle. It implements service.EventSink and never blocks: events are
// emitted from inside movement execution, so when the buffer is full the
// event is dropped and clients resynchronize from the REST state endpoint.
func (h *Hub) BroadcastEvent(battleID string, ev engine.Event) {
	msg := &Message{BattleID: battleID, Event: ev}
	select {
	case h.broadcast <- msg:
	default:
		log.Warn().
			Str("battle", battleID).
			Str("event", string(ev.Type)).
			Msg("websocket broadcast buffer full, dropping event")
	}
}

// registerClient adds a client to a battle room
func (h *Hub) registerClient(client *Client) {
	if h.battles[client.battleID] == nil {
		h.battles[client.battleID] = make(map[*Client]bool)
	}
	h.battles[client.battleID][client] = true

	log.Debug().
		Str("battle", client.battleID).
		Int("clients", len(h.battles[client.battleID])).
		Msg("websocket client registered")
}

// unregisterClient removes a client from its battle room
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.battles[client.battleID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Drop empty rooms
	if len(clients) == 0 {
		delete(h.battles, client.battleID)
	}

	log.Debug().
		Str("battle", client.battleID).
		Int("clients", len(clients)).
		Msg("websocket client unregistered")
}

// broadcastMessage sends a message to every client in the battle's room.
// Slow clients are disconnected rather than allowed to stall the room.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal websocket message")
		return
	}

	for client := range h.battles[message.BattleID] {
		select {
		case client.send <- data:
		default:
			h.unregisterClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages are not processed; reading keeps the
		// connection alive and detects closes.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued messages into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
