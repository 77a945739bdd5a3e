package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"sketch-rooms/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	sendQueueDepth = 256
)

var (
	errClientClosed  = errors.New("connection closed")
	errSendQueueFull = errors.New("send queue full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient is the Outbox of one connection. Send only enqueues; writePump owns
// the socket writes.
type wsClient struct {
	id      string
	name    string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
}

func newWSClient(conn *websocket.Conn, name string, limit rate.Limit, burst int) *wsClient {
	return &wsClient{
		id:      uuid.NewString(),
		name:    name,
		conn:    conn,
		send:    make(chan []byte, sendQueueDepth),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *wsClient) Send(ev game.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		c.close()
		return errSendQueueFull
	}
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *wsClient) readPump(handle func(payload []byte)) {
	c.conn.SetReadLimit(maxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("participant_id", c.id).Msg("ws read failed")
			}
			return
		}
		select {
		case <-c.done:
			return
		default:
		}
		handle(payload)
	}
}

type wsHub struct {
	mu      sync.Mutex
	clients map[string]*wsClient
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[string]*wsClient),
	}
}

func (h *wsHub) Add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.id] = client
}

func (h *wsHub) Remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client.id)
	client.close()
}

func (h *wsHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll ends every connection, used on shutdown.
func (h *wsHub) CloseAll() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()
	for _, client := range clients {
		client.close()
	}
}

type wsQuery struct {
	Name string `form:"name" binding:"required,name"`
}

var wsQueryMessages = bindMessages{
	"Name": {
		"required": "name is required",
		"name":     "name must be 1-20 letters, numbers or punctuation",
	},
}

func (s *Server) handleWebsocket(c *gin.Context) {
	var query wsQuery
	if !bindQuery(c, &query, wsQueryMessages, "name is required") {
		return
	}
	name, _ := validateName(query.Name)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", c.Request.RemoteAddr).Msg("websocket upgrade failed")
		return
	}
	client := newWSClient(conn, name, rate.Limit(s.cfg.ChatRatePerSecond), s.cfg.ChatRateBurst)
	go client.writePump()
	if _, err := s.lobby.Connect(client.id, name, client); err != nil {
		_ = client.Send(game.ErrorEvent(err.Error()))
		client.close()
		return
	}
	s.hub.Add(client)
	log.Info().Str("participant_id", client.id).Str("name", name).Str("remote", c.Request.RemoteAddr).Msg("ws connected")

	client.readPump(func(payload []byte) {
		s.handleMessage(client, payload)
	})

	s.lobby.Disconnect(client.id)
	s.hub.Remove(client)
	log.Info().Str("participant_id", client.id).Msg("ws disconnected")
}
