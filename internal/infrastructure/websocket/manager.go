package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"skipfurther/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client is one open connection. A user may hold several (tabs, devices).
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Manager tracks the open connections of every user on this instance.
type Manager struct {
	clients map[string]map[*Client]struct{}
	mutex   sync.RWMutex
	log     zerolog.Logger
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]map[*Client]struct{}),
		log:     logger.With("websocket"),
	}
}

func (m *Manager) Register(c *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	conns, ok := m.clients[c.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		m.clients[c.UserID] = conns
	}
	conns[c] = struct{}{}
	m.log.Debug().Str("user_id", c.UserID).Int("connections", len(conns)).Msg("client registered")
}

func (m *Manager) Unregister(c *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.removeLocked(c)
}

func (m *Manager) removeLocked(c *Client) {
	conns, ok := m.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.Send)
	if len(conns) == 0 {
		delete(m.clients, c.UserID)
	}
	m.log.Debug().Str("user_id", c.UserID).Msg("client unregistered")
}

// SendToUser queues message on every connection of userID. Connections whose
// buffer is full are dropped.
func (m *Manager) SendToUser(userID string, message []byte) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delivered := 0
	for c := range m.clients[userID] {
		select {
		case c.Send <- message:
			delivered++
		default:
			m.log.Warn().Str("user_id", userID).Msg("dropping slow websocket client")
			m.removeLocked(c)
		}
	}
	return delivered
}

func (m *Manager) ConnectionCount(userID string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID])
}

// CloseAll drops every connection, used on shutdown.
func (m *Manager) CloseAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, conns := range m.clients {
		for c := range conns {
			m.removeLocked(c)
		}
	}
}

// ReadPump reads until the connection fails, answering pings from the browser.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.log.Warn().Err(err).Str("user_id", c.UserID).Msg("websocket read failed")
			}
			return
		}

		if reply := HandleMessage(message); reply != nil {
			select {
			case c.Send <- reply:
			default:
			}
		}
	}
}

// WritePump drains Send into the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
