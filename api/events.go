package api

import (
	"net/http"
	"sync"
	"time"

	"craftbot/challenge"
	"craftbot/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced on the REST surface; the ws handshake is
		// gated by the token instead.
		return true
	},
}

type eventClient struct {
	conn     *websocket.Conn
	memberID string
	send     chan challenge.Event
}

// EventHub fans challenge lifecycle events out to connected dashboard
// clients. Publish never blocks: a client that cannot keep up is
// dropped.
type EventHub struct {
	mu      sync.Mutex
	clients map[*eventClient]bool
	cfg     models.Config
	logger  *zap.Logger
}

func NewEventHub(cfg models.Config, logger *zap.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*eventClient]bool),
		cfg:     cfg,
		logger:  logger,
	}
}

// Publish implements challenge.EventSink.
func (h *EventHub) Publish(event challenge.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.logger.Warn("dropping slow websocket client", zap.String("memberID", client.memberID))
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *EventHub) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/ws", h.serve)
}

// serve upgrades the connection after validating the dashboard JWT
// passed as ?token=, since browsers cannot set headers on a ws
// handshake.
func (h *EventHub) serve(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}
	claims := &models.DashboardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.cfg.JWTKey), nil
	})
	if err != nil || !token.Valid {
		h.logger.Error("failed to validate websocket token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &eventClient{
		conn:     conn,
		memberID: claims.MemberID,
		send:     make(chan challenge.Event, 16),
	}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Info("dashboard client connected", zap.String("memberID", client.memberID))

	go h.writePump(client)
	go h.readPump(client)
}

func (h *EventHub) remove(client *eventClient) {
	h.mu.Lock()
	if h.clients[client] {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
	client.conn.Close()
}

func (h *EventHub) writePump(client *eventClient) {
	pingPeriod := 30 * time.Second
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(client)
	}()

	for {
		select {
		case event, ok := <-client.send:
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := client.conn.WriteJSON(event); err != nil {
				h.logger.Error("failed to push event", zap.String("memberID", client.memberID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames; the socket is one-way. Reading is
// still required so pong handling and close frames are processed.
func (h *EventHub) readPump(client *eventClient) {
	defer h.remove(client)

	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error("websocket read error", zap.String("memberID", client.memberID), zap.Error(err))
			}
			return
		}
	}
}
