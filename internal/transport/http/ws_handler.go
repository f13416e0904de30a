package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"quizlet-service/internal/app"
	"quizlet-service/internal/domain"
	"quizlet-service/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

type WSHandler struct {
	service  *app.QuizService
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWSHandler only upgrades browser requests whose Origin is in allowedOrigins.
// "*" allows any origin. Requests without an Origin header are always accepted.
func NewWSHandler(service *app.QuizService, hub *Hub, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and attaches the connection to the broadcast hub.
// Clients may send {"type":"message","payload":...} which is rebroadcast to everyone.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logging.WithContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	c, cancel := h.hub.subscribe()
	log = log.WithField("client_id", c.id)
	log.Info("client connected")

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-c.send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.WithError(err).Debug("ws write error")
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.reply(c, "invalid message")
			continue
		}
		switch inbound.Type {
		case domain.EventMessage:
			h.service.Relay(r.Context(), inbound.Payload)
		default:
			h.reply(c, "unsupported message type")
		}
	}

	cancel()
	<-writerDone
	log.Info("client disconnected")
}

func (h *WSHandler) reply(c *client, message string) {
	data, err := json.Marshal(domain.Event{Type: "error", Payload: errorPayload{Message: message}})
	if err != nil {
		return
	}
	h.hub.sendTo(c, data)
}
