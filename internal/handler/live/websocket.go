package live

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/code-companion/backend/internal/render"
	"github.com/zhouzirui/code-companion/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/code-companion/backend/internal/service/chat"
	"github.com/zhouzirui/code-companion/backend/internal/service/companion"
	"github.com/zhouzirui/code-companion/backend/pkg/utils"
)

const writeTimeout = 10 * time.Second

// WebSocketHandler drives a session over a socket and pushes the full view
// after every transition.
type WebSocketHandler struct {
	sessions *companion.Manager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the socket handler.
func NewWebSocketHandler(sessions *companion.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes mounts the socket route.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Model string `json:"model,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type errorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// conn serializes writes; gorilla connections allow one concurrent writer.
type conn struct {
	ws        *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *conn) send(msgType string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(outgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// Render pushes the view to the browser.
func (c *conn) Render(v companion.View) {
	if err := c.send("render", render.NewView(v)); err != nil {
		log.Printf("[ws] session=%s render push failed: %v", c.sessionID, err)
	}
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctrl, err := h.sessions.Get(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, chatservice.ErrSessionNotFound.Error())
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	c := &conn{ws: ws, sessionID: sessionID}
	detach := ctrl.Attach(c)
	defer detach()

	// the session ends with the connection
	defer func() {
		if err := h.sessions.Close(context.Background(), sessionID); err != nil && !errors.Is(err, chatservice.ErrSessionNotFound) {
			log.Printf("[ws] session=%s close failed: %v", sessionID, err)
		}
	}()

	log.Printf("[ws] session=%s connected", sessionID)
	ctx := r.Context()
	ctrl.Refresh(ctx)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] session=%s read error: %v", sessionID, err)
			}
			log.Printf("[ws] session=%s disconnected", sessionID)
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = c.send("error", errorPayload{Message: "invalid message"})
			continue
		}

		h.dispatch(ctx, c, ctrl, msg)
	}
}

// dispatch handles one client message. Submissions run inline on the read
// loop, one at a time.
func (h *WebSocketHandler) dispatch(ctx context.Context, c *conn, ctrl *companion.Controller, msg inboundMessage) {
	var err error
	switch msg.Type {
	case "submit":
		_, err = ctrl.Submit(ctx, msg.Text)
	case "select_model":
		_, err = ctrl.SelectModel(ctx, msg.Model)
	case "reset":
		_, err = ctrl.Reset(ctx)
	case "refresh":
		ctrl.Refresh(ctx)
	default:
		err = errors.New("unknown message type: " + msg.Type)
	}

	if err == nil {
		return
	}

	payload := errorPayload{Message: err.Error()}
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		payload = errorPayload{Message: aiErr.UserMessage(), Kind: aiErr.Kind.String()}
	}
	if sendErr := c.send("error", payload); sendErr != nil {
		log.Printf("[ws] session=%s error push failed: %v", c.sessionID, sendErr)
	}
}
