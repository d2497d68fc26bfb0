// Package ws bridges the notification broker to websocket clients. Each
// connection carries exactly one recipient's events; delivery is at most
// once and nothing is replayed on reconnect.
package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/a1nn1997/realtime-blog-backend/internal/notify"
	"github.com/a1nn1997/realtime-blog-backend/internal/platform/auth"
)

const (
	// heartbeatInterval keeps intermediaries from reaping idle
	// connections; it is not dead-peer detection.
	heartbeatInterval = 30 * time.Second

	writeWait = 10 * time.Second
)

// Handler upgrades notification connections and relays events.
type Handler struct {
	log       *zap.Logger
	verifier  auth.JWTVerifier
	broker    notify.Broker
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

func NewHandler(log *zap.Logger, verifier auth.JWTVerifier, broker notify.Broker) *Handler {
	return &Handler{
		log:       log,
		verifier:  verifier,
		broker:    broker,
		heartbeat: heartbeatInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set Authorization headers on websocket
			// dials, so auth rides the token query parameter and any
			// origin may attempt the handshake.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeNotifications handles GET /ws/notifications?token=...
//
// The handshake is completed even for a bad token; the failure is
// delivered as a first frame {"error": ...} before closing, so browser
// clients see a readable reason instead of an opaque HTTP 4xx.
func (h *Handler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _, authErr := h.verifier.ParseSubject(r.URL.Query().Get("token"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	if authErr != nil {
		h.reject(conn, "Invalid token: "+authErr.Error())
		return
	}
	h.relay(r, conn, userID)
}

func (h *Handler) reject(conn *websocket.Conn, message string) {
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(map[string]string{"error": message}); err != nil {
		h.log.Warn("websocket error frame write failed", zap.Error(err))
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func (h *Handler) relay(r *http.Request, conn *websocket.Conn, userID uuid.UUID) {
	defer conn.Close()

	sub, err := h.broker.Subscribe(r.Context(), userID)
	if err != nil {
		h.log.Error("notification subscribe failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}
	defer sub.Close()

	h.log.Info("notification subscriber connected", zap.String("user_id", userID.String()))

	// Reader: the client never sends application data, but the read loop
	// must run to process control frames and to notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.log.Debug("notification forward failed",
					zap.String("user_id", userID.String()),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			h.log.Info("notification subscriber disconnected", zap.String("user_id", userID.String()))
			return
		}
	}
}
