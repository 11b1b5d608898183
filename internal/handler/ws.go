package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Neeraj110/chatApp/internal/middleware"
	"github.com/Neeraj110/chatApp/internal/model"
	"github.com/Neeraj110/chatApp/internal/presence"
	"github.com/Neeraj110/chatApp/internal/realtime"
	"github.com/Neeraj110/chatApp/internal/ws"
	"github.com/Neeraj110/chatApp/pkg/logger"
)

// WSHandler upgrades authenticated requests to websocket connections.
type WSHandler struct {
	hub       *ws.Hub
	users     middleware.UserLoader
	presence  *presence.Tracker
	events    *realtime.Broadcaster
	jwtSecret string
	logger    *logger.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler creates the websocket endpoint handler. origin restricts
// browser connections; empty allows any.
func NewWSHandler(hub *ws.Hub, users middleware.UserLoader, tracker *presence.Tracker, events *realtime.Broadcaster, jwtSecret, origin string, log *logger.Logger) *WSHandler {
	return &WSHandler{
		hub:       hub,
		users:     users,
		presence:  tracker,
		events:    events,
		jwtSecret: jwtSecret,
		logger:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if origin == "" {
					return true
				}
				return r.Header.Get("Origin") == origin
			},
		},
	}
}

// Serve handles GET /ws. The token comes from the session cookie, a bearer
// header, or a token query parameter for clients that cannot set headers on
// websocket requests.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, "Unauthorized - No token provided", http.StatusUnauthorized)
		return
	}

	userID, err := middleware.ParseToken(token, h.jwtSecret)
	if err != nil {
		http.Error(w, "Unauthorized - Invalid token", http.StatusUnauthorized)
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Unauthorized - Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	uid := user.ID.Hex()
	if online, err := h.presence.Connect(r.Context(), uid); err != nil {
		h.logger.Error("presence connect failed", zap.String("user_id", uid), zap.Error(err))
	} else {
		h.events.EmitAll(model.EventOnlineUsers, online)
	}

	// The request context is cancelled once the connection closes; presence
	// cleanup still has to run.
	ctx := context.WithoutCancel(r.Context())

	client := ws.NewClient(h.hub, conn, uid)
	go client.Serve(func() {
		if online, err := h.presence.Disconnect(ctx, uid); err != nil {
			h.logger.Error("presence disconnect failed", zap.String("user_id", uid), zap.Error(err))
		} else {
			h.events.EmitAll(model.EventOnlineUsers, online)
		}
	})
}
