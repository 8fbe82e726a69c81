package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
	streamPingEvery = (streamPongWait * 9) / 10
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	list, err := h.svc.Notifications.List(r.Context(), auth.UserIDFromContext(r.Context()), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Notifications.MarkRead(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// streamNotifications upgrades to a websocket and writes each new
// notification of the caller as a JSON text message. The subscription lives
// exactly as long as the connection.
func (h *Handler) streamNotifications(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.svc.Notifications.Subscribe(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer sub.Close()

	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(ctx, "notification stream upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	h.log.Info(ctx, "notification stream opened", "user_id", userID)
	defer h.log.Info(ctx, "notification stream closed", "user_id", userID)

	// The reader only services control frames and notices the peer leaving.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		if err := conn.SetReadDeadline(time.Now().Add(streamPongWait)); err != nil {
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.C():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(streamWriteWait))
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
