package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
	"github.com/vzlabs/expense_tracker_app/internal/middleware"
	"github.com/vzlabs/expense_tracker_app/internal/notify"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// eventsHandler upgrades callers to websocket connections subscribed to a
// notification channel: their own user channel, or the shared admin channel
// if they are an admin.
type eventsHandler struct {
	bus      *notify.Bus
	upgrader websocket.Upgrader
}

func newEventsHandler(bus *notify.Bus, clientURL string) *eventsHandler {
	return &eventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == clientURL
			},
		},
	}
}

// registerEventRoutes registers the live event subscription endpoint.
func registerEventRoutes(rg *gin.RouterGroup, bus *notify.Bus, clientURL string) {
	h := newEventsHandler(bus, clientURL)
	rg.GET("/events/ws", h.subscribe)
}

// eventEnvelope is the wire shape of a delivered event.
type eventEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// subscribe godoc
// @Summary Subscribe to live expense lifecycle events
// @Description Joins the caller's personal channel, or the admin channel with ?channel=admins
// @Tags events
// @Param   channel query string false "Channel key; defaults to the caller's own channel"
// @Success 101
// @Failure 403 {object} map[string]string "Admin channel requested without admin role"
// @Security BearerAuth
// @Router /events/ws [get]
func (h *eventsHandler) subscribe(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	channel := domain.UserChannel(userID)
	if requested := c.Query("channel"); requested == domain.AdminChannel {
		if role != domain.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		channel = domain.AdminChannel
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	sub := h.bus.Subscribe(channel)
	defer h.bus.Unsubscribe(channel, sub)
	logger.Info("Subscriber connected", slog.String("channel", channel))

	// Reader goroutine: we never expect client messages, but reading is how
	// we learn the peer went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Info("Subscriber disconnected", slog.String("channel", channel))
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(eventEnvelope{Event: string(event.Kind), Data: event.Payload}); err != nil {
				logger.Warn("Failed to deliver event", slog.String("channel", channel), slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
