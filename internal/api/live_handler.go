package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/technosupport/ts-alert-relay/internal/live"
	"github.com/technosupport/ts-alert-relay/internal/middleware"
	"github.com/technosupport/ts-alert-relay/internal/tokens"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard origin enforced at the proxy
	},
}

type LiveHandler struct {
	Feed   *live.Feed
	Tokens middleware.TokenValidator // nil disables auth
	Logger zerolog.Logger
}

func NewLiveHandler(feed *live.Feed, validator middleware.TokenValidator, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{Feed: feed, Tokens: validator, Logger: logger}
}

// ServeWS streams terminal pipeline decisions to a dashboard client.
// Auth rides the token query param, the usual workaround for browser
// websocket clients that cannot set headers.
func (h *LiveHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.Tokens != nil {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := h.Tokens.ValidateToken(tokenStr)
		if err != nil || (claims.Role != tokens.RoleViewer && claims.Role != tokens.RoleIngest) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	decisions, cancel := h.Feed.Subscribe()
	defer cancel()

	// Reader goroutine only to detect the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case d, ok := <-decisions:
			if !ok {
				return
			}
			if err := conn.WriteJSON(d); err != nil {
				h.Logger.Debug().Err(err).Msg("live feed write failed, dropping client")
				return
			}
		case <-done:
			return
		}
	}
}
