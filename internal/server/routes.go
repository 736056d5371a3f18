package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

// NewUpgrader returns the websocket upgrader used by ServeWs.
func NewUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  64 * 1024, // 64 KB
		WriteBufferSize: 64 * 1024, // 64 KB

		// Browsers connect from arbitrary origins; the relay has no auth to protect.
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// ServeWs returns an http.HandlerFunc that upgrades requests and hands the
// connection to the hub.
func ServeWs(hub *signaling.Hub, opts signaling.ClientOptions, log *slog.Logger) http.HandlerFunc {
	upgrader := NewUpgrader()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			log.Debug("Failed to upgrade connection", "addr", r.RemoteAddr, "err", err)
			return
		}

		if _, ok := hub.Serve(conn, opts); !ok {
			log.Warn("Connection refused, hub stopped", "addr", r.RemoteAddr)
		}
	}
}

// Health is the liveness endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Signaling server is healthy."))
}

// NewMux wires the relay routes.
func NewMux(hub *signaling.Hub, opts signaling.ClientOptions, log *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health)
	mux.HandleFunc("GET /ws", ServeWs(hub, opts, log))
	return mux
}
