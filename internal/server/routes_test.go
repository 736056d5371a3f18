package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	hub := signaling.NewHub(signaling.NewDirectory(10), log)
	go hub.Run(ctx)

	srv := httptest.NewServer(NewMux(hub, signaling.DefaultClientOptions(), log))
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		srv.Close()
	})
	return srv
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	req.NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal("text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	req.Equal("Signaling server is healthy.", string(body))
}

func TestServeWs_RejectsPlainHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeWs_GreetsWithConnectionID(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	header := http.Header{"Origin": []string{"https://some-other-site.example"}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	req.NoError(err)
	defer conn.Close()

	req.NoError(conn.SetReadDeadline(time.Now().Add(3 * time.Second)))
	var msg signaling.Message
	req.NoError(conn.ReadJSON(&msg))
	req.Equal(signaling.EventConnected, msg.Type)

	var self signaling.Participant
	req.NoError(json.Unmarshal(msg.Payload, &self))
	req.Len(self.ID, 36)
	req.Equal(self.ID[:signaling.UsernameLength], self.Username)
}
