package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var serverKeys = []string{
	"HOST", "PORT", "LOG_LEVEL", "LOG_FORMAT", "MAX_CLIENTS_PER_ROOM", "MAX_CHAT_LENGTH",
	"MAX_MESSAGE_SIZE", "SEND_BUFFER_SIZE", "MESSAGES_PER_SECOND", "MESSAGE_BURST", "SHUTDOWN_TIMEOUT",
}

var clientKeys = []string{
	"DIVC_SERVER", "STUN_SERVER", "TURN_SERVER", "TURN_USERNAME", "TURN_PASSWORD", "FORCE_RELAY",
}

// unsetenv removes keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadServer_Defaults(t *testing.T) {
	req := require.New(t)
	unsetenv(t, serverKeys...)

	cfg, err := LoadServer("testdata/missing.env")

	req.NoError(err)
	req.Equal(4000, cfg.Port)
	req.Equal(10, cfg.MaxClientsPerRoom)
	req.Equal(2000, cfg.MaxChatLength)
	req.Equal(int64(64*1024), cfg.MaxMessageSize)
	req.Equal(10*time.Second, cfg.ShutdownTimeout)
	req.Equal(":4000", cfg.Addr())
}

func TestLoadServer_FromEnvironment(t *testing.T) {
	req := require.New(t)
	unsetenv(t, serverKeys...)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_CLIENTS_PER_ROOM", "4")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadServer("testdata/missing.env")

	req.NoError(err)
	req.Equal("127.0.0.1:9000", cfg.Addr())
	req.Equal(4, cfg.MaxClientsPerRoom)
	req.Equal("json", cfg.LogFormat)
	req.Equal(3*time.Second, cfg.ShutdownTimeout)
}

func TestServer_Validate(t *testing.T) {
	valid := func() Server {
		return Server{
			Port:              4000,
			LogFormat:         "text",
			MaxClientsPerRoom: 10,
			MaxChatLength:     2000,
			MaxMessageSize:    1024,
			SendBufferSize:    8,
			MessagesPerSecond: 1,
			MessageBurst:      1,
			ShutdownTimeout:   time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Server)
		wantErr string
	}{
		{"valid", func(*Server) {}, ""},
		{"zero capacity", func(s *Server) { s.MaxClientsPerRoom = 0 }, "MAX_CLIENTS_PER_ROOM"},
		{"bad port", func(s *Server) { s.Port = 70000 }, "PORT"},
		{"bad format", func(s *Server) { s.LogFormat = "xml" }, "LOG_FORMAT"},
		{"negative rate", func(s *Server) { s.MessagesPerSecond = -1 }, "MESSAGES_PER_SECOND"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)

			err := cfg.Validate()

			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadClient_FlagBeatsEnvBeatsDefault(t *testing.T) {
	req := require.New(t)
	unsetenv(t, clientKeys...)
	t.Setenv("DIVC_SERVER", "wss://relay.example.com/ws")

	cfg, err := LoadClient(Options{STUNServer: "stun:flag.example.com:3478"})

	req.NoError(err)
	req.Equal("wss://relay.example.com/ws", cfg.ServerURL)
	req.Equal([]string{"stun:flag.example.com:3478"}, cfg.STUNServers())
	req.Nil(cfg.TURNServers())
}

func TestLoadClient_RejectsBadServer(t *testing.T) {
	unsetenv(t, clientKeys...)

	_, err := LoadClient(Options{ServerURL: "http://example.com"})
	require.ErrorContains(t, err, "ws://")
}

func TestLoadClient_RelayNeedsTURN(t *testing.T) {
	unsetenv(t, clientKeys...)

	_, err := LoadClient(Options{ServerURL: DefaultServerURL, ForceRelay: true})
	require.ErrorContains(t, err, "TURN")
}

func TestClient_TURNServers(t *testing.T) {
	req := require.New(t)

	c := Client{TURNServer: "turn.example.com"}
	req.Equal([]string{
		"turn:turn.example.com:3478?transport=udp",
		"turn:turn.example.com:3478?transport=tcp",
		"turns:turn.example.com:5349?transport=tcp",
	}, c.TURNServers())

	c.TURNServer = "turn:turn.example.com:3479"
	req.Equal([]string{"turn:turn.example.com:3479"}, c.TURNServers())
}
