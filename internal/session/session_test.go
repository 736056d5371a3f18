package session

import (
	"errors"
	"log/slog"
	"net"
	"testing"

	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/rosaguta/DIV-C-Server/internal/config"
)

func TestFrames_TextSurvivesTheWire(t *testing.T) {
	req := require.New(t)

	data, err := EncodeFrame(FrameText, TextPayload{Body: "hi there"})
	req.NoError(err)

	f, err := ParseFrame(data)
	req.NoError(err)
	req.Equal(FrameText, f.Type)

	var p TextPayload
	req.NoError(f.DecodePayload(&p))
	req.Equal("hi there", p.Body)
}

func TestParseFrame_RejectsGarbage(t *testing.T) {
	_, err := ParseFrame([]byte{0xc1})

	var serr *Error
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "parse frame", serr.Op)
}

func TestSendFrame_NeedsOpenChannel(t *testing.T) {
	require.ErrorIs(t, sendFrame(nil, FrameText, TextPayload{}), ErrChannelNotOpen)
}

func TestError_Format(t *testing.T) {
	req := require.New(t)

	req.Equal("send offer abc123: boom", NewPeerError("send offer", "abc123", errors.New("boom")).Error())
	req.Equal("receive: unexpected frame type (ping)", WrapError("receive", ErrUnexpectedFrame, "ping").Error())
	req.ErrorIs(NewError("dial", ErrSignalingClosed), ErrSignalingClosed)
}

func stubTunnel(t *testing.T, v bool) {
	t.Helper()
	prev := detectTunnel
	detectTunnel = func() bool { return v }
	t.Cleanup(func() { detectTunnel = prev })
}

func TestConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Client
		tunnel     bool
		wantURLs   int
		wantPolicy webrtc.ICETransportPolicy
	}{
		{
			name:       "stun only",
			cfg:        config.Client{STUNServer: config.DefaultSTUN},
			wantURLs:   1,
			wantPolicy: webrtc.ICETransportPolicyAll,
		},
		{
			name:       "stun and turn",
			cfg:        config.Client{STUNServer: config.DefaultSTUN, TURNServer: "turn.example.com", TURNUser: "u", TURNPass: "p"},
			wantURLs:   2,
			wantPolicy: webrtc.ICETransportPolicyAll,
		},
		{
			name:       "relay only",
			cfg:        config.Client{TURNServer: "turn.example.com", ForceRelay: true},
			wantURLs:   1,
			wantPolicy: webrtc.ICETransportPolicyRelay,
		},
		{
			name:       "relay ignored without turn",
			cfg:        config.Client{STUNServer: config.DefaultSTUN, ForceRelay: true},
			wantURLs:   1,
			wantPolicy: webrtc.ICETransportPolicyAll,
		},
		{
			name:       "tunnel forces relay",
			cfg:        config.Client{STUNServer: config.DefaultSTUN, TURNServer: "turn.example.com"},
			tunnel:     true,
			wantURLs:   2,
			wantPolicy: webrtc.ICETransportPolicyRelay,
		},
		{
			name:       "tunnel without turn",
			cfg:        config.Client{STUNServer: config.DefaultSTUN},
			tunnel:     true,
			wantURLs:   1,
			wantPolicy: webrtc.ICETransportPolicyAll,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stubTunnel(t, tc.tunnel)
			got := Configuration(&tc.cfg)

			require.Len(t, got.ICEServers, tc.wantURLs)
			require.Equal(t, tc.wantPolicy, got.ICETransportPolicy)
		})
	}
}

func TestConfiguration_TURNCredentials(t *testing.T) {
	stubTunnel(t, false)
	cfg := config.Client{TURNServer: "turn.example.com", TURNUser: "user", TURNPass: "secret"}

	got := Configuration(&cfg)

	require.Len(t, got.ICEServers, 1)
	require.Equal(t, "user", got.ICEServers[0].Username)
	require.Equal(t, "secret", got.ICEServers[0].Credential)
	require.Len(t, got.ICEServers[0].URLs, 3)
}

func TestPionLevel(t *testing.T) {
	req := require.New(t)
	req.Equal(logging.LogLevelDebug, pionLevel(slog.LevelDebug))
	req.Equal(logging.LogLevelInfo, pionLevel(slog.LevelInfo))
	req.Equal(logging.LogLevelWarn, pionLevel(slog.LevelWarn))
	req.Equal(logging.LogLevelError, pionLevel(slog.LevelError))
}

func TestTunnelled(t *testing.T) {
	tests := []struct {
		name  string
		iface string
		ips   []net.IP
		want  bool
	}{
		{"ethernet", "eth0", []net.IP{net.ParseIP("192.168.1.20")}, false},
		{"wireguard", "wg0", nil, true},
		{"openvpn", "tun0", nil, true},
		{"cgnat address", "en0", []net.IP{net.ParseIP("100.72.3.4")}, true},
		{"just outside cgnat", "en0", []net.IP{net.ParseIP("100.128.0.1")}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tunnelled(tc.iface, tc.ips))
		})
	}
}
