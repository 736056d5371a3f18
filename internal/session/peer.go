package session

import (
	"io"
	"log/slog"

	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"

	"github.com/rosaguta/DIV-C-Server/internal/config"
)

const chatChannelLabel = "chat"

// NewAPI builds a pion API whose internal logs go to w at the level matching
// the slog level. tune may adjust the setting engine further.
func NewAPI(w io.Writer, level slog.Level, tune ...func(*webrtc.SettingEngine)) *webrtc.API {
	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = w
	factory.DefaultLogLevel = pionLevel(level)

	var s webrtc.SettingEngine
	s.LoggerFactory = factory
	for _, fn := range tune {
		fn(&s)
	}
	return webrtc.NewAPI(webrtc.WithSettingEngine(s))
}

func pionLevel(level slog.Level) logging.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return logging.LogLevelDebug
	case level <= slog.LevelInfo:
		return logging.LogLevelInfo
	case level <= slog.LevelWarn:
		return logging.LogLevelWarn
	default:
		return logging.LogLevelError
	}
}

// Configuration maps CLI config onto a peer connection configuration. With
// TURN configured, relay-only is used when asked for or when a VPN or CGNAT
// interface is detected.
func Configuration(cfg *config.Client) webrtc.Configuration {
	var iceServers []webrtc.ICEServer
	if stun := cfg.STUNServers(); stun != nil {
		iceServers = append(iceServers, webrtc.ICEServer{URLs: stun})
	}

	turnServers := cfg.TURNServers()
	if turnServers != nil {
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       turnServers,
			Username:   cfg.TURNUser,
			Credential: cfg.TURNPass,
		})
	}

	policy := webrtc.ICETransportPolicyAll
	if turnServers != nil && (cfg.ForceRelay || detectTunnel()) {
		policy = webrtc.ICETransportPolicyRelay
	}

	return webrtc.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	}
}

func createChatChannel(pc *webrtc.PeerConnection) (*webrtc.DataChannel, error) {
	ordered := true
	dc, err := pc.CreateDataChannel(chatChannelLabel, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return nil, NewError("create data channel", err)
	}
	return dc, nil
}
