package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Default CLI values.
const (
	DefaultServerURL = "ws://localhost:4000/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Client holds the CLI peer configuration.
type Client struct {
	// ServerURL is the relay websocket endpoint.
	ServerURL string `env:"DIVC_SERVER,default=ws://localhost:4000/ws"`

	// ICE servers for WebRTC
	STUNServer string `env:"STUN_SERVER,default=stun:stun.l.google.com:19302"`
	TURNServer string `env:"TURN_SERVER"`
	TURNUser   string `env:"TURN_USERNAME"`
	TURNPass   string `env:"TURN_PASSWORD"`

	// ForceRelay restricts ICE to TURN candidates.
	ForceRelay bool `env:"FORCE_RELAY"`
}

// Options carries CLI flag overrides. Empty fields are ignored.
type Options struct {
	ServerURL  string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
}

// LoadClient reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (and .env)
// 3. Hardcoded defaults - lowest priority
func LoadClient(opts Options) (*Client, error) {
	_ = godotenv.Load()

	var cfg Client
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	override(&cfg.ServerURL, opts.ServerURL)
	override(&cfg.STUNServer, opts.STUNServer)
	override(&cfg.TURNServer, opts.TURNServer)
	override(&cfg.TURNUser, opts.TURNUser)
	override(&cfg.TURNPass, opts.TURNPass)
	if opts.ForceRelay {
		cfg.ForceRelay = true
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, fmt.Errorf("config: server must be a ws:// or wss:// URL, got %q", cfg.ServerURL)
	}
	if cfg.ForceRelay && cfg.TURNServer == "" {
		return nil, fmt.Errorf("config: relay-only mode needs a TURN server")
	}
	return &cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// STUNServers returns STUN server URLs.
func (c *Client) STUNServers() []string {
	if c.STUNServer == "" {
		return nil
	}
	return []string{c.STUNServer}
}

// TURNServers expands the TURN host into the usual transport variants. A
// value that already carries a port or query is used as is.
func (c *Client) TURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	host := strings.TrimPrefix(c.TURNServer, "turn:")
	if strings.ContainsAny(host, ":?") {
		return []string{c.TURNServer}
	}
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", host),
		fmt.Sprintf("turn:%s:3478?transport=tcp", host),
		fmt.Sprintf("turns:%s:5349?transport=tcp", host),
	}
}
