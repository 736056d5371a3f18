package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Server holds the relay configuration.
type Server struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT,default=4000"`
	LogLevel string `env:"LOG_LEVEL,default=info"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"LOG_FORMAT,default=text"`

	MaxClientsPerRoom int `env:"MAX_CLIENTS_PER_ROOM,default=10"`
	MaxChatLength     int `env:"MAX_CHAT_LENGTH,default=2000"`

	// Per-connection limits.
	MaxMessageSize    int64   `env:"MAX_MESSAGE_SIZE,default=65536"`
	SendBufferSize    int     `env:"SEND_BUFFER_SIZE,default=256"`
	MessagesPerSecond float64 `env:"MESSAGES_PER_SECOND,default=20"`
	MessageBurst      int     `env:"MESSAGE_BURST,default=40"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// LoadServer reads an optional .env file, then the environment.
func LoadServer(files ...string) (*Server, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(files...)

	var cfg Server
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects limits the relay cannot run with.
func (c *Server) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	positive := map[string]float64{
		"MAX_CLIENTS_PER_ROOM": float64(c.MaxClientsPerRoom),
		"MAX_CHAT_LENGTH":      float64(c.MaxChatLength),
		"MAX_MESSAGE_SIZE":     float64(c.MaxMessageSize),
		"SEND_BUFFER_SIZE":     float64(c.SendBufferSize),
		"MESSAGES_PER_SECOND":  c.MessagesPerSecond,
		"MESSAGE_BURST":        float64(c.MessageBurst),
		"SHUTDOWN_TIMEOUT":     float64(c.ShutdownTimeout),
	}
	for key, v := range positive {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", key))
		}
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Server) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
