package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rosaguta/DIV-C-Server/internal/config"
	"github.com/rosaguta/DIV-C-Server/internal/roomname"
	"github.com/rosaguta/DIV-C-Server/internal/session"
	"github.com/rosaguta/DIV-C-Server/internal/sigclient"
	"github.com/rosaguta/DIV-C-Server/internal/signaling"
	"github.com/rosaguta/DIV-C-Server/internal/ui"
)

const connectTimeout = 15 * time.Second

// Connection bundles a live relay connection with its event handler.
type Connection struct {
	Client  *sigclient.Client
	Handler *sigclient.Handler
	Config  *config.Client
	Self    signaling.Participant
}

func loadConfig() (*config.Client, error) {
	cfg, err := config.LoadClient(config.Options{
		ServerURL:  flagServer,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
		ForceRelay: flagRelay,
	})
	if err != nil {
		return nil, session.NewError("load config", err)
	}
	return cfg, nil
}

// connect dials the relay and waits for it to assign a connection id.
func connect(ctx context.Context) (*Connection, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	sp := ui.NewConnectionSpinner("Connecting to relay...")
	sp.Start()
	defer sp.Stop()

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := sigclient.Dial(ctx, cfg.ServerURL, slog.Default())
	if err != nil {
		return nil, session.NewError("connect to relay", err)
	}
	handler := sigclient.NewHandler(client)
	go handler.Start()

	select {
	case self, ok := <-handler.Connected:
		if !ok {
			client.Close()
			return nil, session.NewError("connect to relay", session.ErrSignalingClosed)
		}
		return &Connection{Client: client, Handler: handler, Config: cfg, Self: self}, nil
	case <-ctx.Done():
		client.Close()
		return nil, session.NewError("connect to relay", ctx.Err())
	}
}

// joinRoom enters room and reports whether it was created.
func (c *Connection) joinRoom(ctx context.Context, room string) (bool, error) {
	if err := c.Client.Join(room); err != nil {
		return false, session.NewError("join", err)
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	created, err := c.Handler.AwaitJoin(ctx, room)
	if err != nil {
		return false, err
	}

	fmt.Println(ui.RoomInfo{Room: room, Self: c.Self, Created: created}.View())
	return created, nil
}

func (c *Connection) Close() {
	c.Client.Close()
}

// roomArg returns the room named on the command line, or a fresh random one.
func roomArg(args []string) string {
	if len(args) > 0 {
		if room := strings.TrimSpace(args[0]); room != "" {
			return room
		}
	}
	room := roomname.Generate()
	ui.PrintInfof("No room given, created name %s. Share it with the people you want to reach.", room)
	return room
}
