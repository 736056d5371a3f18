package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rosaguta/DIV-C-Server/internal/logging"
	"github.com/rosaguta/DIV-C-Server/internal/session"
	"github.com/rosaguta/DIV-C-Server/internal/ui"
)

var callCmd = &cobra.Command{
	Use:     "call [room]",
	Aliases: []string{"c"},
	Short:   "Open direct WebRTC links to everyone in a room",
	Long: `Join a room and connect peer-to-peer to every other member. The relay only
carries the offer/answer/candidate handshake; chat lines typed here travel over
WebRTC data channels.

Examples:
  divc call standup
  divc call --turn turn.example.com --turn-user me --turn-pass secret --relay standup`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(cmd.Context(), roomArg(args), os.Stdin)
	},
}

func runCall(ctx context.Context, room string, in io.Reader) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.joinRoom(ctx, room); err != nil {
		return err
	}

	api := session.NewAPI(os.Stderr, logging.ParseLevel(os.Getenv("LOG_LEVEL"), slog.LevelError))
	mesh := session.NewMesh(api, session.Configuration(conn.Config), room, conn.Self.Username, conn.Client, slog.Default())
	defer mesh.Close()

	if err := conn.Client.Ready(room); err != nil {
		return session.NewError("announce ready", err)
	}
	ui.PrintInfof("Waiting for peers in %s. Type a line and press enter to send it to everyone.", room)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- mesh.Run(ctx, conn.Handler) }()
	lines := readLines(in)
	joined := conn.Handler.UserJoined

	for {
		select {
		case err := <-errCh:
			_ = conn.Client.Leave(room)
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err

		case e := <-mesh.Events():
			fmt.Println(formatEvent(e))

		case p, ok := <-joined:
			if !ok {
				joined = nil
				continue
			}
			ui.PrintInfof("%s %s joined, waiting for their offer", ui.IconPeer, p.Username)

		case line, ok := <-lines:
			if !ok {
				cancel()
				lines = nil
				continue
			}
			if n := mesh.Send(line); n == 0 {
				ui.PrintWarning("No peers connected yet")
			}
		}
	}
}

// readLines streams non-empty lines from r. The channel closes at EOF.
func readLines(r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				out <- line
			}
		}
	}()
	return out
}

func formatEvent(e session.Event) string {
	name := e.Name
	if name == "" {
		name = e.Peer
	}
	switch e.Kind {
	case session.PeerConnected:
		return fmt.Sprintf("%s %s", ui.IconConnect, ui.MutedStyle.Render("link open to "+e.Peer))
	case session.PeerGreeted:
		return fmt.Sprintf("%s %s connected (v%s)", ui.SuccessStyle.Render(ui.IconSuccess), ui.BoldStyle.Render(name), e.Body)
	case session.PeerText:
		return ui.AuthorStyle.Render(name+":") + " " + e.Body
	case session.PeerLeft:
		return fmt.Sprintf("%s %s left", ui.IconLeft, name)
	case session.PeerFailed:
		return ui.ErrorStyle.Render(fmt.Sprintf("%s link to %s failed: %v", ui.IconError, name, e.Err))
	default:
		return ""
	}
}
