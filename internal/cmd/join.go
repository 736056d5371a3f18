package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rosaguta/DIV-C-Server/internal/session"
	"github.com/rosaguta/DIV-C-Server/internal/sigclient"
	"github.com/rosaguta/DIV-C-Server/internal/signaling"
	"github.com/rosaguta/DIV-C-Server/internal/ui"
)

var joinCmd = &cobra.Command{
	Use:     "join [room]",
	Aliases: []string{"j"},
	Short:   "Chat in a room through the relay",
	Long: `Join a room and chat with its members. Messages go through the relay and
every member sees the room's full history. Without a room name a random one
is generated for others to join.

Examples:
  divc join lobby
  divc join --server wss://relay.example.com/ws lobby`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJoin(cmd.Context(), roomArg(args))
	},
}

func runJoin(ctx context.Context, room string) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.joinRoom(ctx, room); err != nil {
		return err
	}

	model := ui.NewChatModel(room, conn.Self, func(text string) error {
		return conn.Client.SendText(room, text)
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	pumpCtx, stopPump := context.WithCancel(ctx)
	defer stopPump()
	go pumpRoomEvents(pumpCtx, p.Send, conn.Handler)

	if err := conn.Client.FetchHistory(room); err != nil {
		return session.NewError("fetch history", err)
	}

	final, err := p.Run()
	_ = conn.Client.Leave(room)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	if m, ok := final.(ui.ChatModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// pumpRoomEvents forwards relay events to the chat screen until ctx ends
// or the relay connection drops.
func pumpRoomEvents(ctx context.Context, send func(tea.Msg), h *sigclient.Handler) {
	disconnected := func() {
		send(ui.DisconnectedMsg{Err: session.ErrSignalingClosed})
	}

	for {
		select {
		case <-ctx.Done():
			return

		case members, ok := <-h.UserList:
			if !ok {
				disconnected()
				return
			}
			send(ui.MembersMsg(members))

		case p, ok := <-h.UserJoined:
			if !ok {
				disconnected()
				return
			}
			send(ui.MemberJoinedMsg(p))

		case id, ok := <-h.UserLeft:
			if !ok {
				disconnected()
				return
			}
			send(ui.MemberLeftMsg(id))

		case entries, ok := <-h.History:
			if !ok {
				disconnected()
				return
			}
			send(ui.HistoryMsg(entries))

		case id, ok := <-h.Ready:
			if !ok {
				disconnected()
				return
			}
			send(ui.NoticeMsg(fmt.Sprintf("%s %s is ready to call", ui.IconConnect, signaling.Username(id))))

		// Media handshakes are for `divc call`; a chat-only peer ignores them.
		case <-h.Offer:
		case <-h.Answer:
		case <-h.Candidate:
		}
	}
}
