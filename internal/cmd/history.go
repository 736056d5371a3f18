package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rosaguta/DIV-C-Server/internal/session"
	"github.com/rosaguta/DIV-C-Server/internal/ui"
)

const historyTimeout = 5 * time.Second

var historyCmd = &cobra.Command{
	Use:     "history <room>",
	Aliases: []string{"log"},
	Short:   "Print a room's chat history without joining it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.Context(), args[0])
	},
}

func runHistory(ctx context.Context, room string) error {
	conn, err := connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Client.FetchHistory(room); err != nil {
		return session.NewError("fetch history", err)
	}

	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	select {
	case entries, ok := <-conn.Handler.History:
		if !ok {
			return session.NewError("fetch history", session.ErrSignalingClosed)
		}
		fmt.Println(ui.HistoryView(room, entries))
		return nil
	case <-ctx.Done():
		return session.WrapError("fetch history", ctx.Err(), room)
	}
}
