package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rosaguta/DIV-C-Server/internal/ui"
	"github.com/rosaguta/DIV-C-Server/internal/version"
)

var (
	flagServer   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagRelay    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "divc",
	Short: "Chat and call through a DIV-C signaling relay",
	Long: `divc is the command-line peer for the DIV-C signaling relay. It joins rooms,
chats through the relay's shared history and opens direct WebRTC links to the
other members of a room.`,
	Version: version.Version,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagServer, "server", "", "relay websocket URL (env DIVC_SERVER)")
	pf.StringVar(&flagSTUN, "stun", "", "STUN server URL (env STUN_SERVER)")
	pf.StringVar(&flagTURN, "turn", "", "TURN server host (env TURN_SERVER)")
	pf.StringVar(&flagTURNUser, "turn-user", "", "TURN username (env TURN_USERNAME)")
	pf.StringVar(&flagTURNPass, "turn-pass", "", "TURN password (env TURN_PASSWORD)")
	pf.BoolVar(&flagRelay, "relay", false, "only use TURN relay candidates (env FORCE_RELAY)")

	rootCmd.AddCommand(joinCmd, callCmd, historyCmd)
}

// Execute runs the CLI until it finishes or the process is interrupted.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		return 1
	}
	return 0
}
