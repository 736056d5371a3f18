package main

import (
	"log/slog"
	"os"

	"github.com/rosaguta/DIV-C-Server/internal/cmd"
	"github.com/rosaguta/DIV-C-Server/internal/logging"
)

func main() {
	logging.Init(os.Getenv("LOG_LEVEL"), "text", slog.LevelError)
	os.Exit(cmd.Execute())
}
