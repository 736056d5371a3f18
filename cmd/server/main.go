package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rosaguta/DIV-C-Server/internal/config"
	"github.com/rosaguta/DIV-C-Server/internal/logging"
	"github.com/rosaguta/DIV-C-Server/internal/server"
	"github.com/rosaguta/DIV-C-Server/internal/signaling"
	"github.com/rosaguta/DIV-C-Server/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "divc-server:", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	log := logging.Init(cfg.LogLevel, cfg.LogFormat, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Create the Hub and run its event loop
	rooms := signaling.NewDirectory(cfg.MaxClientsPerRoom)
	hub := signaling.NewHub(rooms, log, signaling.WithMaxChatLength(cfg.MaxChatLength))
	go hub.Run(ctx)

	// 3. Register our handlers
	clientOpts := signaling.ClientOptions{
		MaxMessageSize:    cfg.MaxMessageSize,
		SendBufferSize:    cfg.SendBufferSize,
		MessagesPerSecond: cfg.MessagesPerSecond,
		MessageBurst:      cfg.MessageBurst,
	}
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewMux(hub, clientOpts, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Start the server
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting signaling server", "addr", srv.Addr, "version", version.Version,
			"max_clients_per_room", rooms.MaxClients())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-hub.Done()
	return nil
}
