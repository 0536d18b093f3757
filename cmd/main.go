package main

import (
	"context"
	"errors"
	"fmt"
	"livehub/auth"
	"livehub/internal"
	"livehub/repositories"
	"livehub/runtime"
	"livehub/runtime/workers"
	"livehub/services"
	"livehub/ws"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for live connections and background workers.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Runtime
	userRepository := repositories.NewUserRepository(db)
	streamRepository := repositories.NewStreamRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(registry, log)

	// 4. Services
	lifecycle := services.NewLifecycleService(streamRepository, registry, broadcaster, log)
	history := services.NewHistoryService(messageRepository)
	directory := auth.NewDirectory(userRepository, config.AuthSecret, log)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervision & Background Workers
	stats := workers.NewStatsWorker(log, config.StatsInterval, registry)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewCountSyncWorker(log, config.CountSyncInterval, registry, lifecycle),
		stats,
	)
	go sup.Run(ctx)

	// 7. HTTP & WebSocket Server Setup
	server := ws.NewServer(ws.Config{
		SessionBufferSize: config.SessionBufferSize,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		MaxContentLength:  config.MaxContentLength,
		AllowedOrigins:    internal.Origins(config.AllowedOrigins),
	}, registry, broadcaster, lifecycle, history, directory, messageRepository, log)
	server.SetStatsWorker(stats)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	// No global read timeout here: live connections are long-lived and
	// pace themselves with pings.
	httpServer := &http.Server{Handler: mux}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting live hub server", "address", address, "at", time.Now().UTC())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Optional Inspector
	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", nil, func() map[string]any {
			snap := stats.Snapshot()
			return map[string]any{
				"Channels": snap.Channels,
				"Viewers":  snap.Viewers,
				"RAM (MB)": snap.RAMBytes / 1024 / 1024,
				"Time":     time.Now().Format(time.RFC822),
			}
		})
		log.Info("Inspector started", "port", config.DebugPort)
	}

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
