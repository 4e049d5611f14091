package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"parlor/ai"
	"parlor/infrastructure/httpapi"
	"parlor/internal"
	"parlor/moderation"
	"parlor/repositories"
	"parlor/runtime"
	"parlor/services"
	"parlor/transport"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. This pattern ensures all defers run
// before the program exits and keeps the entry point testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	maskRune, err := internal.MaskRune(config.MaskCharacter)
	if err != nil {
		return exitConfig, err
	}

	logger := internal.NewLogger(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are
		// flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Redis (room buses and membership)
	redisOpts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return exitConfig, fmt.Errorf("redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		logger.Info("Closing Redis...")
		_ = redisClient.Close()
	}()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return exitRuntime, fmt.Errorf("redis connect failed: %w", err)
	}

	// 4. Moderation & repositories
	moderator, err := moderation.NewModerator(moderation.DefaultWords(), maskRune)
	if err != nil {
		return exitRuntime, fmt.Errorf("moderation init failed: %w", err)
	}
	messageRepository := repositories.NewMessageRepository(db, logger, &config.HistoryLimit)
	roomRepository := repositories.NewRoomRepository(db)

	// 5. Supervised workers
	sup := runtime.NewSupervisor(logger, config.RestartInterval)
	sup.Add(runtime.NewRecorder(redisClient, messageRepository, moderator, logger))

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Error (HTTP & Supervisor)
	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting supervised workers...")
		sup.Run(ctx)
	}()

	// 7. HTTP API Setup
	completion := ai.NewClient(config.OpenAIKey, config.OpenAIBaseURL, config.CompletionModel)
	accessService := services.NewAccessService([]byte(config.TokenSecret), config.TokenDuration)
	roomService := services.NewRoomService(roomRepository, transport.NewPresence(redisClient))
	historyService := services.NewHistoryService(messageRepository)
	assistantService := services.NewAssistantService(completion, messageRepository, config.ContextMessages)

	api := httpapi.NewServer(logger, accessService, roomService, historyService, assistantService)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	httpServer := &http.Server{Handler: api.Handler()}
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 9. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	return options
}
