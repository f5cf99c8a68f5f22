package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"chat-core/auth"
	"chat-core/internal"
	"chat-core/moderation"
	"chat-core/protocol"
	"chat-core/relay"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/services"
	"chat-core/storage"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
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

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Returning instead of calling os.Exit directly guarantees the deferred
// database cleanup executes, and keeps the wiring testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB) & Search Index (Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	store, err := storage.NewStore(db, blugeWriter, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("store init failed: %w", err)
	}
	defer store.Close()

	// 3. Services
	moderator, err := moderation.NewModerator(internal.WordList(config.CensoredWords), charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation dictionary: %w", err)
	}

	issuer := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	limiter := auth.NewLoginLimiter(config.LoginRatePerSecond, config.LoginBurst, config.LoginLimiterTTL)

	registry := runtime.NewRegistry(logger)
	presence := services.NewPresenceService(store, registry, logger)
	authService := services.NewAuthService(store, issuer, limiter, logger)
	delivery := services.NewDeliveryService(store, registry, &moderator, logger)
	dispatcher := services.NewDispatcher(authService, delivery, presence, store, registry, logger)

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Supervision
	// The listener and both relays run under the supervisor so a crashed
	// accept loop restarts without taking the process down.
	listener := runtime.NewListener(
		config.ListenAddr,
		protocol.NewCodec(),
		registry,
		dispatcher,
		presence,
		config.QueueSize,
		logger,
	)

	sup := workers.NewSupervisor(logger).Add(
		listener,
		relay.NewVideoRelay(config.VideoRelayAddr, logger),
		relay.NewAudioRelay(config.AudioRelayAddr, logger),
		workers.NewHeartbeatWorker(logger, registry, config.HeartbeatInterval),
	)

	logger.Info("Starting server",
		"addr", config.ListenAddr,
		"video", config.VideoRelayAddr,
		"audio", config.AudioRelayAddr,
	)

	// Run blocks until every worker stops, which happens once the signal
	// context is canceled.
	sup.Run(ctx)

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
