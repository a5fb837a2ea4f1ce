package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"sigcast/internal/config"
	"sigcast/internal/constants"
	"sigcast/internal/database"
	"sigcast/internal/dispatch"
	"sigcast/internal/models"
	"sigcast/internal/resend"
	"sigcast/internal/retry"
	"sigcast/internal/tracing"
	signalapi "sigcast/pkg/signal"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("sigcast %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting sigcast")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	configureLogLevel(logger, cfg)

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Open the membership store with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})
	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to open membership store: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to open membership store after retries: %w", err)
	}
	defer db.Close()

	if err := seedChannels(ctx, db, cfg.Channels); err != nil {
		return fmt.Errorf("failed to seed channels: %w", err)
	}

	registry, err := dispatch.NewRegistry(cfg.Channels)
	if err != nil {
		return fmt.Errorf("failed to create channel registry: %w", err)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(cfg.Signal.HTTPTimeoutSec) * time.Second,
	}

	clients := make(map[string]signalapi.Client, registry.Count())
	for _, number := range registry.Numbers() {
		clients[number] = signalapi.NewClientWithLogger(
			cfg.Signal.RPCURL,
			cfg.Signal.AuthToken,
			number,
			cfg.Signal.AttachmentsDir,
			httpClient,
			logger,
		)
	}

	transport := dispatch.NewClientTransport(clients, logger)
	queue := resend.NewQueue(transport,
		time.Duration(cfg.Resend.MinIntervalMs)*time.Millisecond,
		time.Duration(cfg.Resend.MaxIntervalMs)*time.Millisecond,
		logger,
	)
	defer queue.Stop()

	dispatcher := dispatch.NewDispatcher(db, transport, queue, logger)

	pollers := make([]*dispatch.Poller, 0, registry.Count())
	for _, number := range registry.Numbers() {
		channel, _ := registry.Get(number)
		relay := dispatch.NewChannelRelay(number, clients[number], dispatcher, cfg.Signal.PollTimeoutSec, logger)
		poller := dispatch.NewPoller(relay, cfg.Signal, cfg.Retry, logger)
		if err := poller.Start(ctx); err != nil {
			logger.WithError(err).WithField("channel", channel.Name).Warn("Failed to start channel poller")
			continue
		}
		pollers = append(pollers, poller)
	}
	defer func() {
		for _, poller := range pollers {
			poller.Stop()
		}
	}()

	logger.WithField("channels", registry.Count()).Info("Channel relays initialized")

	server := NewServer(cfg, registry, db, queue, logger)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}

func configureLogLevel(logger *logrus.Logger, cfg *models.Config) {
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
		return
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
		logger.SetLevel(logrus.InfoLevel)
		return
	}
	if level > logrus.InfoLevel {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// seedChannels mirrors the configured channels and their admins into the
// membership store on startup.
func seedChannels(ctx context.Context, db *database.Database, channels []models.ChannelConfig) error {
	for _, channel := range channels {
		if err := db.EnsureChannel(ctx, &models.Channel{
			PhoneNumber: channel.PhoneNumber,
			Name:        channel.Name,
		}); err != nil {
			return err
		}
		for _, admin := range channel.Admins {
			if err := db.AddAdmin(ctx, channel.PhoneNumber, admin); err != nil {
				return err
			}
		}
	}
	return nil
}
