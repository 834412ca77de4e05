package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"abcommons/config"
	"abcommons/core/events"
	"abcommons/core/types"
	"abcommons/native/commons"
	"abcommons/observability/logging"
	"abcommons/rpc"
	"abcommons/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ABC_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if env == "" {
		env = cfg.Env
	}
	logger := logging.SetupWithOptions("abcd", env, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 14,
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	engine := commons.NewEngine()
	engine.SetState(commons.NewStore(db))
	engine.SetEmitter(&logEmitter{logger: logger})

	if err := instantiateOnce(engine, cfg, logger); err != nil {
		logger.Error("failed to instantiate sale", slog.Any("error", err))
		os.Exit(1)
	}

	server := rpc.NewServer(engine, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("RPC server terminated", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

// instantiateOnce seeds the sale on first boot and is a no-op on restarts.
func instantiateOnce(engine *commons.Engine, cfg *config.Config, logger *slog.Logger) error {
	msg, err := cfg.InstantiateMsg()
	if err != nil {
		return err
	}
	res, err := engine.Instantiate(msg)
	if errors.Is(err, commons.ErrAlreadyInitialized) {
		logger.Info("sale already instantiated, resuming")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("sale instantiated", slog.String("denom", res.Denom))
	for _, intent := range res.Intents {
		logger.Info("pending token intent", slog.String("kind", intent.IntentKind()))
	}
	return nil
}

// logEmitter forwards engine events to the structured logger.
type logEmitter struct {
	logger *slog.Logger
}

func (l *logEmitter) Emit(evt events.Event) {
	if l == nil || l.logger == nil || evt == nil {
		return
	}
	attrs := []any{slog.String("event", evt.EventType())}
	if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
		if raw := carrier.Event(); raw != nil {
			for key, value := range raw.Attributes {
				attrs = append(attrs, slog.String(key, value))
			}
		}
	}
	l.logger.Info("sale event", attrs...)
}
