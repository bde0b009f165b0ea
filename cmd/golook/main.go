package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/golook/golook/internal/command"
	"github.com/golook/golook/internal/logginglevel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Initialize logger
	cfg := zap.NewProductionConfig()
	cfg.Level = logginglevel.Level
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	zap.ReplaceGlobals(logger)

	// Set up a signal-interruptible context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := command.NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.Sugar().Fatal(err)
	}
}
