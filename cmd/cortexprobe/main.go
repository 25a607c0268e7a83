package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cortexprobe/internal/cli"
	"cortexprobe/internal/config"
	logpkg "cortexprobe/internal/log"

	"github.com/joho/godotenv"
)

func main() {
	wd, _ := os.Getwd()
	dotenvPath := config.FindDotEnv(wd)
	var dotenvErr error
	if dotenvPath != "" {
		dotenvErr = godotenv.Load(dotenvPath)
	}

	logger := logpkg.CreateLogger()
	switch {
	case dotenvPath == "":
		logger.Debug("No .env file found, using system environment variables")
	case dotenvErr != nil:
		logger.Warn("Failed to load %s: %v", dotenvPath, dotenvErr)
	default:
		logger.Debug("Loaded environment from %s", dotenvPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand(logger).ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("%v", err)
	}
	if appLog, ok := logger.(*logpkg.AppLogger); ok {
		_ = appLog.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
