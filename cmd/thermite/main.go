package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/itotallyrock/thermite/internal/logx"
	"github.com/itotallyrock/thermite/internal/uci"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging on stderr")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose || os.Getenv("THERMITE_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	logger := logx.NewLogger(os.Stderr).Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("version", uci.EngineVersion).Msg("engine starting")

	engine := uci.NewEngine(os.Stdin, os.Stdout, logger)
	if err := engine.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("protocol loop")
	}
	logger.Info().Msg("engine exiting")
}
