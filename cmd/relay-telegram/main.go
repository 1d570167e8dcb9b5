// relay-telegram groups attachments sent to a Telegram bot into published jobs
// and queues post links sent to it
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"

	"mediarelay/internal/adapters/chat/telegram"
	"mediarelay/internal/modkit"
	"mediarelay/internal/platform/config"
	"mediarelay/internal/platform/logger"
	phttp "mediarelay/internal/platform/net/http"
	"mediarelay/internal/platform/shutdown"

	aggmod "mediarelay/internal/services/aggregator/module"
	"mediarelay/internal/services/api"
	sinkmod "mediarelay/internal/services/linksink/module"

	"github.com/joho/godotenv"
)

const service = "relay-telegram"

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fEnv  = flag.String("env", ".env", "dotenv file read before the environment; missing is fine")
		fRoot = flag.String("root", "", "exchange root (overrides RELAY_EXCHANGE_ROOT)")
		fAddr = flag.String("addr", "", "ops API listen address (overrides RELAY_API_ADDR)")
	)
	flag.Parse()

	envErr := godotenv.Load(*fEnv)
	mustSetEnv("RELAY_EXCHANGE_ROOT", *fRoot)
	mustSetEnv("RELAY_API_ADDR", *fAddr)

	lo := logger.FromEnv()
	if lo.Service == "" {
		lo.Service = service
	}
	logger.Init(lo)
	l := logger.Get()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		l.Warn().Err(envErr).Str("file", *fEnv).Msg("dotenv not loaded")
	}

	root := config.New()
	deps := modkit.NewDeps(root)
	if err := deps.Layout.Ensure(); err != nil {
		l.Panic().Err(err).Str("root", deps.Layout.Root).Msg("exchange layout unusable")
	}

	topts := telegram.FromConfig(root)
	botAPI, err := telegram.Dial(topts)
	if err != nil {
		l.Panic().Err(err).Msg("telegram login failed")
	}
	l.Info().Str("bot", botAPI.Self.UserName).Msg("telegram authorized")

	sink := sinkmod.New(deps)
	agg := aggmod.New(deps, telegram.NewDownloader(botAPI, topts))
	aggregator := agg.Ports().(aggmod.Ports).Aggregator
	bot := telegram.NewBot(botAPI, aggregator, sink.Ports().(sinkmod.Ports).Submitter, topts)

	srv := phttp.NewServer(root.Prefix("RELAY_API_"))
	opt := api.FromConfig(deps)
	opt.Service = service
	opt.Modules = []modkit.Module{sink, agg}
	api.Mount(srv.Router(), opt)

	l.Info().Str("root", deps.Layout.Root).Str("addr", srv.Addr()).Msg("telegram relay starting")
	err = shutdown.Run(context.Background(), shutdown.Options{
		Grace: root.Prefix("RELAY_").MayDuration("SHUTDOWN_GRACE", shutdown.DefaultGrace),
	},
		shutdown.Task{Name: "http", Run: srv.Run},
		shutdown.Task{Name: "telegram", Run: bot.Run},
		shutdown.Task{Name: "aggregator", Run: aggregator.Run},
	)
	os.Exit(shutdown.ExitCode(err))
}
