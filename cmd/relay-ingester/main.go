// relay-ingester turns queued post links and tracked creators into published jobs.
// It runs the link watcher, the periodic harvester and the ops API in one process
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"

	"mediarelay/internal/modkit"
	"mediarelay/internal/platform/config"
	"mediarelay/internal/platform/logger"
	phttp "mediarelay/internal/platform/net/http"
	"mediarelay/internal/platform/shutdown"

	"mediarelay/internal/services/api"
	fetchmod "mediarelay/internal/services/fetcher/module"
	harvestmod "mediarelay/internal/services/harvester/module"
	sinkmod "mediarelay/internal/services/linksink/module"
	watchmod "mediarelay/internal/services/linkwatch/module"

	"github.com/joho/godotenv"
)

const service = "relay-ingester"

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
		fOnce = flag.Bool("once", false, "run a single harvest sweep and exit")
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

	sink := sinkmod.New(deps)
	fetch := fetchmod.New(deps)
	fp := fetch.Ports().(fetchmod.Ports)
	watch := watchmod.New(deps, fp.Fetcher)
	harvest := harvestmod.New(deps, fp.Client, fp.Fetcher)
	hp := harvest.Ports().(harvestmod.Ports)

	if err := harvest.Load(); err != nil {
		l.Panic().Err(err).Msg("cursor file unreadable")
	}

	if *fOnce {
		sw, err := hp.Harvester.RunOnce(context.Background())
		if err != nil {
			l.Error().Err(err).Msg("harvest sweep failed")
			os.Exit(1)
		}
		l.Info().Int("sources", sw.Sources).Int("new_posts", sw.NewPosts).Int("failed", sw.Failed).Msg("harvest sweep done")
		return
	}

	srv := phttp.NewServer(root.Prefix("RELAY_API_"))
	opt := api.FromConfig(deps)
	opt.Service = service
	opt.Modules = []modkit.Module{sink, fetch, watch, harvest}
	api.Mount(srv.Router(), opt)

	tasks := []shutdown.Task{
		{Name: "http", Run: srv.Run},
		{Name: "linkwatch", Run: watch.Ports().(watchmod.Ports).Watcher.Run},
	}
	if harvest.Enabled() {
		tasks = append(tasks, shutdown.Task{Name: "harvester", Run: hp.Harvester.Run})
	} else {
		l.Info().Msg("harvester disabled")
	}

	l.Info().Str("root", deps.Layout.Root).Str("addr", srv.Addr()).Msg("ingester starting")
	err := shutdown.Run(context.Background(), shutdown.Options{
		Grace: root.Prefix("RELAY_").MayDuration("SHUTDOWN_GRACE", shutdown.DefaultGrace),
	}, tasks...)
	os.Exit(shutdown.ExitCode(err))
}
