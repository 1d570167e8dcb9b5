// relay-courier delivers published jobs to a Discord channel and queues post links
// posted in Discord chats
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"

	"mediarelay/internal/adapters/chat/discord"
	"mediarelay/internal/modkit"
	"mediarelay/internal/platform/config"
	"mediarelay/internal/platform/logger"
	phttp "mediarelay/internal/platform/net/http"
	"mediarelay/internal/platform/shutdown"

	"mediarelay/internal/services/api"
	chunkmod "mediarelay/internal/services/chunker/module"
	sinkmod "mediarelay/internal/services/linksink/module"

	"github.com/joho/godotenv"
)

const service = "relay-courier"

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fEnv    = flag.String("env", ".env", "dotenv file read before the environment; missing is fine")
		fRoot   = flag.String("root", "", "exchange root (overrides RELAY_EXCHANGE_ROOT)")
		fAddr   = flag.String("addr", "", "ops API listen address (overrides RELAY_API_ADDR)")
		fListen = flag.Bool("listen", true, "queue post links seen in Discord messages")
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

	dopts := discord.FromConfig(root)
	session, err := discord.Dial(dopts)
	if err != nil {
		l.Panic().Err(err).Msg("discord session")
	}

	sink := sinkmod.New(deps)
	chunk := chunkmod.New(deps, discord.NewDelivery(session, dopts.ChannelID))

	srv := phttp.NewServer(root.Prefix("RELAY_API_"))
	opt := api.FromConfig(deps)
	opt.Service = service
	opt.Modules = []modkit.Module{sink, chunk}
	api.Mount(srv.Router(), opt)

	tasks := []shutdown.Task{
		{Name: "http", Run: srv.Run},
		{Name: "chunker", Run: chunk.Ports().(chunkmod.Ports).Chunker.Run},
	}
	if *fListen {
		submitter := sink.Ports().(sinkmod.Ports).Submitter
		tasks = append(tasks, shutdown.Task{Name: "discord", Run: func(ctx context.Context) error {
			ln := discord.NewListener(ctx, submitter, dopts.Source)
			remove := session.AddHandler(ln.OnMessageCreate)
			defer remove()
			if err := session.Open(); err != nil {
				return err
			}
			l.Info().Str("channel", dopts.ChannelID).Msg("discord gateway connected")
			<-ctx.Done()
			return session.Close()
		}})
	}

	l.Info().Str("root", deps.Layout.Root).Str("addr", srv.Addr()).Msg("courier starting")
	err = shutdown.Run(context.Background(), shutdown.Options{
		Grace: root.Prefix("RELAY_").MayDuration("SHUTDOWN_GRACE", shutdown.DefaultGrace),
	}, tasks...)
	os.Exit(shutdown.ExitCode(err))
}
