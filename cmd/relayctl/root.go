package main

import (
	"errors"
	"io/fs"
	"os"

	"mediarelay/internal/modkit"
	"mediarelay/internal/platform/config"
	"mediarelay/internal/platform/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const service = "relayctl"

type rootFlags struct {
	env  string
	root string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "relayctl",
		Short:         "Operate a mediarelay exchange",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := godotenv.Load(f.env); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if f.root != "" {
				_ = os.Setenv("RELAY_EXCHANGE_ROOT", f.root)
			}
			lo := logger.FromEnv()
			lo.Service = service
			lo.Writer = os.Stderr
			if os.Getenv("LOG_LEVEL") == "" {
				lo.Level = "warn"
			}
			logger.Init(lo)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&f.env, "env", ".env", "dotenv file read before the environment")
	cmd.PersistentFlags().StringVar(&f.root, "root", "", "exchange root (overrides RELAY_EXCHANGE_ROOT)")

	cmd.AddCommand(
		newSubmitCmd(),
		newCursorsCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return cmd
}

// deps resolves the exchange layout from the environment at call time
func deps() modkit.Deps {
	return modkit.NewDeps(config.New())
}
