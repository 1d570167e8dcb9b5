package main

import (
	"fmt"
	"path/filepath"

	sinkmod "mediarelay/internal/services/linksink/module"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		source string
		text   bool
	)
	cmd := &cobra.Command{
		Use:   "submit URL...",
		Short: "Queue post URLs for the link watcher",
		Long: "Writes one link sentinel per post URL into the exchange. With --text every argument is\n" +
			"treated as free text and all post URLs found in it are queued.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps()
			if err := d.Layout.Ensure(); err != nil {
				return err
			}
			sink := sinkmod.New(d).Ports().(sinkmod.Ports).Submitter
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			for _, a := range args {
				if text {
					paths, err := sink.SubmitText(ctx, a, source)
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(out, filepath.Base(p))
					}
					continue
				}
				p, err := sink.Submit(ctx, a, source)
				if err != nil {
					return fmt.Errorf("%s: %w", a, err)
				}
				fmt.Fprintln(out, filepath.Base(p))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "relayctl", "source recorded in the sentinel")
	cmd.Flags().BoolVar(&text, "text", false, "extract post URLs from free text")
	return cmd
}
