package main

import (
	"fmt"
	"text/tabwriter"

	harvestdom "mediarelay/internal/services/harvester/domain"
	harvestmod "mediarelay/internal/services/harvester/module"

	"github.com/spf13/cobra"
)

func newCursorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursors",
		Short: "Inspect and extend the sources the harvester tracks",
	}
	cmd.AddCommand(newCursorsListCmd(), newCursorsAddCmd())
	return cmd
}

// harvester loads the cursor file named by RELAY_HARVEST_CURSORS; listing and fetching are not needed here
func harvester() (harvestdom.HarvesterPort, error) {
	m := harvestmod.New(deps(), nil, nil)
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m.Ports().(harvestmod.Ports).Harvester, nil
}

func newCursorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := harvester()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOMAIN\tPLATFORM\tUSER\tNAME\tLAST")
			for _, c := range h.List() {
				last := c.LastIngested
				if last == "" {
					last = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Domain, c.Platform, c.UserID, c.AuthorName, last)
			}
			return tw.Flush()
		},
	}
}

func newCursorsAddCmd() *cobra.Command {
	var c harvestdom.Cursor
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Track a new source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := harvester()
			if err != nil {
				return err
			}
			if err := h.Add(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tracking %s\n", c.Key())
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Domain, "domain", "kemono.cr", "content host")
	cmd.Flags().StringVar(&c.Platform, "platform", "", "service name, e.g. patreon")
	cmd.Flags().StringVar(&c.UserID, "user", "", "creator id on the service")
	cmd.Flags().StringVar(&c.AuthorName, "name", "", "display name; filled from the profile when empty")
	_ = cmd.MarkFlagRequired("platform")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
