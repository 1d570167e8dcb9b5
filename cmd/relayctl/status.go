package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	perr "mediarelay/internal/platform/errors"
	opsdom "mediarelay/internal/services/api/ops/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type statusEnvelope struct {
	Code  perr.ErrorCode         `json:"code"`
	Error string                 `json:"error"`
	Data  *opsdom.StatusResponse `json:"data"`
}

func newStatusCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
		raw     bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show what a running relay process is doing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !strings.Contains(addr, "://") {
				addr = "http://" + addr
			}
			client := &http.Client{Timeout: timeout}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(addr, "/")+"/v1/status", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "status %s", addr)
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "read status")
			}

			var env statusEnvelope
			if err := json.Unmarshal(body, &env); err != nil {
				return perr.Wrapf(err, perr.ErrorCodeJSON, "decode status")
			}
			if resp.StatusCode != http.StatusOK || env.Data == nil {
				if err := perr.FromStatus(resp.StatusCode, "status"); err != nil && env.Error == "" {
					return err
				}
				return perr.Newf(perr.ErrorCodeRemote, "status: %s", env.Error)
			}

			out := cmd.OutOrStdout()
			if raw {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(env.Data)
			}
			writeStatus(out, *env.Data, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:4000", "ops API address of the process")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().BoolVar(&raw, "json", false, "print the raw status payload")
	return cmd
}

func writeStatus(w io.Writer, s opsdom.StatusResponse, now time.Time) {
	fmt.Fprintf(w, "service:   %s %s\n", s.Service, s.Version)
	fmt.Fprintf(w, "uptime:    %s (since %s)\n", time.Duration(s.Uptime)*time.Second, s.Started)
	if len(s.Modules) > 0 {
		fmt.Fprintf(w, "modules:   %s\n", strings.Join(s.Modules, ", "))
	}
	if s.Watcher != "" {
		fmt.Fprintf(w, "watcher:   %s\n", s.Watcher)
	}
	if h := s.Harvester; h != nil {
		fmt.Fprintf(w, "harvester: %d sources", h.Sources)
		if sw := h.LastSweep; sw != nil {
			fmt.Fprintf(w, ", last sweep %s (%d new, %d failed)",
				humanize.RelTime(sw.At, now, "ago", "from now"), sw.NewPosts, sw.Failed)
		}
		fmt.Fprintln(w)
	}
}
