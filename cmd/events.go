package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/calboard/internal/server"
)

type eventsOptions struct {
	configPath string
	wall       bool
	days       int
	debug      bool
}

func newEventsCmd() *cobra.Command {
	var opts eventsOptions

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the aggregated agenda once as JSON",
		Long: `Fetch all configured calendars once and print the merged agenda as JSON.

By default the flat list over [now, now+days) is printed, the same document
GET /api/events returns. With --wall the today/upcoming view of GET /api/wall
is printed instead.

Calendars that fail are listed in the "errors" field and do not change the
exit status. A configuration error exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runEvents(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file (default: $"+configPathEnv+")")
	cmd.Flags().BoolVar(&opts.wall, "wall", false, "Print the today/upcoming wall view")
	cmd.Flags().IntVar(&opts.days, "days", 0, "Number of days to include (default: 30, or 7 with --wall)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd
}

func runEvents(ctx context.Context, opts eventsOptions, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, opts.debug, "")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	sc, err := server.NewServerContext(ctx, cfg, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	var report any
	if opts.wall {
		report, err = sc.WallReport(ctx, opts.days)
	} else {
		report, err = sc.FlatReport(ctx, opts.days)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
