package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/feedwatch/internal/calendar"
	"github.com/dwsmith1983/feedwatch/internal/config"
	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var (
		dir  string
		date string
	)

	cmd := &cobra.Command{
		Use:   "status [feed...]",
		Short: "Show feed status for a business date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), dir, date, args)
		},
	}
	cmd.Flags().StringVar(&dir, "config", ".", "directory holding "+config.FileName)
	cmd.Flags().StringVar(&date, "date", "", "business date as YYYYMMDD (default: current business day)")
	return cmd
}

func runStatus(ctx context.Context, out io.Writer, dir, rawDate string, names []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	src, err := openSources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening provider: %w", err)
	}
	defer src.close()

	svc, cleanup, err := newService(cfg, src, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var date time.Time
	if rawDate != "" {
		if date, err = parseDate(rawDate); err != nil {
			return err
		}
	} else {
		if date, err = calendar.New(src.days).CurrentBusinessDay(ctx, time.Now()); err != nil {
			return fmt.Errorf("resolving business day: %w", err)
		}
	}

	reports, err := svc.FeedStatuses(ctx, names, date)
	if err != nil {
		return err
	}
	printReports(out, date, reports)
	return nil
}

func printReports(out io.Writer, date time.Time, reports []types.FeedReport) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(out, "Feed status for %s:\n\n", date.Format(time.DateOnly))

	for _, r := range reports {
		line := fmt.Sprintf("  %-15s %-12s as of %s  eta %s  %s",
			r.Feed, r.Status, calendar.FormatTimeMillis(r.AsOf), r.NormalETA.Format("15:04"), r.Category)
		if r.Failure != "" {
			line += "  (" + r.Failure + ")"
		}
		_, _ = statusColor(r.Status).Fprintln(out, line)
	}
	_, _ = fmt.Fprintln(out)
}

func statusColor(s types.FeedStatus) *color.Color {
	switch s {
	case types.StatusPriced:
		return color.New(color.FgGreen)
	case types.StatusError, types.StatusException:
		return color.New(color.FgRed)
	case types.StatusDelayed:
		return color.New(color.FgYellow)
	case types.StatusInProgress:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Reset)
	}
}
