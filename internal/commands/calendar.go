package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/feedwatch/internal/calendar"
	"github.com/dwsmith1983/feedwatch/internal/config"
)

// NewCalendarCmd creates the calendar command.
func NewCalendarCmd() *cobra.Command {
	var (
		dir  string
		date string
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show period ends and business days around a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalendar(cmd.Context(), cmd.OutOrStdout(), dir, date)
		},
	}
	cmd.Flags().StringVar(&dir, "config", ".", "directory holding "+config.FileName)
	cmd.Flags().StringVar(&date, "date", "", "reference date as YYYY-MM-DD (default: today)")
	return cmd
}

func runCalendar(ctx context.Context, out io.Writer, dir, rawDate string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ref := time.Now()
	if rawDate != "" {
		d, err := time.Parse(time.DateOnly, rawDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: want YYYY-MM-DD", rawDate)
		}
		ref = d
	}
	y, m, d := ref.Date()
	ref = calendar.Date(y, m, d)

	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(out, "Reference date %s\n", ref.Format(time.DateOnly))
	printDay(out, "nearest month end", calendar.NearestMonthEnd(ref))
	printDay(out, "nearest quarter end", calendar.NearestQuarterEnd(ref))
	printDay(out, "nearest year end", calendar.NearestYearEnd(ref))

	cfg, err := config.Load(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	src, err := openSources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening provider: %w", err)
	}
	defer src.close()

	days, err := src.days.Lookup(ctx, ref)
	if err != nil {
		return fmt.Errorf("resolving business days: %w", err)
	}
	printDay(out, "current business day", days.Current)
	printDay(out, "previous business day", days.Previous)
	printDay(out, "next business day", days.Next)
	return nil
}

func printDay(out io.Writer, label string, day time.Time) {
	_, _ = fmt.Fprintf(out, "  %-22s %s\n", label, day.Format(time.DateOnly))
}
