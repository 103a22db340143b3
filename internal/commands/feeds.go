package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dwsmith1983/feedwatch/internal/config"
)

// NewFeedsCmd creates the feeds command.
func NewFeedsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "List the monitored pricing feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeeds(cmd.OutOrStdout(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "config", ".", "directory holding "+config.FileName)
	return cmd
}

func runFeeds(out io.Writer, dir string) error {
	reg, err := loadFeedRegistry(dir)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(out, "Feeds:")
	for _, d := range reg.List() {
		_, _ = fmt.Fprintf(out, "  %-15s eta %-6s %s\n", d.Name, d.ETA, d.Category)
		for _, g := range d.Checks.Completion {
			_, _ = fmt.Fprintf(out, "      completion %s %v\n", g.RunGroup, g.RunNames)
		}
	}
	return nil
}
