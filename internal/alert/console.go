package alert

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dwsmith1983/feedwatch/pkg/types"
)

// ConsoleSink writes alerts to the terminal with color.
type ConsoleSink struct {
	out io.Writer
}

// NewConsoleSink creates a console sink writing to color.Output.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: color.Output}
}

// NewConsoleSinkTo creates a console sink writing to w.
func NewConsoleSinkTo(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

// Send writes an alert with color-coded severity.
func (s *ConsoleSink) Send(_ context.Context, alert types.Alert) error {
	var prefix string
	switch alert.Level {
	case types.AlertLevelError:
		prefix = color.RedString("[ERROR]")
	case types.AlertLevelWarning:
		prefix = color.YellowString("[WARN]")
	default:
		prefix = color.CyanString("[INFO]")
	}

	var err error
	if alert.Feed != "" {
		_, err = fmt.Fprintf(s.out, "%s [%s %s] %s\n", prefix, alert.Feed, alert.BusinessDate, alert.Message)
	} else {
		_, err = fmt.Fprintf(s.out, "%s %s\n", prefix, alert.Message)
	}
	return err
}
