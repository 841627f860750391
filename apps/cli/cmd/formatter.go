package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/config"
	"github.com/abdul-hamid-achik/httpui/packages/output"
)

// Formatter interface for report formatters
type Formatter interface {
	FormatReport(report *output.FileReport)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

var (
	_ Formatter = (*output.ConsoleFormatter)(nil)
	_ Formatter = (*output.JSONFormatter)(nil)
	_ Formatter = (*output.JUnitFormatter)(nil)
	_ Formatter = (*output.TAPFormatter)(nil)
)

func newFormatter(format string, w io.Writer, cfg *config.Config) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w)), nil
	case "junit":
		return output.NewJUnitFormatter(output.JUnitWithWriter(w)), nil
	case "tap":
		return output.NewTAPFormatter(output.TAPWithWriter(w)), nil
	case "console", "":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verboseFlag),
			output.WithNoColor(cfg.GetNoColor()),
			output.WithPrettyBody(cfg.GetPrettyBody()),
		), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use console, json, junit or tap)", format)
	}
}

func flush(f Formatter, d time.Duration) error {
	if flushable, ok := f.(Flushable); ok {
		if err := flushable.Flush(d); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}
	if noColorFlag {
		cfg = cfg.Merge(&config.Config{NoColor: config.BoolPtr(true)})
	}
	return cfg, nil
}
