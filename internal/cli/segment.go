package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yescode/quotaline/internal/collector"
	"github.com/yescode/quotaline/internal/config"
	"github.com/yescode/quotaline/internal/logging"
	"github.com/yescode/quotaline/internal/metrics"
	"github.com/yescode/quotaline/internal/models"
	"github.com/yescode/quotaline/internal/segment"
)

// fetcherOptions are appended to every fetcher the commands build.
var fetcherOptions []collector.Option

// loadConfig reads the configuration named by --config. A missing file
// yields the defaults.
func loadConfig() (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(config.ResolvePath(globalFlags.Config))
	cfg, err := loader.LoadOrDefault()
	if err != nil {
		return nil, nil, err
	}
	if globalFlags.Verbose {
		cfg.Debug = true
	}
	return loader, cfg, nil
}

// newLogger writes diagnostics to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) *logging.Logger {
	return segment.NewLogger(cfg, logging.WithOutput(cmd.ErrOrStderr()))
}

func newSegment(cfg *config.Config, logger *logging.Logger, m *metrics.Metrics) *segment.Segment {
	return segment.FromConfig(cfg, logger, m, fetcherOptions...)
}

func newFetcher(cfg *config.Config, logger *logging.Logger) *collector.Fetcher {
	return collector.NewFetcher(append([]collector.Option{
		collector.WithUTLS(cfg.Transport.UTLS),
		collector.WithLogger(logger),
	}, fetcherOptions...)...)
}

// writeResult prints one collection. Nothing is printed when the segment
// produced no output.
func writeResult(w io.Writer, result models.SegmentResult, ok bool) error {
	if !ok {
		return nil
	}
	if globalFlags.JSON {
		return json.NewEncoder(w).Encode(result)
	}
	_, err := fmt.Fprintf(w, "%s %s\n", result.Primary, result.Secondary)
	return err
}
