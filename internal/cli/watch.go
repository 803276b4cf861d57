package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yescode/quotaline/internal/api"
	"github.com/yescode/quotaline/internal/config"
	"github.com/yescode/quotaline/internal/metrics"
	"github.com/yescode/quotaline/internal/models"
)

var watchFlags struct {
	interval time.Duration
	listen   string
}

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-collect the segment periodically and on credential changes",
	Long: `Collect the quota segment on an interval, and immediately whenever the
Claude settings file, the key file or the config file changes. Each result
is printed on its own line. With --listen (or watch.listen in the config)
the latest result is also served over HTTP:

  GET /segment   latest segment as JSON
  GET /health    liveness and time of the last collection
  GET /metrics   Prometheus metrics

Example:
  quotaline watch --interval 30s --listen 127.0.0.1:9464`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchFlags.interval, "interval", 0, "Collection interval (overrides watch.interval)")
	watchCmd.Flags().StringVar(&watchFlags.listen, "listen", "", "HTTP listen address (overrides watch.listen)")
	RootCmd.AddCommand(watchCmd)
}

// effectiveConfig copies cfg with the command-line overrides applied.
func effectiveConfig(cfg *config.Config) *config.Config {
	c := *cfg
	if globalFlags.Verbose {
		c.Debug = true
	}
	if watchFlags.interval > 0 {
		c.Watch.Interval = watchFlags.interval
	}
	if watchFlags.listen != "" {
		c.Watch.Listen = watchFlags.listen
	}
	return &c
}

// credentialWatch re-collects when the settings or key file of cfg changes.
// The returned cancel stops it.
func credentialWatch(ctx context.Context, cfg *config.Config, changed chan<- struct{}) (context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	err := config.WatchFiles(ctx, []string{cfg.Credentials.SettingsPath, cfg.Credentials.KeyFile}, func(string) {
		notify(changed)
	})
	return cancel, err
}

func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	loader, loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := effectiveConfig(loaded)

	ctx, stop := api.NotifyContext(commandContext(cmd))
	defer stop()

	startLogger := newLogger(cmd, cfg)
	logger := startLogger
	m := metrics.NewMetrics("quotaline")
	seg := newSegment(cfg, logger, m)
	board := &api.Board{}
	out := cmd.OutOrStdout()

	serverErr := make(chan error, 1)
	if cfg.Watch.Listen != "" {
		srv := api.NewServer(board, m, startLogger)
		go func() { serverErr <- srv.ListenAndServe(ctx, cfg.Watch.Listen) }()
	}

	credChanged := make(chan struct{}, 1)
	stopCredWatch, err := credentialWatch(ctx, cfg, credChanged)
	if err != nil {
		startLogger.Warn("credential file watching unavailable", "error", err.Error())
	}
	defer func() { stopCredWatch() }()

	reloaded := make(chan struct{}, 1)
	loader.SetOnChange(func(*config.Config) { notify(reloaded) })
	if err := loader.Watch(ctx, func(err error) {
		startLogger.Warn("config reload failed, keeping previous config", "error", err.Error())
	}); err != nil {
		startLogger.Warn("config file watching unavailable", "error", err.Error())
	}

	collect := func() error {
		result, ok := seg.Collect(ctx, models.InputData{})
		board.Publish(result, ok, time.Now())
		if err := writeResult(out, result, ok); err != nil {
			return fmt.Errorf("failed to write segment: %w", err)
		}
		return nil
	}

	if err := collect(); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Watch.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-serverErr:
			if err != nil {
				return err
			}
		case <-reloaded:
			next := effectiveConfig(loader.Get())
			if next.Watch.Interval != cfg.Watch.Interval {
				ticker.Reset(next.Watch.Interval)
			}
			if next.Credentials != cfg.Credentials {
				stopCredWatch()
				if stopCredWatch, err = credentialWatch(ctx, next, credChanged); err != nil {
					logger.Warn("credential file watching unavailable", "error", err.Error())
				}
			}
			cfg = next
			logger = newLogger(cmd, cfg)
			seg = newSegment(cfg, logger, m)
			if err := collect(); err != nil {
				return err
			}
		case <-credChanged:
			if err := collect(); err != nil {
				return err
			}
		case <-ticker.C:
			if err := collect(); err != nil {
				return err
			}
		}
	}
}
