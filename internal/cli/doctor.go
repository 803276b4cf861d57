package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yescode/quotaline/internal/collector"
	"github.com/yescode/quotaline/internal/config"
	"github.com/yescode/quotaline/internal/credential"
	qerrors "github.com/yescode/quotaline/internal/errors"
	"github.com/yescode/quotaline/internal/models"
	"github.com/yescode/quotaline/internal/segment"
)

// Check statuses.
const (
	CheckOK   = "OK"
	CheckWarn = "WARN"
	CheckFail = "FAIL"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose credential, configuration and endpoint issues",
	Long: `Check every stage of a collection and report what happened.

This command checks:
- Configuration file
- Which credential source wins (only a fingerprint is shown)
- The usage endpoints
- The balance endpoint

Example:
  quotaline doctor
  quotaline doctor --json`,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp  time.Time             `json:"timestamp"`
	Version    string                `json:"version"`
	ConfigPath string                `json:"config_path"`
	Checks     []DoctorCheck         `json:"checks"`
	Segment    *models.SegmentResult `json:"segment,omitempty"`
}

// DoctorCheck represents a single diagnostic check
type DoctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	report := buildDoctorReport(cmd)
	if globalFlags.JSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}
	return outputDoctorReportTable(cmd.OutOrStdout(), report)
}

func buildDoctorReport(cmd *cobra.Command) DoctorReport {
	loader := config.NewLoader(config.ResolvePath(globalFlags.Config))
	report := DoctorReport{
		Timestamp:  time.Now().UTC(),
		Version:    Version,
		ConfigPath: loader.Path(),
	}

	cfg, check := checkConfiguration(loader)
	report.Checks = append(report.Checks, check)

	if !cfg.Enabled {
		report.Checks = append(report.Checks, DoctorCheck{Name: "Segment", Status: CheckWarn, Message: "disabled by config (enabled: false)"})
	}

	resolver := credential.NewResolver(credential.OSSources(cfg.Credentials.SettingsPath, cfg.Credentials.KeyFile))
	cred, source, ok := resolver.ResolveWithSource()
	if !ok {
		report.Checks = append(report.Checks, DoctorCheck{
			Name:    "Credential",
			Status:  CheckFail,
			Message: "no API key found; set YESCODE_API_KEY or add env.ANTHROPIC_AUTH_TOKEN to " + cfg.Credentials.SettingsPath,
		})
		return report
	}
	report.Checks = append(report.Checks, DoctorCheck{
		Name:    "Credential",
		Status:  CheckOK,
		Message: fmt.Sprintf("%s (fingerprint %s)", source, cred.Fingerprint()),
	})

	if globalFlags.Verbose {
		cfg.Debug = true
	}
	ctx := commandContext(cmd)
	fetcher := newFetcher(cfg, newLogger(cmd, cfg))

	var usage *collector.UsageDetection
	if d, ok := fetcher.DetectUsage(ctx, cred); ok {
		usage = &d
		report.Checks = append(report.Checks, DoctorCheck{Name: "Usage", Status: CheckOK, Message: d.Endpoint.URL})
	} else {
		report.Checks = append(report.Checks, DoctorCheck{
			Name:    "Usage",
			Status:  CheckFail,
			Message: fmt.Sprintf("all %d usage endpoints failed (rerun with --verbose for details)", len(fetcher.Catalog().Usage)),
		})
	}

	var balance *models.BalanceResponse
	if b, ok := fetcher.FetchBalance(ctx, cred); ok {
		balance = &b
		report.Checks = append(report.Checks, DoctorCheck{Name: "Balance", Status: CheckOK, Message: fetcher.Catalog().Balance.URL})
	} else {
		report.Checks = append(report.Checks, DoctorCheck{Name: "Balance", Status: CheckFail, Message: fetcher.Catalog().Balance.URL + " failed"})
	}

	result := segment.Build(usage, balance, cfg.Display.Secondary)
	report.Segment = &result
	return report
}

// checkConfiguration loads the config. The returned config is always usable:
// the defaults stand in when the file is missing or broken.
func checkConfiguration(loader *config.Loader) (*config.Config, DoctorCheck) {
	cfg, err := loader.Load()
	if err == nil {
		return cfg, DoctorCheck{Name: "Config", Status: CheckOK, Message: "loaded " + loader.Path()}
	}

	var notFound *qerrors.ErrConfigNotFound
	if errors.As(err, &notFound) {
		return config.Default(), DoctorCheck{Name: "Config", Status: CheckOK, Message: "no config file, using defaults"}
	}
	return config.Default(), DoctorCheck{Name: "Config", Status: CheckWarn, Message: err.Error() + "; using defaults"}
}

func outputDoctorReportTable(out io.Writer, report DoctorReport) error {
	fmt.Fprintln(out, "=== Quotaline Doctor Report ===")
	fmt.Fprintf(out, "Generated: %s\n\n", report.Timestamp.Format(time.RFC3339))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, check := range report.Checks {
		statusIcon := "✓"
		switch check.Status {
		case CheckFail:
			statusIcon = "✗"
		case CheckWarn:
			statusIcon = "!"
		}
		fmt.Fprintf(w, "%s %s:\t%s\n", statusIcon, check.Name, check.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if report.Segment != nil {
		fmt.Fprintf(out, "\nSegment: %s %s (status %s)\n",
			report.Segment.Primary, report.Segment.Secondary, report.Segment.Status())
	}
	return nil
}
