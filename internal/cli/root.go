package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"github.com/yescode/quotaline/internal/config"
)

// Set at build time with -ldflags "-X .../internal/cli.Version=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// GlobalFlags contains global flags available for all commands
type GlobalFlags struct {
	Config  string
	Verbose bool
	JSON    bool
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "quotaline",
	Short: "Quotaline - YesCode usage and balance for your statusline",
	Long: `Quotaline renders the "quota" statusline segment: today's spend and the
remaining balance of a YesCode account, as two short strings.

Usage:
  quotaline [command] [flags]

Available Commands:
  collect    Collect the segment once and print it
  watch      Re-collect on an interval and on credential changes
  doctor     Diagnose credential, config and endpoint issues
  version    Print version information

Flags:
  --config string   Path to configuration file (default "~/.claude/ccline/quota.yaml")
  --verbose         Enable debug diagnostics on stderr
  --json            Output in JSON format

Use "quotaline [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var initOnce sync.Once

// InitCLI registers the global flags and the version command. Subcommands
// register themselves in init. Safe to call more than once.
func InitCLI() {
	initOnce.Do(initRoot)
}

// ExecuteWithErrorCode runs the root command and returns the process exit code.
func ExecuteWithErrorCode(args []string) int {
	RootCmd.SetArgs(args)

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func initRoot() {
	RootCmd.PersistentFlags().StringVar(&globalFlags.Config, "config", config.ResolvePath(""), "Path to configuration file")
	RootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable debug diagnostics on stderr")
	RootCmd.PersistentFlags().BoolVar(&globalFlags.JSON, "json", false, "Output in JSON format")

	RootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Quotaline",
	Run: func(cmd *cobra.Command, args []string) {
		info := GetVersionInfo()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Quotaline Version:", info.Version)
		fmt.Fprintln(out, "Go Version:", info.GoVersion)
		fmt.Fprintln(out, "OS/Arch:", info.OS+"/"+info.Arch)
		fmt.Fprintln(out, "Build Date:", info.BuildDate)
	},
}

var globalFlags GlobalFlags

// VersionInfo contains version information
type VersionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	BuildDate string `json:"build_date"`
}

// GetVersionInfo returns version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		BuildDate: BuildDate,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
