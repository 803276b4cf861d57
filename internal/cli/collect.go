package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yescode/quotaline/internal/models"
)

var collectStdin bool

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect the quota segment once and print it",
	Long: `Resolve the API key, query today's usage and the account balance, and
print the two segment strings. Nothing is printed when the segment is
disabled or no API key is configured.

Example:
  quotaline collect
  echo '{"session_id":"abc"}' | quotaline collect --stdin --json`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().BoolVar(&collectStdin, "stdin", false, "Read statusline input JSON from stdin")
	RootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var input models.InputData
	if collectStdin {
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to decode statusline input: %w", err)
		}
	}

	seg := newSegment(cfg, newLogger(cmd, cfg), nil)
	result, ok := seg.Collect(commandContext(cmd), input)
	return writeResult(cmd.OutOrStdout(), result, ok)
}
