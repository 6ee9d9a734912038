package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/errors"
)

// userArgs wraps a cobra argument validator so that violations exit as
// user errors.
func userArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.NewUserError(err, fmt.Sprintf("Usage: %s", cmd.UseLine()))
		}
		return nil
	}
}

// formatSize renders n bytes with a binary unit suffix.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
