package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/backup"
	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

var verifyJSON bool

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify BACKUP_DIR SOURCE_DIR",
	Short: "Compare a backup against its source",
	Long: `Compare every regular file under SOURCE_DIR with its copy under
BACKUP_DIR by SHA-256 digest and permission bits.

Entries that snapback does not copy (symlinks, devices, sockets, pipes) are
ignored. Exits with status 3 when any file is missing or differs.`,
	Example: `  # Check the most recent backup
  snapback verify "/mnt/usb/Backup 2024-11-20 10-00-00" ~/projects

  See Also: snapback list`,
	Args: userArgs(cobra.ExactArgs(2)),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, source := args[0], args[1]
	logger := logging.FromContext(cmd.Context())

	report, err := backup.Verify(source, root, logger)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidSource) {
			return errors.NewUserError(err, "SOURCE_DIR must be an existing directory")
		}
		return errors.NewUserError(err, "Run 'snapback list' to find backup directories")
	}

	w := cmd.OutOrStdout()
	if verifyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		for _, p := range report.Problems {
			fmt.Fprintf(w, "  %s: %s\n", p.Path, p.Reason)
		}
		fmt.Fprintf(w, "Checked %d entries, %d problems\n", report.Checked, len(report.Problems))
	}

	if !report.OK() {
		return &errors.ExitError{
			Err:        errors.Newf("%d entries do not match the source", len(report.Problems)),
			Code:       errors.ExitPartial,
			Suggestion: "Run a new backup to capture the current source",
		}
	}
	return nil
}
