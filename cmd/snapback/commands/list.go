package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/internal/backup"
	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
)

var (
	listJSON        bool
	listInteractive bool
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&listInteractive, "interactive", "i", false, "Pick a backup interactively and print its path")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [TARGET_DIR]",
	Short: "List existing backups",
	Long: `List the timestamped backups under TARGET_DIR, most recent first,
with the number of files and their total size.

Without TARGET_DIR the default backup directory is used.`,
	Example: `  # List backups in the default location
  snapback list

  # List backups on another disk as JSON
  snapback list /mnt/usb --json

  # Pick a backup and cd into it
  cd "$(snapback list -i)"

  See Also: snapback verify`,
	Args: userArgs(cobra.MaximumNArgs(1)),
	RunE: runList,
}

// listEntryOutput represents a single backup in list output.
type listEntryOutput struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	Files     int       `json:"files"`
	Dirs      int       `json:"dirs"`
	Size      int64     `json:"size"`
}

// listOutput represents the JSON output for list.
type listOutput struct {
	Target  string            `json:"target"`
	Backups []listEntryOutput `json:"backups"`
}

// pickBackup runs the interactive finder; replaced in tests.
var pickBackup = func(entries []listEntryOutput) (int, error) {
	return fuzzyfinder.Find(
		entries,
		func(i int) string {
			return entries[i].Name
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			e := entries[i]
			return fmt.Sprintf("Created: %s\nFiles:   %d\nDirs:    %d\nSize:    %s\n\nPath:\n%s",
				e.CreatedAt.Format(time.RFC1123),
				e.Files,
				e.Dirs,
				formatSize(e.Size),
				e.Path,
			)
		}),
	)
}

func runList(cmd *cobra.Command, args []string) error {
	logger := logging.FromContext(cmd.Context())

	var base string
	if len(args) == 1 {
		base = args[0]
	} else {
		store, err := newStore(logger)
		if err != nil {
			return errors.NewSystemError(err, "Pass TARGET_DIR explicitly")
		}
		base = store.ReadDefaultTarget()
	}

	entries, err := backup.List(base)
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.NewSystemError(errors.Wrapf(err, "listing backups in %s", base), "")
	}

	out := listOutput{Target: base, Backups: make([]listEntryOutput, 0, len(entries))}
	for _, e := range entries {
		s, err := backup.Measure(e.Path)
		if err != nil {
			logger.Warn("could not measure backup", "path", e.Path, "err", err)
		}
		out.Backups = append(out.Backups, listEntryOutput{
			Name:      e.Name,
			Path:      e.Path,
			CreatedAt: e.CreatedAt,
			Files:     s.Files,
			Dirs:      s.Dirs,
			Size:      s.Size,
		})
	}

	w := cmd.OutOrStdout()
	switch {
	case listJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case listInteractive:
		return outputListInteractive(w, out)
	default:
		return outputListTabular(w, out)
	}
}

func outputListInteractive(w io.Writer, out listOutput) error {
	if len(out.Backups) == 0 {
		return errors.NewUserError(errors.Wrapf(backup.ErrNoBackupsFound, "in %s", out.Target), "")
	}

	idx, err := pickBackup(out.Backups)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return errors.Wrap(err, "interactive selection failed")
	}

	fmt.Fprintln(w, out.Backups[idx].Path)
	return nil
}

func outputListTabular(w io.Writer, out listOutput) error {
	if len(out.Backups) == 0 {
		fmt.Fprintf(w, "No backups found in %s\n", out.Target)
		return nil
	}

	fmt.Fprintf(w, "Backups in %s:\n\n", out.Target)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFILES\tDIRS\tSIZE")
	for _, b := range out.Backups {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", b.Name, b.Files, b.Dirs, formatSize(b.Size))
	}
	return tw.Flush()
}
