// Package commands implements the CLI commands for snapback.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/snapback/cmd"
	"github.com/thoreinstein/snapback/internal/backup"
	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/logging"
	"github.com/thoreinstein/snapback/internal/target"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// settingsPath holds the value of the --settings flag.
var settingsPath string

// targetFlag holds the value of the -t flag.
var targetFlag string

// settings are the effective tool settings, loaded on initialization.
var settings = config.Defaults()

// settingsLoadErr holds any error that occurred during settings loading.
var settingsLoadErr error

// newStore builds the default-target store; replaced in tests.
var newStore = func(logger *slog.Logger) (*target.Store, error) {
	return target.NewStore(
		target.WithFallback(settings.FallbackTarget),
		target.WithLogger(logger),
	)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default from settings)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"append logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "",
		"settings file (default $XDG_CONFIG_HOME/snapback/settings.yaml)")

	rootCmd.Flags().StringVarP(&targetFlag, "target", "t", "",
		"set the default backup directory and exit without backing up")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("snapback version {{.Version}}\n")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewUserError(err, "Run 'snapback --help' for usage")
	})

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	s, err := config.Load(settingsPath)
	settingsLoadErr = err
	if err == nil {
		settings = s
	}
}

var rootCmd = &cobra.Command{
	Use:   "snapback [-t TARGET_DIR] SOURCE_DIR",
	Short: "Copy a directory into a fresh timestamped backup",
	Long: `snapback copies SOURCE_DIR into a new directory named
"Backup YYYY-MM-DD HH-MM-SS" under the default backup directory.

Regular files keep their permission bits. Symlinks, devices, sockets and
pipes are skipped. Failures on individual entries are reported but never
stop the backup.

The default backup directory is read from ~/.config/backup_tool.conf and
falls back to /media/pi/piBackup. Use -t to change it; -t only updates the
setting and does not run a backup.`,
	Example: `  # Back up a directory to the default location
  snapback ~/projects

  # Change the default backup directory
  snapback -t /mnt/usb

  # Show what happens
  snapback -vv ~/projects

  See Also: snapback list, snapback verify, snapback config`,
	Args: rootArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkSettings(cmd)
	},
	RunE: runBackup,
}

// rootArgs requires SOURCE_DIR unless -t is given.
func rootArgs(_ *cobra.Command, args []string) error {
	switch {
	case len(args) > 1:
		return errors.NewUserError(errors.Newf("expected one source directory, got %d arguments", len(args)),
			"Quote paths that contain spaces")
	case len(args) == 0 && targetFlag == "":
		return errors.NewUserError(errors.New("missing source directory"),
			"Usage: snapback [-t TARGET_DIR] SOURCE_DIR")
	}
	return nil
}

// Commands annotated with annotationSettings: settingsOptional run even
// when the settings file is missing or invalid.
const (
	annotationSettings = "snapback/settings"
	settingsOptional   = "optional"
)

// checkSettings reports a settings file that failed to load or validate.
func checkSettings(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	if cmd.Annotations[annotationSettings] == settingsOptional {
		return nil
	}
	if settingsLoadErr != nil {
		return errors.NewUserError(settingsLoadErr, "Fix the settings file or run 'snapback config path' to locate it")
	}
	return nil
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("SNAPBACK_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logFormat
	if format == "" {
		format = settings.LogFormat
	}
	switch logging.Format(format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return errors.NewUserError(errors.Newf("unknown log format %q", format), "Use --log-format text or json")
	}

	opts := &slog.HandlerOptions{Level: level}
	handlers := []slog.Handler{logging.NewFormatHandler(cmd.ErrOrStderr(), logging.Format(format), opts)}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, logging.NewFormatHandler(f, logging.FormatJSON, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func runBackup(cmd *cobra.Command, args []string) error {
	logger := logging.FromContext(cmd.Context())
	w := cmd.OutOrStdout()

	store, err := newStore(logger)
	if err != nil {
		return errors.NewSystemError(err, "Set HOME so the default backup directory can be stored")
	}

	o := backup.NewOrchestrator(store,
		backup.WithLogger(logger),
		backup.WithChunkSize(settings.ChunkSize),
		backup.WithSortEntries(settings.SortEntries),
	)

	if targetFlag != "" {
		return runSetTarget(w, o, args, logger)
	}

	source := args[0]
	result, err := o.Run(backup.Request{Source: source})
	if err != nil {
		return runError(err)
	}

	if !quiet {
		fmt.Fprintf(w, "Backing up '%s' to '%s'\n", source, result.Root)
	}
	return reportResult(w, result)
}

// runSetTarget handles -t: resolve, persist, and stop.
func runSetTarget(w io.Writer, o *backup.Orchestrator, args []string, logger *slog.Logger) error {
	resolved, err := resolveTarget(targetFlag)
	if err != nil {
		return errors.NewUserError(err, "Make sure the backup directory exists before setting it")
	}
	if len(args) > 0 {
		logger.Warn("source directory ignored: -t only updates the default backup directory", "source", args[0])
	}

	result, err := o.Run(backup.Request{TargetBase: resolved, OverrideDefault: true})
	if err != nil {
		return runError(err)
	}
	if !quiet {
		fmt.Fprintf(w, "Updated default backup directory to: %s\n", result.TargetBase)
	}
	return nil
}

// resolveTarget returns the canonical absolute form of dir, which must exist.
func resolveTarget(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "resolving %s", dir), errors.ErrInvalidTarget)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "resolving %s", dir), errors.ErrInvalidTarget)
	}
	return resolved, nil
}

// runError maps an orchestrator error to an exit error.
func runError(err error) error {
	switch {
	case errors.Is(err, errors.ErrInvalidSource):
		return errors.NewUserError(err, "SOURCE_DIR must be an existing directory")
	case errors.Is(err, errors.ErrConfigWrite):
		return errors.NewSystemError(err, "Check permissions on ~/.config")
	case errors.Is(err, errors.ErrCreateRoot):
		return errors.NewSystemError(err, "Check that the backup directory is mounted and writable")
	default:
		return errors.NewSystemError(err, "")
	}
}

func reportResult(w io.Writer, result *backup.Result) error {
	c := result.Counts()
	if result.Status == backup.StatusSuccess {
		if !quiet {
			fmt.Fprintf(w, "Copied %d files and %d directories", c.Files, c.Directories)
			if c.Skipped > 0 {
				fmt.Fprintf(w, ", skipped %d", c.Skipped)
			}
			fmt.Fprintln(w)
			color.New(color.FgGreen).Fprintln(w, "Backup completed successfully!")
		}
		return nil
	}

	fmt.Fprintf(w, "Backup completed with %d failed entries:\n", c.Failed)
	for _, o := range result.Failed() {
		fmt.Fprintf(w, "  %s: %v\n", o.Path, o.Err)
	}
	return errors.NewPartialError(c.Failed)
}

// PrintError writes err and any suggestion to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "Error: ")
	fmt.Fprintln(w, err.Error())

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s\n", exitErr.Suggestion)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
