package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/snapback/internal/config"
	"github.com/thoreinstein/snapback/internal/editor"
	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/paths"
	"github.com/thoreinstein/snapback/pkg/fileutil"
)

// configFormat holds the value of the --format flag.
var configFormat string

func init() {
	configCmd.PersistentFlags().StringVar(&configFormat, "format", "yaml", "output format: yaml, toml, json")
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage snapback settings",
	Long: `Manage snapback settings stored in $XDG_CONFIG_HOME/snapback/settings.yaml.

Without a subcommand, lists the effective settings. The default backup
directory is not a setting; change it with 'snapback -t'.`,
	Example: `  # List all settings
  snapback config

  # Show settings as TOML
  snapback config list --format toml

  # Use a larger copy buffer
  snapback config set chunk_size 65536

See Also: snapback config path`,
	Args: userArgs(cobra.NoArgs),
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a setting",
	Long:  `Print the effective value of one setting.`,
	Example: `  snapback config get fallback_target

See Also: snapback config set, snapback config list`,
	Args: userArgs(cobra.ExactArgs(1)),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long: `Set a setting in the settings file, creating the file if needed.

The value is validated before anything is written.`,
	Example: `  snapback config set sort_entries false
  snapback config set fallback_target /mnt/backup

See Also: snapback config get, snapback config list`,
	Args: userArgs(cobra.ExactArgs(2)),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Long:  `List the effective settings in YAML, TOML or JSON format.`,
	Example: `  snapback config list --format json

See Also: snapback config get, snapback config set`,
	Args: userArgs(cobra.NoArgs),
	RunE: runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Show where settings are stored",
	Long:        `Print the settings file and the default backup directory file locations.`,
	Args:        userArgs(cobra.NoArgs),
	Annotations: map[string]string{annotationSettings: settingsOptional},
	RunE:        runConfigPath,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open settings in $EDITOR",
	Long: `Open the settings file in your default editor.

Uses $EDITOR, then $VISUAL, falling back to nano or vi. A missing settings
file is created with the default values first. The file is validated again
after the editor exits.`,
	Example: `  # Open settings in default editor
  snapback config edit

  # Open with specific editor
  EDITOR=nano snapback config edit

See Also: snapback config list`,
	Args:        userArgs(cobra.NoArgs),
	Annotations: map[string]string{annotationSettings: settingsOptional},
	RunE:        runConfigEdit,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	v, err := config.Get(settings, args[0])
	if err != nil {
		return errors.NewUserError(err, fmt.Sprintf("Known settings: %v", config.Keys()))
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := config.Set(settingsFile(), key, value); err != nil {
		var pathErr *config.PathError
		var valueErr *config.ValueError
		switch {
		case errors.Is(err, config.ErrUnknownKey):
			return errors.NewUserError(err, fmt.Sprintf("Known settings: %v", config.Keys()))
		case errors.As(err, &pathErr), errors.As(err, &valueErr), errors.Is(err, config.ErrVersionTooLow):
			return errors.NewUserError(err, "")
		default:
			return errors.NewSystemError(err, "")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	return writeSettings(cmd.OutOrStdout(), settings, configFormat)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "settings:       %s\n", settingsFile())

	store, err := newStore(nil)
	if err != nil {
		return errors.NewSystemError(err, "Set HOME so the default backup directory can be stored")
	}
	fmt.Fprintf(w, "default target: %s\n", store.Path())
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := settingsFile()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "creating settings directory"), "")
		}
		if err := fileutil.AtomicWriteYAML(path, config.Defaults(), 0o644); err != nil {
			return errors.NewSystemError(err, "")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
	if err := editor.Open(path, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to an installed editor")
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return errors.NewUserError(err, "Run 'snapback config edit' again to fix the settings file")
	}
	return nil
}

// settingsFile returns the file config set writes to.
func settingsFile() string {
	if settingsPath != "" {
		return settingsPath
	}
	if used := config.FileUsed(); used != "" {
		return used
	}
	return paths.SettingsFile()
}

func writeSettings(w io.Writer, s *config.Settings, format string) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(s)
	case "toml":
		data, err = toml.Marshal(s)
	case "json":
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format), "Use --format yaml, toml or json")
	}
	if err != nil {
		return errors.Wrap(err, "marshaling settings")
	}

	_, err = w.Write(data)
	return err
}
