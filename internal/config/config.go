// Package config provides settings management for snapback using Viper.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/snapback/internal/errors"
	"github.com/thoreinstein/snapback/internal/paths"
	"github.com/thoreinstein/snapback/pkg/fileutil"
)

// EnvPrefix prefixes environment variable overrides (SNAPBACK_CHUNK_SIZE...).
const EnvPrefix = "SNAPBACK"

// Setting keys.
const (
	KeyVersion        = "version"
	KeyFallbackTarget = "fallback_target"
	KeyChunkSize      = "chunk_size"
	KeySortEntries    = "sort_entries"
	KeyLogFormat      = "log_format"
)

// Defaults.
const (
	DefaultVersion        = 1
	DefaultFallbackTarget = "/media/pi/piBackup"
	DefaultChunkSize      = 4096
	DefaultSortEntries    = true
	DefaultLogFormat      = "text"
)

// ErrUnknownKey indicates a setting name that snapback does not recognize.
var ErrUnknownKey = errors.New("unknown setting")

// Settings represents the tool's own settings file.
type Settings struct {
	Version        int    `mapstructure:"version" yaml:"version" toml:"version" json:"version"`
	FallbackTarget string `mapstructure:"fallback_target" yaml:"fallback_target" toml:"fallback_target" json:"fallback_target"`
	ChunkSize      int    `mapstructure:"chunk_size" yaml:"chunk_size" toml:"chunk_size" json:"chunk_size"`
	SortEntries    bool   `mapstructure:"sort_entries" yaml:"sort_entries" toml:"sort_entries" json:"sort_entries"`
	LogFormat      string `mapstructure:"log_format" yaml:"log_format" toml:"log_format" json:"log_format"`
}

// Keys returns the recognized setting names in sorted order.
func Keys() []string {
	keys := []string{KeyVersion, KeyFallbackTarget, KeyChunkSize, KeySortEntries, KeyLogFormat}
	slices.Sort(keys)
	return keys
}

// Init resets Viper and installs the settings search path, environment
// binding and defaults. Call this once at application startup before accessing settings.
func Init() {
	viper.Reset()

	viper.SetConfigName("settings")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(paths.SettingsDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault(KeyVersion, DefaultVersion)
	viper.SetDefault(KeyFallbackTarget, DefaultFallbackTarget)
	viper.SetDefault(KeyChunkSize, DefaultChunkSize)
	viper.SetDefault(KeySortEntries, DefaultSortEntries)
	viper.SetDefault(KeyLogFormat, DefaultLogFormat)
}

// Load reads the settings file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default location and falls back to
// defaults when no file exists.
func Load(path string) (*Settings, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load: defaults apply
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(err, "settings file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading settings file")
		}
	}

	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "unmarshaling settings")
	}

	if errs := Validate(&s); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errs[0], "validating settings"), errors.ErrInvalidConfig)
	}
	return &s, nil
}

// FileUsed returns the settings file Viper loaded, or "" when running on
// defaults.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Set parses value for key, validates the result and writes it into the
// settings file at path, keeping any other keys already there.
func Set(path, key, value string) error {
	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	doc := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
		if doc == nil {
			doc = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return errors.Wrapf(err, "reading %s", path)
	}
	doc[key] = parsed

	s := Defaults()
	if err := decodeInto(s, doc); err != nil {
		return err
	}
	if errs := Validate(s); len(errs) > 0 {
		return errors.Mark(errs[0], errors.ErrInvalidConfig)
	}

	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating settings directory")
	}
	return fileutil.AtomicWriteYAML(path, doc, 0o644)
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	return &Settings{
		Version:        DefaultVersion,
		FallbackTarget: DefaultFallbackTarget,
		ChunkSize:      DefaultChunkSize,
		SortEntries:    DefaultSortEntries,
		LogFormat:      DefaultLogFormat,
	}
}

// Get returns the value of key from s.
func Get(s *Settings, key string) (any, error) {
	switch key {
	case KeyVersion:
		return s.Version, nil
	case KeyFallbackTarget:
		return s.FallbackTarget, nil
	case KeyChunkSize:
		return s.ChunkSize, nil
	case KeySortEntries:
		return s.SortEntries, nil
	case KeyLogFormat:
		return s.LogFormat, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKey, "%q", key)
	}
}

func parseValue(key, value string) (any, error) {
	switch key {
	case KeyVersion, KeyChunkSize:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, &ValueError{Field: key, Value: value, Err: ErrNotInteger}
		}
		return n, nil
	case KeySortEntries:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, &ValueError{Field: key, Value: value, Err: ErrNotBool}
		}
		return b, nil
	case KeyFallbackTarget, KeyLogFormat:
		return value, nil
	default:
		return nil, errors.Wrapf(ErrUnknownKey, "%q", key)
	}
}

// decodeInto overlays doc onto s through a YAML round trip so that the
// struct tags used for the file also drive validation.
func decodeInto(s *Settings, doc map[string]any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return errors.Wrap(err, "decoding settings")
	}
	return nil
}
