package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/snapback/internal/errors"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInit(t *testing.T) {
	Init()

	if viper.GetInt(KeyVersion) != 1 {
		t.Errorf("expected version default 1, got %d", viper.GetInt(KeyVersion))
	}
	if got := viper.GetString(KeyFallbackTarget); got != "/media/pi/piBackup" {
		t.Errorf("fallback_target default = %q", got)
	}
	if got := viper.GetInt(KeyChunkSize); got != 4096 {
		t.Errorf("chunk_size default = %d", got)
	}
	if !viper.GetBool(KeySortEntries) {
		t.Error("sort_entries should default to true")
	}
}

func TestLoad_NoSettingsFile(t *testing.T) {
	Init()

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no settings file should not error: %v", err)
	}
	if s == nil {
		t.Fatal("expected settings to be returned")
	}
}

func TestLoad_WithSettingsFile(t *testing.T) {
	path := writeSettings(t, "fallback_target: /mnt/usb\nchunk_size: 65536\nsort_entries: false\n")

	Init()
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Settings{
		Version:        1,
		FallbackTarget: "/mnt/usb",
		ChunkSize:      65536,
		SortEntries:    false,
		LogFormat:      "text",
	}
	if *s != want {
		t.Errorf("Load() = %+v, want %+v", *s, want)
	}
	if FileUsed() != path {
		t.Errorf("FileUsed() = %q, want %q", FileUsed(), path)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeSettings(t, "chunk_size: 1024\n")
	t.Setenv("SNAPBACK_CHUNK_SIZE", "8192")
	t.Setenv("SNAPBACK_LOG_FORMAT", "json")

	Init()
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.ChunkSize != 8192 {
		t.Errorf("ChunkSize = %d, want 8192 from environment", s.ChunkSize)
	}
	if s.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", s.LogFormat)
	}
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	Init()

	_, err := Load("/non/existent/path/settings.yaml")
	if err == nil {
		t.Error("Load() with non-existent explicit path should error")
	}
}

func TestLoad_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"version zero", "version: 0\n", ErrVersionTooLow},
		{"relative fallback", "fallback_target: backups\n", ErrNotAbsolute},
		{"zero chunk size", "chunk_size: 0\n", ErrOutOfRange},
		{"unknown log format", "log_format: xml\n", ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSettings(t, tt.content)

			Init()
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Load() error should be marked ErrInvalidConfig: %v", err)
			}
			if !strings.HasPrefix(err.Error(), "validating settings: ") {
				t.Errorf("Load() error = %q", err)
			}
		})
	}
}

func TestInit_ClearsPreviousState(t *testing.T) {
	fileA := writeSettings(t, "chunk_size: 512\n")

	Init()
	if _, err := Load(fileA); err != nil {
		t.Fatalf("first Load failed: %v", err)
	}

	Init()
	if viper.ConfigFileUsed() == fileA {
		t.Errorf("Init should forget the previously loaded file")
	}
	if got := viper.GetInt(KeyChunkSize); got != DefaultChunkSize {
		t.Errorf("chunk_size = %d after Init, want default", got)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if !slices.IsSorted(keys) {
		t.Errorf("Keys() not sorted: %v", keys)
	}
	s := Defaults()
	for _, k := range keys {
		if _, err := Get(s, k); err != nil {
			t.Errorf("Get(%q) error: %v", k, err)
		}
	}
	if _, err := Get(s, "nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(nope) error = %v, want ErrUnknownKey", err)
	}
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapback", "settings.yaml")

	if err := Set(path, KeyChunkSize, "8192"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := Set(path, KeySortEntries, "false"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc[KeyChunkSize] != 8192 || doc[KeySortEntries] != false {
		t.Errorf("settings file = %v", doc)
	}

	Init()
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.ChunkSize != 8192 || s.SortEntries {
		t.Errorf("Load() after Set = %+v", *s)
	}
}

func TestSet_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "colour", "blue", ErrUnknownKey},
		{"non-integer", KeyChunkSize, "big", ErrNotInteger},
		{"non-bool", KeySortEntries, "maybe", ErrNotBool},
		{"out of range", KeyChunkSize, "-1", ErrOutOfRange},
		{"relative path", KeyFallbackTarget, "rel/path", ErrNotAbsolute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")

			err := Set(path, tt.key, tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Set() error = %v, want %v", err, tt.wantErr)
			}
			if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
				t.Error("rejected Set must not write the file")
			}
		})
	}
}
