package paths

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/snapback/internal/errors"
)

// AppName names the settings directory under the XDG config home.
const AppName = "snapback"

// DefaultTargetFileName is the file holding the persisted default target,
// relative to the user's home directory.
const DefaultTargetFileName = ".config/backup_tool.conf"

// DefaultDirPerm is the permission for directories created by snapback
// (owner rwx, group and other rx).
const DefaultDirPerm = 0o755

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// lookupUser is swapped in tests.
var lookupUser = user.Current

// ResolveHome returns the invoking user's home directory. The user database
// is consulted first; $HOME (via os.UserHomeDir) is the fallback.
func ResolveHome() (string, error) {
	if u, err := lookupUser(); err == nil && u.HomeDir != "" {
		return u.HomeDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.Wrap(ErrHomeDirNotFound, "resolving home directory")
	}
	return home, nil
}

// DefaultTargetFile returns <home>/.config/backup_tool.conf.
func DefaultTargetFile() (string, error) {
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, filepath.FromSlash(DefaultTargetFileName)), nil
}

// SettingsDir returns the directory searched for settings.yaml:
// <XDG config home>/snapback.
func SettingsDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// SettingsFile returns the default settings file path.
func SettingsFile() string {
	return filepath.Join(SettingsDir(), "settings.yaml")
}

// EnsureDir creates path and any missing parents. A zero perm means DefaultDirPerm.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}
