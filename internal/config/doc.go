// Package config manages snapback's own settings file.
//
// Settings tune how backups run. They are distinct from the default target
// file (~/.config/backup_tool.conf), which is owned by the target package
// and holds nothing but a path.
//
// # Settings File
//
// The settings file lives at $XDG_CONFIG_HOME/snapback/settings.yaml:
//
//	version: 1
//	fallback_target: /media/pi/piBackup
//	chunk_size: 4096
//	sort_entries: true
//	log_format: text
//
// Every key may be overridden from the environment with the SNAPBACK_
// prefix, for example SNAPBACK_CHUNK_SIZE=65536.
//
// # Loading Settings
//
//	config.Init()
//	s, err := config.Load("") // search the default location
//
// An explicit path that does not exist is an error; a missing file in the
// default location is not.
//
// # Validation
//
// [Load] and [Set] validate the result. [Validate] returns typed
// [PathError] and [ValueError] values that unwrap to the sentinel errors
// in this package.
package config
