// Package paths resolves the locations snapback reads and writes outside of
// a backup: the persisted default target file and the settings directory.
//
// The default target file lives at a fixed place beneath the invoking
// user's home directory:
//
//	~/.config/backup_tool.conf
//
// Tool settings follow the XDG Base Directory layout through
// github.com/adrg/xdg:
//
//	$XDG_CONFIG_HOME/snapback/settings.yaml
package paths
