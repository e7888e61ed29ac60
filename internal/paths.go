package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "iris-session"

// Paths holds the locations iris-session reads and writes
type Paths struct {
	ConfigDir  string // base directory
	ConfigFile string // config.yaml
	SQLiteDB   string // storage.db, for the sqlite backend
	StorageDoc string // storage.yaml, for the file backend
}

// DetectPaths returns the default locations under the user's config directory
// ($XDG_CONFIG_HOME or ~/.config on Linux, ~/Library/Application Support on macOS)
func DetectPaths() (Paths, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get config directory: %w", err)
	}
	return PathsIn(filepath.Join(base, appDirName)), nil
}

// PathsIn returns the layout rooted at dir
func PathsIn(dir string) Paths {
	return Paths{
		ConfigDir:  dir,
		ConfigFile: filepath.Join(dir, "config.yaml"),
		SQLiteDB:   filepath.Join(dir, "storage.db"),
		StorageDoc: filepath.Join(dir, "storage.yaml"),
	}
}

// StoragePathFor returns the default storage path for a backend
func (p Paths) StoragePathFor(backend string) string {
	switch backend {
	case BackendFile:
		return p.StorageDoc
	case BackendMemory:
		return ""
	default:
		return p.SQLiteDB
	}
}

// ConfigExists checks if the config file exists
func (p Paths) ConfigExists() bool {
	_, err := os.Stat(p.ConfigFile)
	return err == nil
}
