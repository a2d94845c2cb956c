package config

import (
	"os"
	"path/filepath"
)

const appName = "typist"

// Paths holds the on-disk locations used by typist.
type Paths struct {
	Config    string
	WordLists string
	DB        string
}

// ResolvePaths follows the XDG base directory variables, falling back to
// ~/.config and ~/.local/share.
func ResolvePaths() Paths {
	configDir := filepath.Join(baseDir("XDG_CONFIG_HOME", ".config"), appName)
	dataDir := filepath.Join(baseDir("XDG_DATA_HOME", ".local", "share"), appName)
	return Paths{
		Config:    filepath.Join(configDir, "config.toml"),
		WordLists: filepath.Join(configDir, "wordlists"),
		DB:        filepath.Join(dataDir, appName+".db"),
	}
}

// DefaultConfigPath returns the TOML config location.
func DefaultConfigPath() string { return ResolvePaths().Config }

// DefaultWordListDir returns the directory holding installed word lists.
func DefaultWordListDir() string { return ResolvePaths().WordLists }

// DefaultDBPath returns the SQLite database location.
func DefaultDBPath() string { return ResolvePaths().DB }

func baseDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}
