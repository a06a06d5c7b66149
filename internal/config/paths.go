package config

import (
	"os"
	"path/filepath"
)

// RootPath returns the root directory for mailtriage files.
// It uses $MAILTRIAGE_PATH if set, otherwise defaults to ~/.mailtriage.
func RootPath() string {
	if v := os.Getenv("MAILTRIAGE_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".mailtriage")
	}
	return filepath.Join(home, ".mailtriage")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(RootPath(), "config.jsonc")
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	return filepath.Join(RootPath(), ".env")
}

// DataPath returns the default data directory.
func DataPath() string {
	return filepath.Join(RootPath(), "data")
}
