// Package config provides optional TOML configuration file parsing for the
// CLI. Values act as flag defaults; flags always win.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// File represents the TOML configuration file.
type File struct {
	Facomp Facomp `toml:"facomp"`
}

// Facomp maps scan-related settings.
type Facomp struct {
	Seqlen  *int `toml:"seqlen"`
	Workers *int `toml:"workers"`
}

// Load reads a TOML config from the given path. Missing file is not an error.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg File
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return File{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
