// Package cliconfig loads presentation-only CLI defaults from an
// optional YAML file. Nothing here ever reaches the core engine: it
// only supplies default flag values (default statuses for init,
// default fields/sort for list) that the user can still override on
// the command line.
package cliconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = ".ttrackrc.yaml"

// Config is the shape of an optional .ttrackrc.yaml, consulted only for
// CLI flag defaults.
type Config struct {
	InitStatuses []string `yaml:"init_statuses"`
	ListFields   []string `yaml:"list_fields"`
	ListSort     string   `yaml:"list_sort"`
	ListLimit    int      `yaml:"list_limit"`
}

// Default returns the built-in CLI defaults, used when no config file
// is present or it doesn't set a given field.
func Default() Config {
	return Config{
		InitStatuses: []string{"todo", "doing", "done"},
		ListFields:   []string{"task_id", "status", "title", "priority", "updated_at"},
		ListSort:     "updated_at",
		ListLimit:    100,
	}
}

// Load reads ./.ttrackrc.yaml, falling back to $HOME/.ttrackrc.yaml,
// overlaying whatever fields it sets onto Default(). A missing file is
// not an error; a malformed one is.
func Load() (Config, error) {
	cfg := Default()

	path := fileName
	if _, err := os.Stat(path); err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return cfg, nil
		}
		path = filepath.Join(home, fileName)
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, err
	}

	if len(overlay.InitStatuses) > 0 {
		cfg.InitStatuses = overlay.InitStatuses
	}
	if len(overlay.ListFields) > 0 {
		cfg.ListFields = overlay.ListFields
	}
	if overlay.ListSort != "" {
		cfg.ListSort = overlay.ListSort
	}
	if overlay.ListLimit > 0 {
		cfg.ListLimit = overlay.ListLimit
	}

	return cfg, nil
}
