package util

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Configuration is the resolved runtime configuration: build metadata plus
// the knobs shared by the file driver and the REPL. Values come from an
// optional TOML file with flags taking precedence.
type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Strategy string `toml:"strategy"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Stats       bool   `toml:"stats"`
	StatsDriver string `toml:"stats_driver"`
	StatsDSN    string `toml:"stats_dsn"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Strategy:    "naive",
		LogLevel:    "error",
		StatsDriver: "sqlite3",
		StatsDSN:    "slang-stats.db",
	}
}

// LoadConfiguration overlays a TOML file onto the defaults. Unknown keys are
// rejected so a typo in the file does not silently fall back to a default.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()

	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, fmt.Errorf("failed to load configuration from '%s': %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("unknown configuration key '%s' in '%s'", undecoded[0], path)
	}

	return config, nil
}
