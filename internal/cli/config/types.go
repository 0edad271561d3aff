// Package config loads the gendata CLI configuration.
//
// Values are layered, lowest to highest precedence: built-in defaults, the
// gendata.yaml file, GENDATA_* environment variables and explicitly set
// command-line flags.
package config

import (
	"github.com/purin2/sql-practice-tutor/internal/generator"
)

// Default configuration values.
const (
	DefaultOutput    = "src/data/schema.json"
	DefaultStateFile = ".gendata/state.db"
	DefaultFormat    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort      = 8790
	EnvPrefix        = "GENDATA_"
)

// ConfigFileNames are the file names searched for, in order.
var ConfigFileNames = []string{"gendata.yaml", "gendata.yml"}

// ServeConfig holds configuration for the document feed.
type ServeConfig struct {
	Port int `koanf:"port"`
	// Limit caps the rows returned per table when a request gives none.
	Limit int `koanf:"limit"`
}

// Config holds all CLI configuration options.
type Config struct {
	Output     string           `koanf:"output"`
	Seed       *int64           `koanf:"seed"`
	Format     string           `koanf:"format"`
	Verbose    bool             `koanf:"verbose"`
	StatePath  string           `koanf:"state_path"`
	History    bool             `koanf:"history"`
	Vocabulary string           `koanf:"vocabulary"`
	Watch      bool             `koanf:"watch"`
	Generator  generator.Config `koanf:"generator"`
	Serve      ServeConfig      `koanf:"serve"`

	// ProjectRoot anchors relative paths from the config file. Not loaded.
	ProjectRoot string `koanf:"-"`
}

// HasSeed reports whether a seed was configured.
func (c *Config) HasSeed() bool {
	return c.Seed != nil
}
